package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tomlord1122/todo-tracker/internal/auth"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
	"github.com/Tomlord1122/todo-tracker/internal/service"
)

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())

	todos, err := s.todoService.ListTodos(r.Context(), userID)
	if err != nil {
		s.todoFailure(w, r, "fetch todos", err)
		return
	}
	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())

	todo, err := s.todoService.GetTodo(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.todoFailure(w, r, "fetch todo", err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())

	in, err := schema.DecodeCreate(r.Body)
	if err != nil {
		respondWithValidation(w, err)
		return
	}

	todo, err := s.todoService.CreateTodo(r.Context(), userID, in)
	if err != nil {
		s.todoFailure(w, r, "create todo", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())

	patch, err := schema.DecodeUpdate(r.Body)
	if err != nil {
		respondWithValidation(w, err)
		return
	}

	todo, err := s.todoService.UpdateTodo(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		s.todoFailure(w, r, "update todo", err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())

	if err := s.todoService.DeleteTodo(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		s.todoFailure(w, r, "delete todo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// todoFailure maps a service error to a response. Anything that is not
// "not found" is logged and reported without detail.
func (s *Server) todoFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, service.ErrTodoNotFound) {
		respondWithError(w, http.StatusNotFound, "Todo not found")
		return
	}

	userID, _ := auth.CurrentUserID(r.Context())
	s.log.Error(r.Context(), op+" failed",
		"request_id", middleware.GetReqID(r.Context()),
		"user_id", userID,
		"todo_id", chi.URLParam(r, "id"),
		"err", err,
	)
	respondWithError(w, http.StatusInternalServerError, "Failed to "+op)
}
