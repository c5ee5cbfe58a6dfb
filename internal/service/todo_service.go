package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tomlord1122/todo-tracker/internal/domain"
	"github.com/Tomlord1122/todo-tracker/internal/repository"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
)

// TodoResponse is the wire representation of a todo.
type TodoResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedAt   string `json:"createdAt"`
}

// TodoService is the todo use-case layer. Every call acts on behalf of
// userID and never sees another user's rows.
type TodoService interface {
	ListTodos(ctx context.Context, userID string) ([]TodoResponse, error)
	GetTodo(ctx context.Context, userID, id string) (*TodoResponse, error)
	CreateTodo(ctx context.Context, userID string, in schema.NewTodo) (*TodoResponse, error)
	UpdateTodo(ctx context.Context, userID, id string, patch schema.TodoPatch) (*TodoResponse, error)
	DeleteTodo(ctx context.Context, userID, id string) error
}

type todoService struct {
	todos repository.TodoRepository
	users repository.UserRepository
}

func NewTodoService(todos repository.TodoRepository, users repository.UserRepository) TodoService {
	return &todoService{todos: todos, users: users}
}

func (s *todoService) ListTodos(ctx context.Context, userID string) ([]TodoResponse, error) {
	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	responses := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		responses = append(responses, toTodoResponse(todo))
	}
	return responses, nil
}

func (s *todoService) GetTodo(ctx context.Context, userID, id string) (*TodoResponse, error) {
	todo, err := s.todos.GetByID(ctx, id, userID)
	if err != nil {
		return nil, todoError("get todo", err)
	}
	resp := toTodoResponse(*todo)
	return &resp, nil
}

// CreateTodo makes sure the caller has a local user row before inserting.
func (s *todoService) CreateTodo(ctx context.Context, userID string, in schema.NewTodo) (*TodoResponse, error) {
	if err := s.users.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	todo, err := s.todos.Create(ctx, userID, in)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	resp := toTodoResponse(*todo)
	return &resp, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, userID, id string, patch schema.TodoPatch) (*TodoResponse, error) {
	todo, err := s.todos.Update(ctx, id, userID, patch)
	if err != nil {
		return nil, todoError("update todo", err)
	}
	resp := toTodoResponse(*todo)
	return &resp, nil
}

// DeleteTodo returns ErrTodoNotFound when nothing was removed, so a second
// delete of the same id reports not found.
func (s *todoService) DeleteTodo(ctx context.Context, userID, id string) error {
	deleted, err := s.todos.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if !deleted {
		return ErrTodoNotFound
	}
	return nil
}

func toTodoResponse(t domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func todoError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTodoNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
