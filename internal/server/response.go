package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Tomlord1122/todo-tracker/internal/schema"
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  []schema.FieldError `json:"errors,omitempty"`
}

func unauthorized(w http.ResponseWriter, _ *http.Request) {
	respondWithError(w, http.StatusUnauthorized, "Unauthorized")
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Message: message})
}

// respondWithValidation reports err as 400 "Invalid request body". A
// failure that is not tied to one field is listed with an empty field.
// Oversized bodies get 413.
func respondWithValidation(w http.ResponseWriter, err error) {
	if errors.Is(err, schema.ErrBodyTooLarge) {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := verr.Errors
	if len(fields) == 0 {
		fields = []schema.FieldError{{Message: verr.Message}}
	}
	respondWithJSON(w, http.StatusBadRequest, errorResponse{
		Message: "Invalid request body",
		Errors:  fields,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
