package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
)

// ErrBodyTooLarge is returned when the body exceeds the reader's limit.
var ErrBodyTooLarge = errors.New("request body too large")

// DecodeCreate reads a JSON create body and validates it.
func DecodeCreate(r io.Reader) (NewTodo, error) {
	var in CreateTodo
	if err := decodeJSON(r, &in); err != nil {
		return NewTodo{}, err
	}
	return ValidateCreate(in)
}

// DecodeUpdate reads a JSON update body and validates it.
func DecodeUpdate(r io.Reader) (TodoPatch, error) {
	var in UpdateTodo
	if err := decodeJSON(r, &in); err != nil {
		return TodoPatch{}, err
	}
	return ValidateUpdate(in)
}

// DecodeProfile reads a JSON profile update body and validates it.
func DecodeProfile(r io.Reader) (ProfilePatch, error) {
	var in UpdateProfile
	if err := decodeJSON(r, &in); err != nil {
		return ProfilePatch{}, err
	}
	return ValidateProfile(in)
}

// decodeJSON turns every decoding failure into a *ValidationError.
// Unknown fields are ignored so clients may echo whole records back.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	err := dec.Decode(v)
	if err == nil {
		if dec.More() {
			return invalid("Request body must contain a single JSON object")
		}
		return nil
	}

	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesError):
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxBytesError.Limit)
	case errors.As(err, &syntaxError):
		return invalid(fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset))
	case errors.Is(err, io.ErrUnexpectedEOF):
		return invalid("Request body contains badly-formed JSON")
	case errors.Is(err, io.EOF):
		return invalid("Request body must not be empty")
	case errors.As(err, &typeError):
		if typeError.Field == "" {
			return invalid("Request body must be a JSON object")
		}
		return invalid("Invalid request body", FieldError{
			Field:   typeError.Field,
			Message: "must be a " + jsonTypeName(typeError.Type),
		})
	default:
		return invalid("Request body could not be decoded")
	}
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}
