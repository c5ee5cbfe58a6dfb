package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tomlord1122/todo-tracker/internal/auth"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
	"github.com/Tomlord1122/todo-tracker/internal/service"
)

// multipartOverhead leaves room for boundaries and part headers on top
// of the avatar itself.
const multipartOverhead = 1 << 20

func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	p, err := s.profileService.GetOrCreate(r.Context(), sess)
	if err != nil {
		s.profileFailure(w, r, "fetch profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	patch, err := schema.DecodeProfile(r.Body)
	if err != nil {
		respondWithValidation(w, err)
		return
	}

	p, err := s.profileService.Update(r.Context(), sess, patch)
	if err != nil {
		s.profileFailure(w, r, "update profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

// uploadAvatarHandler accepts a multipart form with the image in "file".
func (s *Server) uploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.avatarMaxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Avatar too large")
			return
		}
		respondWithJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Invalid request body",
			Errors:  []schema.FieldError{{Field: "file", Message: "is required"}},
		})
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	data, err := io.ReadAll(io.LimitReader(file, s.avatarMaxBytes+1))
	if err != nil {
		s.profileFailure(w, r, "upload avatar", err)
		return
	}

	p, err := s.profileService.UploadAvatar(r.Context(), sess, service.Avatar{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		s.profileFailure(w, r, "upload avatar", err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (s *Server) profileFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		respondWithError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, service.ErrAvatarTooLarge):
		respondWithError(w, http.StatusRequestEntityTooLarge, "Avatar too large")
	case errors.Is(err, service.ErrAvatarType):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Invalid request body",
			Errors:  []schema.FieldError{{Field: "file", Message: "must be an image"}},
		})
	case errors.Is(err, service.ErrAvatarsDisabled):
		respondWithError(w, http.StatusNotImplemented, "Avatar uploads are not configured")
	default:
		s.log.Error(r.Context(), op+" failed",
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		respondWithError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}
