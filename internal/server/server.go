package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/todo-tracker/internal/auth"
	"github.com/Tomlord1122/todo-tracker/internal/config"
	"github.com/Tomlord1122/todo-tracker/internal/logging"
	"github.com/Tomlord1122/todo-tracker/internal/service"
)

// HealthChecker reports database health for /health.
type HealthChecker interface {
	Health() map[string]string
}

// Deps are the collaborators the HTTP layer calls into.
type Deps struct {
	Todos    service.TodoService
	Profiles service.ProfileService
	DB       HealthChecker
	Logger   logging.Logger
}

type Server struct {
	port           int
	todoService    service.TodoService
	profileService service.ProfileService
	db             HealthChecker
	gate           *auth.Gate
	log            logging.Logger
	loginURL       string
	corsOrigins    []string
	avatarMaxBytes int64
}

func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		port:           cfg.Port,
		todoService:    deps.Todos,
		profileService: deps.Profiles,
		db:             deps.DB,
		log:            deps.Logger,
		loginURL:       cfg.LoginURL,
		corsOrigins:    cfg.CORSAllowedOrigins,
		avatarMaxBytes: cfg.AvatarMaxBytes,
	}
	s.gate = auth.NewGate(auth.NewVerifier([]byte(cfg.SessionSecret)), http.HandlerFunc(unauthorized))
	return s
}

// NewServer returns the configured *http.Server; the caller owns
// ListenAndServe and Shutdown.
func NewServer(cfg *config.Config, deps Deps) *http.Server {
	s := New(cfg, deps)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
