package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/todo-tracker/internal/auth"
)

// maxJSONBody caps todo and profile request bodies.
const maxJSONBody = 64 << 10

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// cors treats an empty origin list as "allow all", so only mount it
	// when origins are configured.
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/login", s.loginHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.gate.Require)

			r.Get("/auth/user", s.currentUserHandler)

			r.Route("/todos", func(r chi.Router) {
				r.Use(limitBody(maxJSONBody))
				r.Get("/", s.listTodosHandler)
				r.Post("/", s.createTodoHandler)
				r.Get("/{id}", s.getTodoHandler)
				r.Put("/{id}", s.updateTodoHandler)
				r.Delete("/{id}", s.deleteTodoHandler)
			})

			r.Route("/profile", func(r chi.Router) {
				r.With(limitBody(maxJSONBody)).Get("/", s.getProfileHandler)
				r.With(limitBody(maxJSONBody)).Put("/", s.updateProfileHandler)
				r.Post("/avatar", s.uploadAvatarHandler)
			})
		})
	})

	return r
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// loginHandler hands the browser to the identity provider. Only
// same-site returnTo paths are forwarded.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	target, err := url.Parse(s.loginURL)
	if err != nil {
		s.log.Error(r.Context(), "invalid login url", "login_url", s.loginURL, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Login is not available")
		return
	}

	if returnTo := r.URL.Query().Get("returnTo"); isLocalPath(returnTo) {
		q := target.Query()
		q.Set("returnTo", returnTo)
		target.RawQuery = q.Encode()
	}
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}

func (s *Server) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]string{"id": sess.UserID})
}
