package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const sessionKey ctxKey = "session"

// Gate rejects requests without a valid session.
type Gate struct {
	verifier *Verifier
	deny     http.Handler
}

// NewGate uses deny to answer unauthenticated requests.
func NewGate(v *Verifier, deny http.Handler) *Gate {
	return &Gate{verifier: v, deny: deny}
}

// IsAuthenticated reports whether r carries a valid session token.
func (g *Gate) IsAuthenticated(r *http.Request) bool {
	_, err := g.session(r)
	return err == nil
}

// Require attaches the session to the request context, or hands the
// request to the deny handler without calling next.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := g.session(r)
		if err != nil {
			g.deny.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (g *Gate) session(r *http.Request) (Session, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return Session{}, ErrUnauthenticated
	}
	return g.verifier.Verify(token)
}

// tokenFromRequest prefers "Authorization: Bearer" over the cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok && s.UserID != ""
}

// CurrentUserID returns the authenticated user's id, if any.
func CurrentUserID(ctx context.Context) (string, bool) {
	s, ok := SessionFromContext(ctx)
	return s.UserID, ok
}
