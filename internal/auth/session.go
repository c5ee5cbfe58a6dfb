// Package auth verifies the session tokens issued by the identity
// provider and exposes the authenticated user to handlers.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie browsers carry the session token in.
const SessionCookie = "session"

var ErrUnauthenticated = errors.New("unauthenticated")

// Claims is what the identity provider signs. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Session is the verified identity attached to a request.
type Session struct {
	UserID    string
	FirstName string
	LastName  string
}

// DisplayName joins first and last name, or returns "" when both are empty.
func (s Session) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Verifier checks HS256 session tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{
		secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Verify parses token and returns its session. Any failure, including an
// expired token or a missing subject, is ErrUnauthenticated.
func (v *Verifier) Verify(token string) (Session, error) {
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Session{}, ErrUnauthenticated
	}
	return Session{
		UserID:    claims.Subject,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}

// NewToken signs a session token. The identity provider does this in
// production; the server only uses it in tests and local tooling.
func NewToken(secret []byte, s Session, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		FirstName: s.FirstName,
		LastName:  s.LastName,
	})
	return token.SignedString(secret)
}
