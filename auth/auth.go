package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"portfolio/logger"
	"portfolio/session"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Verifier checks a login submission and returns the user it identifies.
type Verifier interface {
	Verify(ctx context.Context, email, password string) (string, error)
}

// StaticVerifier accepts exactly one configured account.
type StaticVerifier struct {
	Email    string
	Password string
}

func (v StaticVerifier) Verify(_ context.Context, email, password string) (string, error) {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	okEmail := subtle.ConstantTimeCompare([]byte(email), []byte(v.Email)) == 1
	okPass := subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
	if !okEmail || !okPass || v.Email == "" {
		return "", ErrInvalidCredentials
	}
	return v.Email, nil
}

// Identity is the authenticated caller of an admin request.
type Identity struct {
	User      string
	SessionID string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// RequireUser is the middleware for admin routes: anonymous requests are sent to
// /login, authenticated ones carry their Identity in the context.
func RequireUser(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.Current(r.Context(), r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					logger.Errorf("RequireUser: load session: %v", err)
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			ctx := WithIdentity(r.Context(), Identity{User: s.User, SessionID: s.ID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
