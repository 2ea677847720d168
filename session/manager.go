package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "session_token"
	issuer     = "portfolio-admin"
)

// Manager ties the browser cookie to a server-side session. The cookie is an
// HS256 token whose ID is the session id, so a logged-out token stops working
// even before it expires.
type Manager struct {
	store  Store
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	// Secure restricts the cookie to HTTPS.
	Secure bool
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{store: store, key: []byte(secret), ttl: ttl, now: time.Now}
}

type claims struct {
	jwt.RegisteredClaims
}

func (m *Manager) sign(s *Session) (string, error) {
	c := claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   s.User,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.key)
}

func (m *Manager) parse(token string) (*claims, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return m.key, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return c, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, exp time.Time) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

// Start creates a session for user and sets its cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, user string) (*Session, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, *s); err != nil {
		return nil, err
	}
	tok, err := m.sign(s)
	if err != nil {
		_ = m.store.Delete(ctx, s.ID)
		return nil, fmt.Errorf("sign session: %w", err)
	}
	m.setCookie(w, tok, s.ExpiresAt)
	return s, nil
}

// Current returns the live session behind the request cookie or ErrNoSession.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*Session, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil, ErrNoSession
	}
	c, err := m.parse(ck.Value)
	if err != nil {
		return nil, ErrNoSession
	}
	s, err := m.store.Load(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if s.User != c.Subject {
		return nil, ErrNoSession
	}
	return s, nil
}

// End destroys the request's session (if any) and clears the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.setCookie(w, "", m.now().Add(-time.Hour))
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	c, err := m.parse(ck.Value)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, c.ID)
}

func (m *Manager) AddFlash(ctx context.Context, sessionID, kind, msg string) error {
	return m.store.PushFlash(ctx, sessionID, Flash{Kind: kind, Message: msg})
}

// Flashes returns and clears the pending flash messages of a session.
func (m *Manager) Flashes(ctx context.Context, sessionID string) ([]Flash, error) {
	return m.store.PopFlashes(ctx, sessionID)
}
