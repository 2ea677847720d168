package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/session"
)

func TestStaticVerifier(t *testing.T) {
	v := StaticVerifier{Email: "admin@example.org", Password: "1234567"}
	ctx := context.Background()

	user, err := v.Verify(ctx, " admin@example.org ", "1234567 ")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.org", user)

	cases := []struct{ email, password string }{
		{"admin@example.org", "wrong"},
		{"other@example.org", "1234567"},
		{"", ""},
	}
	for _, c := range cases {
		_, err := v.Verify(ctx, c.email, c.password)
		assert.ErrorIs(t, err, ErrInvalidCredentials, c.email)
	}

	_, err = StaticVerifier{}.Verify(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequireUser(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewManager(session.NewMemoryStore(), "secret", time.Hour)

	var seen Identity
	h := RequireUser(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous is redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/projects", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("authenticated passes with identity", func(t *testing.T) {
		login := httptest.NewRecorder()
		s, err := sessions.Start(ctx, login, "admin@example.org")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/projects", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, Identity{User: "admin@example.org", SessionID: s.ID}, seen)
	})
}

func TestFromContext_Empty(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
