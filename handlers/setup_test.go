package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio/auth"
	"portfolio/db"
	"portfolio/session"
	"portfolio/store"
	"portfolio/web"
)

const (
	adminEmail    = "admin@example.org"
	adminPassword = "1234567"
)

type testApp struct {
	srv    *httptest.Server
	client *http.Client
	store  *store.ProjectStore
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newDeps(t *testing.T, projects Projects) Deps {
	t.Helper()
	tmpl, err := web.Templates()
	require.NoError(t, err)

	site := t.TempDir()
	writeFile(t, filepath.Join(site, "index.html"), "<h1>portfolio front</h1>")
	writeFile(t, filepath.Join(site, "css", "site.css"), "body{}")
	adminDir := t.TempDir()
	writeFile(t, filepath.Join(adminDir, "admin.css"), ".topbar{}")

	return Deps{
		Projects:    projects,
		Sessions:    session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour),
		Verifier:    auth.StaticVerifier{Email: adminEmail, Password: adminPassword},
		Templates:   tmpl,
		SiteDir:     site,
		AdminDir:    adminDir,
		CORSOrigins: []string{"http://127.0.0.1:5500", "http://localhost:5500", "http://127.0.0.1:5000"},
	}
}

func serve(t *testing.T, d Deps) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(NewRouter(New(d)))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.EnsureSchema(ctx, conn, db.SQLite))

	st := store.NewProjectStore(conn, db.SQLite)
	srv, client := serve(t, newDeps(t, st))
	return &testApp{srv: srv, client: client, store: st}
}

func (a *testApp) do(t *testing.T, method, path, contentType, body string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	return a.do(t, http.MethodGet, path, "", "")
}

func (a *testApp) postForm(t *testing.T, path, form string) (*http.Response, string) {
	return a.do(t, http.MethodPost, path, "application/x-www-form-urlencoded", form)
}

func (a *testApp) json(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, raw := a.do(t, method, path, "application/json", body)
	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(raw), "{") {
		require.NoError(t, json.Unmarshal([]byte(raw), &out))
	}
	return resp, out
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	resp, _ := a.postForm(t, "/login", "email="+adminEmail+"&password="+adminPassword)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/projects", resp.Header.Get("Location"))
}
