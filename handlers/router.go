package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	gh "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"portfolio/auth"
	"portfolio/logger"
)

type requestIDKey struct{}

// RequestID returns the id assigned to the request by the router.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// withRequestID keeps an incoming X-Request-Id or assigns a new one and
// echoes it back.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, rid)))
	})
}

func logRequest(_ io.Writer, p gh.LogFormatterParams) {
	logger.L().Info("request",
		zap.String("request_id", RequestID(p.Request.Context())),
		zap.String("method", p.Request.Method),
		zap.String("path", p.URL.Path),
		zap.Int("status", p.StatusCode),
		zap.Int("size", p.Size),
		zap.Duration("latency", time.Since(p.TimeStamp)),
	)
}

// NewRouter wires every route. Admin pages sit behind the session gate; the
// JSON API does not, and only answers cross-origin calls from the allow-list.
func NewRouter(h *Handlers) http.Handler {
	r := mux.NewRouter()

	r.PathPrefix("/admin_static/").Handler(h.AdminStatic()).Methods("GET", "HEAD")

	r.HandleFunc("/login", h.Login).Methods("GET", "POST")
	r.HandleFunc("/logout", h.Logout).Methods("GET")

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireUser(h.sessions))
	admin.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	admin.HandleFunc("/projects", h.AdminProjects).Methods("GET")
	admin.HandleFunc("/projects/add", h.AddProject).Methods("GET", "POST")
	admin.HandleFunc("/projects/edit/{id}", h.EditProject).Methods("GET", "POST")
	admin.HandleFunc("/projects/delete/{id}", h.DeleteProject).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(gh.CORS(
		gh.AllowedOrigins(h.corsOrigins),
		gh.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		gh.AllowedHeaders([]string{"Content-Type"}),
	))
	api.HandleFunc("/projects", h.APIListProjects).Methods("GET")
	api.HandleFunc("/projects", h.APICreateProject).Methods("POST")
	api.HandleFunc("/projects/{id}", h.APIGetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", h.APIUpdateProject).Methods("PUT")
	api.HandleFunc("/projects/{id}", h.APIDeleteProject).Methods("DELETE")
	// preflight requests are answered by the CORS middleware
	api.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/", h.SiteIndex).Methods("GET", "HEAD")
	r.PathPrefix("/").Handler(h.SiteFiles()).Methods("GET", "HEAD")

	return withRequestID(gh.CustomLoggingHandler(io.Discard, r, logRequest))
}
