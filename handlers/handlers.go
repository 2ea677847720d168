package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"portfolio/auth"
	"portfolio/logger"
	"portfolio/models"
	"portfolio/session"
)

// Projects is the data access the handlers need.
type Projects interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, in models.ProjectInput) (int64, error)
	Replace(ctx context.Context, id int64, name, description, category string) error
	Patch(ctx context.Context, id int64, patch models.ProjectPatch) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type Deps struct {
	Projects    Projects
	Sessions    *session.Manager
	Verifier    auth.Verifier
	Templates   *template.Template
	SiteDir     string
	AdminDir    string
	CORSOrigins []string
}

type Handlers struct {
	projects    Projects
	sessions    *session.Manager
	verifier    auth.Verifier
	tmpl        *template.Template
	siteDir     string
	adminDir    string
	corsOrigins []string
}

func New(d Deps) *Handlers {
	return &Handlers{
		projects:    d.Projects,
		sessions:    d.Sessions,
		verifier:    d.Verifier,
		tmpl:        d.Templates,
		siteDir:     d.SiteDir,
		adminDir:    d.AdminDir,
		corsOrigins: d.CORSOrigins,
	}
}

// ProjectForm is the state of the add/edit form.
type ProjectForm struct {
	ID          int64
	Name        string
	Description string
	Category    string
}

// PageData is the context for every admin template.
type PageData struct {
	Title    string
	User     string
	Flashes  []session.Flash
	Error    string
	Email    string
	Count    int
	Projects []models.Project
	Form     ProjectForm
}

// render executes a page into a buffer first so a template failure becomes a
// clean 500 instead of a half-written page.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	if id, ok := auth.FromContext(r.Context()); ok {
		data.User = id.User
		flashes, err := h.sessions.Flashes(r.Context(), id.SessionID)
		if err != nil {
			logger.Errorf("render %s: load flashes: %v", name, err)
		}
		data.Flashes = flashes
	}
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Errorf("render %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// flash queues a message for the current admin session.
func (h *Handlers) flash(r *http.Request, kind, msg string) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return
	}
	if err := h.sessions.AddFlash(r.Context(), id.SessionID, kind, msg); err != nil {
		logger.Errorf("flash: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// projectID reads the {id} route variable. A value that is not a positive
// integer cannot name a project and is reported as not found.
func projectID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, models.ErrNotFound
	}
	return id, nil
}

func isValidation(err error) bool {
	var verr *models.ValidationError
	return errors.As(err, &verr)
}
