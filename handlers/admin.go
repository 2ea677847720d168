package handlers

import (
	"errors"
	"net/http"

	"portfolio/logger"
	"portfolio/models"
	"portfolio/session"
)

const (
	msgAdded    = "Project added successfully!"
	msgUpdated  = "Project updated successfully!"
	msgDeleted  = "Project deleted successfully!"
	msgNotFound = "Project not found."
	msgNoName   = "Project name is required."
)

// Dashboard shows the project count. Storage trouble shows up as zero
// projects, not as an error page.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	count, err := h.projects.Count(r.Context())
	if err != nil {
		logger.Errorf("Dashboard: count projects: %v", err)
		count = 0
	}
	h.render(w, r, http.StatusOK, "dashboard", &PageData{Title: "Dashboard", Count: count})
}

func (h *Handlers) AdminProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.projects.List(r.Context())
	if err != nil {
		logger.Errorf("AdminProjects: list projects: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "projects", &PageData{Title: "Projects", Projects: list})
}

// readForm pulls the project fields out of a submitted form. Missing
// description and category fall back to "" and the default category.
func readForm(r *http.Request) ProjectForm {
	f := ProjectForm{
		Name:     r.PostForm.Get("name"),
		Category: models.DefaultCategory,
	}
	if v, ok := r.PostForm["description"]; ok && len(v) > 0 {
		f.Description = v[0]
	}
	if v, ok := r.PostForm["category"]; ok && len(v) > 0 {
		f.Category = v[0]
	}
	return f
}

// AddProject: GET shows the form next to the current list, POST creates.
func (h *Handlers) AddProject(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		f := readForm(r)
		_, err := h.projects.Create(r.Context(), models.ProjectInput{
			Name:        f.Name,
			Description: &f.Description,
			Category:    &f.Category,
		})
		switch {
		case err == nil:
			h.flash(r, session.FlashSuccess, msgAdded)
			http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
		case isValidation(err):
			h.renderAdd(w, r, http.StatusBadRequest, f, msgNoName)
		default:
			logger.Errorf("AddProject: create: %v", err)
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return
	}
	h.renderAdd(w, r, http.StatusOK, ProjectForm{Category: models.DefaultCategory}, "")
}

func (h *Handlers) renderAdd(w http.ResponseWriter, r *http.Request, status int, f ProjectForm, msg string) {
	list, err := h.projects.List(r.Context())
	if err != nil {
		logger.Errorf("AddProject: list projects: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, status, "add_project", &PageData{Title: "Add project", Projects: list, Form: f, Error: msg})
}

// EditProject: GET shows the form filled with the stored values, POST
// overwrites all three fields.
func (h *Handlers) EditProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		f := readForm(r)
		f.ID = id
		err := h.projects.Replace(r.Context(), id, f.Name, f.Description, f.Category)
		switch {
		case err == nil:
			h.flash(r, session.FlashSuccess, msgUpdated)
			http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
		case errors.Is(err, models.ErrNotFound):
			h.notFound(w, r)
		case isValidation(err):
			h.render(w, r, http.StatusBadRequest, "edit_project", &PageData{Title: "Edit project", Form: f, Error: msgNoName})
		default:
			logger.Errorf("EditProject: update %d: %v", id, err)
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return
	}

	p, err := h.projects.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		logger.Errorf("EditProject: get %d: %v", id, err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	f := ProjectForm{ID: p.ID, Name: p.Name, Description: p.Description, Category: p.Category}
	h.render(w, r, http.StatusOK, "edit_project", &PageData{Title: "Edit project", Form: f})
}

func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}
	err = h.projects.Delete(r.Context(), id)
	switch {
	case err == nil:
		h.flash(r, session.FlashSuccess, msgDeleted)
		http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
	case errors.Is(err, models.ErrNotFound):
		h.notFound(w, r)
	default:
		logger.Errorf("DeleteProject: delete %d: %v", id, err)
		http.Error(w, "DB error", http.StatusInternalServerError)
	}
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.flash(r, session.FlashDanger, msgNotFound)
	http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
}
