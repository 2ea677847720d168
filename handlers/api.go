package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"portfolio/logger"
	"portfolio/models"
)

const (
	apiNotFound     = "Project not found"
	apiNameRequired = "name is required"
	apiNoData       = "No data provided"
	apiEmptyPatch   = "At least one field (name/description/category) required"
	apiInternal     = "internal server error"
)

// decodeObject reads a JSON object body. ok is false for a missing,
// malformed or empty object.
func decodeObject(r *http.Request) (map[string]json.RawMessage, bool) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

// field unmarshals raw[key] into a string pointer; absent and null both give nil.
func field(raw map[string]json.RawMessage, key string) (*string, error) {
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	var s *string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func fields(raw map[string]json.RawMessage) (name, description, category *string, err error) {
	if name, err = field(raw, "name"); err != nil {
		return
	}
	if description, err = field(raw, "description"); err != nil {
		return
	}
	category, err = field(raw, "category")
	return
}

func (h *Handlers) APIListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.projects.List(r.Context())
	if err != nil {
		logger.Errorf("APIListProjects: %v", err)
		writeError(w, http.StatusInternalServerError, apiInternal)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) APIGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, apiNotFound)
		return
	}
	p, err := h.projects.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, apiNotFound)
			return
		}
		logger.Errorf("APIGetProject: get %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, apiInternal)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) APICreateProject(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeObject(r)
	if !ok {
		writeError(w, http.StatusBadRequest, apiNameRequired)
		return
	}
	name, description, category, err := fields(raw)
	if err != nil || name == nil {
		writeError(w, http.StatusBadRequest, apiNameRequired)
		return
	}

	id, err := h.projects.Create(r.Context(), models.ProjectInput{
		Name:        *name,
		Description: description,
		Category:    category,
	})
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, apiNameRequired)
			return
		}
		logger.Errorf("APICreateProject: %v", err)
		writeError(w, http.StatusInternalServerError, apiInternal)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "message": "Project created"})
}

// APIUpdateProject changes only the fields present in the body.
func (h *Handlers) APIUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, apiNotFound)
		return
	}
	raw, ok := decodeObject(r)
	if !ok {
		writeError(w, http.StatusBadRequest, apiNoData)
		return
	}
	var patch models.ProjectPatch
	patch.Name, patch.Description, patch.Category, err = fields(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, apiNoData)
		return
	}

	err = h.projects.Patch(r.Context(), id, patch)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Project updated"})
	case errors.Is(err, models.ErrEmptyPatch):
		writeError(w, http.StatusBadRequest, apiEmptyPatch)
	case errors.Is(err, models.ErrNameRequired):
		writeError(w, http.StatusBadRequest, apiNameRequired)
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, apiNotFound)
	default:
		logger.Errorf("APIUpdateProject: update %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, apiInternal)
	}
}

func (h *Handlers) APIDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, apiNotFound)
		return
	}
	err = h.projects.Delete(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully"})
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, apiNotFound)
	default:
		logger.Errorf("APIDeleteProject: delete %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, apiInternal)
	}
}
