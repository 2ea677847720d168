package handlers

import (
	"errors"
	"net/http"

	"portfolio/auth"
	"portfolio/logger"
)

const msgBadLogin = "Invalid email or password"

// Login: GET shows the form (or skips it for a live session), POST checks
// the credentials and opens a session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if _, err := h.sessions.Current(r.Context(), r); err == nil {
			http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
			return
		}
		h.render(w, r, http.StatusOK, "login", &PageData{Title: "Login"})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	email, password := r.PostForm.Get("email"), r.PostForm.Get("password")

	user, err := h.verifier.Verify(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Errorf("Login: verify: %v", err)
		}
		logger.Infof("Login: rejected attempt for %q", email)
		h.render(w, r, http.StatusUnauthorized, "login", &PageData{Title: "Login", Error: msgBadLogin, Email: email})
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, user); err != nil {
		logger.Errorf("Login: start session: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/projects", http.StatusSeeOther)
}

// Logout ends the session and clears its cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), w, r); err != nil {
		logger.Errorf("Logout: %v", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
