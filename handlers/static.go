package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// noListing serves files from an http.FileSystem but hides directories that
// have no index.html, so a directory path answers 404 instead of a listing.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !st.IsDir() {
		return f, nil
	}
	index, err := n.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	_ = index.Close()
	return f, nil
}

// SiteIndex serves the front-end entry document.
func (h *Handlers) SiteIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.siteDir, "index.html"))
}

// SiteFiles serves the rest of the front-end (css, js, images) by path.
func (h *Handlers) SiteFiles() http.Handler {
	return http.FileServer(noListing{http.Dir(h.siteDir)})
}

// AdminStatic serves admin stylesheets and scripts under /admin_static/.
func (h *Handlers) AdminStatic() http.Handler {
	return http.StripPrefix("/admin_static/", http.FileServer(noListing{http.Dir(h.adminDir)}))
}
