package http

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// siteHandler serves a pre-built front end. Unknown paths fall back to
// index.html so client-side routes resolve; without an index a plain 404
// page is returned.
type siteHandler struct {
	fsys fs.FS
}

// NewSiteHandler serves the static site in dir.
func NewSiteHandler(dir string) http.Handler {
	return &siteHandler{fsys: os.DirFS(dir)}
}

func (h *siteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	if h.isFile(name) {
		http.ServeFileFS(w, r, h.fsys, name)
		return
	}

	if index := path.Join(name, "index.html"); h.isFile(index) {
		http.ServeFileFS(w, r, h.fsys, index)
		return
	}

	if h.isFile("index.html") {
		http.ServeFileFS(w, r, h.fsys, "index.html")
		return
	}

	writeDefaultNotFound(w)
}

func (h *siteHandler) isFile(name string) bool {
	info, err := fs.Stat(h.fsys, name)
	return err == nil && info.Mode().IsRegular()
}
