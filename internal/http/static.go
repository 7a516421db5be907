package httpapi

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

const (
	storefrontPage = "index.html"
	adminPage      = "admin.html"
)

// servePage serves one file from the static directory, or the 404 envelope
// when it does not exist.
func (a *App) servePage(w http.ResponseWriter, r *http.Request, name string) {
	full := filepath.Join(a.Cfg.StaticDir, filepath.FromSlash(name))
	fi, err := os.Stat(full)
	if err != nil || fi.IsDir() {
		WriteJSONError(w, http.StatusNotFound, msgEndpoint404, "")
		return
	}
	http.ServeFile(w, r, full)
}

func (a *App) storefrontHandler(w http.ResponseWriter, r *http.Request) {
	a.servePage(w, r, storefrontPage)
}

func (a *App) adminHandler(w http.ResponseWriter, r *http.Request) {
	a.servePage(w, r, adminPage)
}

// fallbackHandler serves static assets for GET and HEAD and answers
// everything else with the 404 envelope.
func (a *App) fallbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteJSONError(w, http.StatusNotFound, msgEndpoint404, "")
		return
	}
	// path.Clean on a rooted path cannot climb above the root.
	name := path.Clean("/" + r.URL.Path)[1:]
	if name == "" {
		WriteJSONError(w, http.StatusNotFound, msgEndpoint404, "")
		return
	}
	a.servePage(w, r, name)
}
