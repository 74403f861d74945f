package http

import (
	"net/http"
	"os"
	"path/filepath"
)

// ServeDashboard serves the dashboard single-page application.
func ServeDashboard(webDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexPath := filepath.Join(webDir, "index.html")

		if _, err := os.Stat(indexPath); os.IsNotExist(err) {
			http.Error(w, "Dashboard page not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		http.ServeFile(w, r, indexPath)
	}
}

// ServeStatic serves auxiliary static assets under the web directory.
func ServeStatic(webDir string) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(filepath.Join(webDir, "static"))))
}
