package wifiscand

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

const (
	uiEntryPoint = "index.html"
	uiStaticDir  = "static"
)

// ServeStatic serves the prebuilt frontend assets. Mount it under
// /static/ with http.StripPrefix.
func ServeStatic(directory string) http.Handler {
	return http.FileServer(http.Dir(filepath.Join(directory, uiStaticDir)))
}

// ServeSPA returns the frontend entry document for any path so the
// single page app can do its own routing. When the frontend has not
// been built a JSON error body is returned instead.
func ServeSPA(directory string) http.HandlerFunc {
	mainIndexPath := filepath.Join(directory, uiEntryPoint)

	return func(w http.ResponseWriter, r *http.Request) {
		// Disable caching
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		if fi, err := os.Stat(mainIndexPath); err != nil || fi.IsDir() {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"error": "Frontend not found"})
			return
		}

		http.ServeFile(w, r, mainIndexPath)
	}
}
