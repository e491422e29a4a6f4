package game

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// StaticFileServer serves the browser client from dir, falling back to
// fallbackPath for unknown routes so client-side routing keeps working.
func StaticFileServer(dir, fallbackPath string) http.Handler {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("Static directory %s does not exist; serving 404s.", dir)
		return http.NotFoundHandler()
	}

	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(filepath.Join(dir, r.URL.Path)); err == nil {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, fallbackPath))
	})
}
