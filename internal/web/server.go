package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/juergenlandauer/landtalk/internal/store"
)

//go:embed all:static
var staticFS embed.FS

// Server serves the detection results web app and API.
type Server struct {
	Store *store.Store
	Addr  string
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/captures", s.handleCaptures)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/features", s.handleFeatures)

	// Static files
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("creating sub filesystem: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticSub)))

	fmt.Printf("Serving at http://%s\n", s.Addr)
	return http.ListenAndServe(s.Addr, mux)
}
