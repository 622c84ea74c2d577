package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/skywatch/orbitrack/pkg/logger"
)

// StaticFileHandler serves static files dynamically without caching
type StaticFileHandler struct {
	staticDir string
	logger    *logger.Logger
}

// NewStaticFileHandler creates a new static file handler
func NewStaticFileHandler(staticDir string, log *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		staticDir: staticDir,
		logger:    log.Named("static-handler"),
	}
}

// ServeHTTP serves static files dynamically
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Clean the path to prevent directory traversal attacks
	path := filepath.Clean(r.URL.Path)
	path = strings.TrimPrefix(path, "/")

	if path == "" || path == "." {
		path = "index.html"
	}

	fullPath := filepath.Join(h.staticDir, path)

	// Ensure the file is within the static directory
	absStaticDir, err := filepath.Abs(h.staticDir)
	if err != nil {
		h.logger.Error("Failed to get absolute path for static directory", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		h.logger.Error("Failed to get absolute path for requested file", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !strings.HasPrefix(absFullPath, absStaticDir) {
		h.logger.Warn("Attempted directory traversal",
			logger.String("requested_path", path))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	fileInfo, err := os.Stat(fullPath)
	if err != nil || fileInfo.IsDir() {
		// Directory or missing file: fall back to index.html so the UI
		// can handle client-side routes
		indexPath := filepath.Join(h.staticDir, "index.html")
		if _, indexErr := os.Stat(indexPath); indexErr == nil {
			http.ServeFile(w, r, indexPath)
			return
		}
		h.logger.Debug("File not found", logger.String("path", fullPath))
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
