package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// UploadsHandler serves files from the upload directory. Directories and
// anything escaping the root are a 404.
type UploadsHandler struct {
	uploadDir string
}

func NewUploadsHandler(uploadDir string) *UploadsHandler {
	return &UploadsHandler{uploadDir: uploadDir}
}

func (h *UploadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if path == "" || strings.Contains(path, "..") {
		http.NotFound(w, r)
		return
	}

	filePath := filepath.Join(h.uploadDir, filepath.Clean(path))

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}
