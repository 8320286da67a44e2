package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/thumbdeck/account-server-go/internal/errors"
	"github.com/thumbdeck/account-server-go/internal/middleware"
	"github.com/thumbdeck/account-server-go/internal/model"
	"github.com/thumbdeck/account-server-go/internal/service"
)

// multipartMemoryLimit is the in-memory threshold for multipart parsing;
// larger files spill to temporary disk storage before being streamed to the
// upload directory.
const multipartMemoryLimit = 1 << 20

type ThumbnailHandler struct {
	thumbnailService *service.ThumbnailService
}

func NewThumbnailHandler(thumbnailService *service.ThumbnailService) *ThumbnailHandler {
	return &ThumbnailHandler{thumbnailService: thumbnailService}
}

func (h *ThumbnailHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Delete("/", h.DeleteAll)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// POST /api/thumbnail
func (h *ThumbnailHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, apperrors.ValidationError("Invalid multipart request"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.ValidationError("No file uploaded"))
		return
	}
	defer file.Close()

	var version *string
	if v := r.FormValue("version"); v != "" {
		version = &v
	}

	thumbnail, err := h.thumbnailService.Create(r.Context(), service.CreateThumbnailInput{
		UserID:    userID,
		VideoName: r.FormValue("videoName"),
		Version:   version,
		Paid:      r.FormValue("paid") == "true",
		Filename:  header.Filename,
		File:      file,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, thumbnail)
}

// GET /api/thumbnail
func (h *ThumbnailHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	thumbnails, err := h.thumbnailService.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	if thumbnails == nil {
		thumbnails = []model.Thumbnail{}
	}
	writeJSON(w, http.StatusOK, thumbnails)
}

// GET /api/thumbnail/{id}
func (h *ThumbnailHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	thumbnail, err := h.thumbnailService.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, thumbnail)
}

// PUT /api/thumbnail/{id}
func (h *ThumbnailHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req struct {
		VideoName *string `json:"videoName"`
		Version   *string `json:"version"`
		Paid      *bool   `json:"paid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	thumbnail, err := h.thumbnailService.Update(r.Context(), id, userID, model.UpdateThumbnailParams{
		VideoName: req.VideoName,
		Version:   req.Version,
		Paid:      req.Paid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, thumbnail)
}

// DELETE /api/thumbnail/{id}
func (h *ThumbnailHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.thumbnailService.Delete(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Thumbnail deleted successfully",
	})
}

// DELETE /api/thumbnail
func (h *ThumbnailHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.thumbnailService.DeleteAll(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "All thumbnails deleted successfully",
	})
}
