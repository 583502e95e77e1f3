package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/storage"

	"github.com/google/uuid"
)

// PhotoHandler serves damage-evidence photos: a presign endpoint for
// authenticated users plus the mock storage upload/download endpoints that
// stand in for a cloud object store.
type PhotoHandler struct {
	store storage.Storage
}

func NewPhotoHandler(store storage.Storage) *PhotoHandler {
	return &PhotoHandler{store: store}
}

var photoContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Presign mints an opaque storage key and an upload URL for one evidence
// photo. The caller attaches the returned key to a damage report or dispute.
func (h *PhotoHandler) Presign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContentType string `json:"content_type"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ext, ok := photoContentTypes[body.ContentType]
	if !ok {
		writeError(w, apperr.Validation("content_type must be image/jpeg, image/png or image/gif"))
		return
	}

	key := fmt.Sprintf("%d/%s%s", actorID(r), uuid.NewString(), ext)
	uploadURL, err := h.store.GeneratePresignedUploadURL(r.Context(), key, body.ContentType, 15*time.Minute)
	if err != nil {
		writeError(w, apperr.Internal(err, "generate upload url"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"key":        key,
		"upload_url": uploadURL,
	})
}

// DownloadURL resolves a stored key to a fetchable URL.
func (h *PhotoHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, apperr.Validation("missing key parameter"))
		return
	}

	exists, _, err := h.store.FileExists(r.Context(), key)
	if err != nil {
		writeError(w, apperr.Internal(err, "check photo"))
		return
	}
	if !exists {
		writeError(w, apperr.NotFound("photo not found"))
		return
	}

	url, err := h.store.GeneratePresignedDownloadURL(r.Context(), key, time.Hour)
	if err != nil {
		writeError(w, apperr.Internal(err, "generate download url"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

// HandleMockUpload accepts the PUT a client makes to a mock presigned URL.
func (h *PhotoHandler) HandleMockUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}
	if strings.Contains(key, "..") {
		http.Error(w, "Invalid key", http.StatusBadRequest)
		return
	}
	if _, ok := photoContentTypes[r.Header.Get("Content-Type")]; !ok {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	if err := h.store.SaveFile(key, r.Body); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", `"mock-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

// HandleMockDownload streams a stored photo back to the client.
func (h *PhotoHandler) HandleMockDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" || strings.Contains(key, "..") {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.store.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, file)
}
