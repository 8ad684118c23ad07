package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/morgana-orum/portal-api/internal/auth"
	"github.com/morgana-orum/portal-api/internal/storage"
	"github.com/rs/zerolog"
)

const maxUploadBytes = 10 << 20

// UploadHandler is the attachment/image collaborator endpoint for the admin
// forms. It is a plain chi handler because the body is multipart, not JSON.
type UploadHandler struct {
	auth     *auth.AuthHandler
	uploader *storage.Uploader
	log      *zerolog.Logger
}

func NewUploadHandler(authHandler *auth.AuthHandler, uploader *storage.Uploader, log *zerolog.Logger) *UploadHandler {
	return &UploadHandler{auth: authHandler, uploader: uploader, log: log}
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), r.Header.Get("Cookie"))
	if err != nil {
		http.Error(w, "Session lookup failed", http.StatusInternalServerError)
		return
	}
	if user == nil || !user.Role.IsAdmin() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	folder := r.FormValue("folder")
	if folder == "" {
		folder = "misc"
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	url, err := h.uploader.Save(data, folder, header.Filename)
	if errors.Is(err, storage.ErrBadFolder) {
		http.Error(w, "Invalid folder", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("folder", folder).Msg("upload failed")
		http.Error(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
