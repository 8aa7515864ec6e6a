package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/staffdir/internal/assets"
)

type UploadsHandler struct {
	assets assets.Store
}

func NewUploadsHandler(store assets.Store) *UploadsHandler {
	return &UploadsHandler{assets: store}
}

// Serve streams a stored image back with its original content type.
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ref := assets.KeyPrefix + mux.Vars(r)["key"]
	rc, contentType, err := h.assets.Open(r.Context(), ref)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) || errors.Is(err, assets.ErrInvalidRef) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		logger.Error("open upload", slog.String("ref", ref), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.Warn("stream upload", slog.String("ref", ref), slog.Any("err", err))
	}
}
