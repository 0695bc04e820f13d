// uploads.go — раздача загруженных изображений из blob store (GET /uploads/*).
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/memory-timeline/internal/api/errors"
	"github.com/bigkaa/memory-timeline/internal/storage/filestore"
)

// GetUpload — GET /uploads/{name}.
// Поддерживает Range и If-Modified-Since через http.ServeContent.
func (h *APIHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	reference := filestore.URLPrefix + chi.URLParam(r, "*")

	f, err := h.blobs.Open(reference)
	if err != nil {
		if errors.Is(err, filestore.ErrInvalidReference) || errors.Is(err, filestore.ErrNotFound) {
			apierrors.NotFound(w, "Файл не найден")
			return
		}
		h.logger.Error("Ошибка открытия файла",
			slog.String("reference", reference),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, path.Base(reference), info.ModTime(), f)
}
