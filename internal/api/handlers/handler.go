// handler.go — основной обработчик API Memory Timeline.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	apierrors "github.com/bigkaa/memory-timeline/internal/api/errors"
	"github.com/bigkaa/memory-timeline/internal/service"
)

// StatusSuccess — значение поля status в успешном ответе.
const StatusSuccess = "success"

// BlobReader — чтение файлов blob store для раздачи /uploads/*.
// Реализуется filestore.FileStore.
type BlobReader interface {
	Open(reference string) (*os.File, error)
}

// Options — ограничения обработки запросов.
type Options struct {
	// MaxFiles — максимум файлов images в одном запросе
	MaxFiles int
	// MaxBytes — максимальный размер тела запроса
	MaxBytes int64
}

// APIHandler — основной обработчик API.
type APIHandler struct {
	health   *HealthHandler
	memories *service.MemoryService
	timeline *service.TimelineService
	uploads  *service.UploadService
	blobs    BlobReader
	opts     Options
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	memories *service.MemoryService,
	timeline *service.TimelineService,
	uploads *service.UploadService,
	blobs BlobReader,
	opts Options,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:   health,
		memories: memories,
		timeline: timeline,
		uploads:  uploads,
		blobs:    blobs,
		opts:     opts,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// successBody — конверт успешного ответа.
type successBody struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeSuccess записывает успешный ответ в стандартном конверте.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successBody{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// handleServiceError маппит ошибки сервисного слоя в HTTP-ответы.
// Ошибки хранилища логируются полностью, клиент получает общее сообщение.
func (h *APIHandler) handleServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Воспоминание не найдено")
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
