// metrics.go — Prometheus HTTP метрики Memory Timeline.
// Регистрирует метрики: mt_http_requests_total, mt_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mt_http_requests_total",
			Help: "Общее количество HTTP-запросов к Memory Timeline",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mt_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Memory Timeline в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(time.Since(start).Seconds())
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет идентификаторы в пути на шаблоны для предотвращения
// взрывного роста кардинальности метрик.
// /memories/a1b2c3d4-.../favorite → /memories/{id}/favorite
// /uploads/1700000000-ab12cd34-photo.jpg → /uploads/{name}
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics", "/timeline", "/memories", "/memories/":
		return path
	}

	if strings.HasPrefix(path, "/uploads/") {
		return "/uploads/{name}"
	}

	const memoriesPrefix = "/memories/"
	if rest, ok := strings.CutPrefix(path, memoriesPrefix); ok {
		// Сегмент ID может быть любым (некорректные ID тоже обрабатываются)
		_, suffix, _ := strings.Cut(rest, "/")
		switch suffix {
		case "":
			return memoriesPrefix + "{id}"
		case "favorite":
			return memoriesPrefix + "{id}/favorite"
		default:
			return memoriesPrefix + "{id}/other"
		}
	}

	return "other"
}
