// metrics.go — доменные Prometheus-метрики сервисного слоя.
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты операций для лейбла result.
const (
	resultOK         = "ok"
	resultValidation = "validation_error"
	resultNotFound   = "not_found"
	resultError      = "error"
)

var (
	// memoryOperationsTotal — операции над записями воспоминаний.
	memoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mt_memory_operations_total",
			Help: "Количество операций над воспоминаниями по типу и результату",
		},
		[]string{"operation", "result"},
	)

	// uploadedFilesTotal — сохранённые в blob store файлы.
	uploadedFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mt_uploaded_files_total",
		Help: "Общее количество загруженных изображений",
	})

	// uploadedBytesTotal — объём сохранённых файлов.
	uploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mt_uploaded_bytes_total",
		Help: "Суммарный объём загруженных изображений в байтах",
	})

	// timelineBuildDuration — длительность построения timeline (без учёта кэша).
	timelineBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mt_timeline_build_duration_seconds",
		Help:    "Длительность построения timeline из записей в секундах",
		Buckets: prometheus.DefBuckets,
	})
)
