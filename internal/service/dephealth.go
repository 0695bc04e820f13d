// dephealth.go — наблюдение за PostgreSQL хранилища воспоминаний через
// topologymetrics: периодический pgcheck поверх общего pgxpool.
// Состояние публикуется на /metrics как app_dependency_health
// и app_dependency_latency_seconds.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// memoriesDBDependency — имя хранилища воспоминаний в графе зависимостей.
const memoriesDBDependency = "memories-db"

// DephealthConfig — параметры мониторинга хранилища воспоминаний.
type DephealthConfig struct {
	// ServiceID — имя вершины графа (memory-timeline)
	ServiceID string
	// Group — группа в метриках (MT_DEPHEALTH_GROUP)
	Group string
	// DB — адаптер пула, stdlib.OpenDBFromPool
	DB *sql.DB
	// DatabaseURL — только для лейблов host/port, подключение идёт через DB
	DatabaseURL string
	// CheckInterval — период проверки (MT_DEPHEALTH_CHECK_INTERVAL)
	CheckInterval time.Duration
	// Registerer — registry для метрик, nil — глобальный
	Registerer prometheus.Registerer
}

// DephealthService — мониторинг хранилища воспоминаний.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService регистрирует проверку хранилища воспоминаний.
// Проверка критическая: без базы сервис не обслуживает ни одной операции.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	if cfg.DB == nil {
		return nil, errors.New("dephealth: не задано подключение к хранилищу воспоминаний")
	}

	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.AddDependency(memoriesDBDependency, dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.DatabaseURL),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		),
	}
	if cfg.Registerer != nil {
		opts = append(opts, dephealth.WithRegisterer(cfg.Registerer))
	}

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, fmt.Errorf("инициализация topologymetrics: %w", err)
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth"), slog.String("dependency", memoriesDBDependency)),
	}, nil
}

// Start запускает периодическую проверку.
func (ds *DephealthService) Start(ctx context.Context) error {
	if err := ds.dh.Start(ctx); err != nil {
		return fmt.Errorf("запуск topologymetrics: %w", err)
	}
	ds.logger.Info("Мониторинг хранилища воспоминаний запущен")
	return nil
}

// Stop останавливает проверку и логирует последнее известное состояние.
func (ds *DephealthService) Stop() {
	healthy, known := ds.DatabaseHealthy()
	ds.dh.Stop()
	ds.logger.Info("Мониторинг хранилища воспоминаний остановлен",
		slog.Bool("healthy", healthy),
		slog.Bool("checked", known),
	)
}

// DatabaseHealthy возвращает результат последней проверки хранилища.
// known = false, пока не завершилась ни одна проверка.
func (ds *DephealthService) DatabaseHealthy() (healthy, known bool) {
	return databaseHealth(ds.dh.Health())
}

// databaseHealth выбирает состояние хранилища из карты SDK.
// Ключи карты имеют вид "dependency:host:port".
func databaseHealth(states map[string]bool) (healthy, known bool) {
	healthy = true
	for key, ok := range states {
		if key != memoriesDBDependency && !strings.HasPrefix(key, memoriesDBDependency+":") {
			continue
		}
		known = true
		healthy = healthy && ok
	}
	return healthy && known, known
}
