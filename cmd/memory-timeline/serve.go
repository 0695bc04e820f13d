package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v3"

	"github.com/bigkaa/memory-timeline/internal/api/handlers"
	"github.com/bigkaa/memory-timeline/internal/config"
	"github.com/bigkaa/memory-timeline/internal/database"
	"github.com/bigkaa/memory-timeline/internal/repository"
	"github.com/bigkaa/memory-timeline/internal/server"
	"github.com/bigkaa/memory-timeline/internal/service"
	"github.com/bigkaa/memory-timeline/internal/storage/filestore"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Запустить HTTP API",
		Action: runServe,
	}
}

// runServe загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// собирает сервисный слой и запускает HTTP-сервер с graceful shutdown.
func runServe(ctx context.Context, _ *cli.Command) error {
	// 1. Конфигурация и логирование
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("Memory Timeline запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("MT_DEPHEALTH_GROUP") == "" {
		logger.Warn("MT_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 2. Миграции БД
	logger.Info("Применение миграций БД...")
	if _, err := database.Migrate(cfg, logger); err != nil {
		return fmt.Errorf("миграции БД: %w", err)
	}

	// 3. PostgreSQL (pgxpool)
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("подключение к PostgreSQL: %w", err)
	}
	defer pool.Close()

	// Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 4. Blob store
	store, err := filestore.New(cfg.UploadDir)
	if err != nil {
		return err
	}
	logger.Info("Хранилище загрузок готово", slog.String("dir", store.DataDir()))

	// 5. Сервисы
	cache := service.NewTimelineCache(cfg.TimelineCacheTTL)
	memories := service.NewMemoryService(repository.NewMemoryRepository(pool), cache, logger)
	timeline := service.NewTimelineService(memories, cache, logger)
	uploads := service.NewUploadService(store, logger)

	// 6. topologymetrics — мониторинг PostgreSQL
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     "memory-timeline",
		Group:         cfg.DephealthGroup,
		DB:            pgDB,
		DatabaseURL:   cfg.DatabaseURL(),
		CheckInterval: cfg.DephealthCheckInterval,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
		dephealthSvc = nil
	}

	// 7. HTTP
	apiHandler := handlers.NewAPIHandler(
		handlers.NewHealthHandler(database.NewReadinessChecker(pool)),
		memories,
		timeline,
		uploads,
		store,
		handlers.Options{MaxFiles: cfg.UploadMaxFiles, MaxBytes: cfg.UploadMaxBytes},
		logger,
	)

	srv := server.New(cfg, logger, apiHandler)
	runErr := srv.Run(ctx)

	// 8. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	logger.Info("Memory Timeline остановлен")
	return runErr
}
