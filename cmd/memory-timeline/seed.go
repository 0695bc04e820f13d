package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/bigkaa/memory-timeline/internal/database"
	"github.com/bigkaa/memory-timeline/internal/repository"
	"github.com/bigkaa/memory-timeline/internal/seed"
	"github.com/bigkaa/memory-timeline/internal/service"
)

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Загрузить демонстрационные воспоминания",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Usage: "Количество записей (0 — весь демо-набор)",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Удалить существующие записи перед загрузкой",
				Value: true,
			},
		},
		Action: runSeed,
	}
}

func runSeed(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := database.Migrate(cfg, logger); err != nil {
		return fmt.Errorf("миграции БД: %w", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("подключение к PostgreSQL: %w", err)
	}
	defer pool.Close()

	memories := service.NewMemoryService(repository.NewMemoryRepository(pool), nil, logger)

	res, err := seed.Run(ctx, memories, seed.Options{
		Count: cmd.Int("count"),
		Reset: cmd.Bool("reset"),
	}, logger)
	if err != nil {
		return fmt.Errorf("загрузка демо-данных: %w", err)
	}

	logger.Info("Seed завершён",
		slog.Int("created", res.Created),
		slog.Int("favorite", res.Favorite),
	)
	return nil
}
