package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/bigkaa/memory-timeline/internal/database"
)

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Применить миграции БД и выйти",
		Action: func(_ context.Context, _ *cli.Command) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			res, err := database.Migrate(cfg, logger)
			if err != nil {
				return fmt.Errorf("миграции БД: %w", err)
			}
			if !res.Applied {
				logger.Info("Новых миграций нет")
			}
			return nil
		},
	}
}
