package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/bigkaa/memory-timeline/internal/config"
)

// newRootCommand возвращает корневую команду CLI.
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "memory-timeline",
		Usage:   "Хронология воспоминаний: HTTP API, миграции и демо-данные",
		Version: config.Version,
		Commands: []*cli.Command{
			newServeCommand(),
			newMigrateCommand(),
			newSeedCommand(),
		},
		DefaultCommand: "serve",
	}
}

// loadConfig загружает конфигурацию и настраивает логгер.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("загрузка конфигурации: %w", err)
	}
	return cfg, config.SetupLogger(cfg), nil
}
