// Пакет database — PostgreSQL-хранилище воспоминаний: пул pgxpool,
// встроенная схема таблицы memories (golang-migrate) и readiness-проверка,
// которая заодно сообщает число хранимых записей.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/memory-timeline/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion — версия схемы memories, с которой работает репозиторий.
const SchemaVersion uint = 1

// applicationName — имя клиента в pg_stat_activity.
const applicationName = "memory-timeline"

// readyTimeout — предел одной readiness-проверки.
const readyTimeout = 3 * time.Second

// codeUndefinedTable — SQLSTATE отсутствующей таблицы.
const codeUndefinedTable = "42P01"

// Connect открывает пул к хранилищу воспоминаний и проверяет его ping-ом.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("разбор DSN хранилища воспоминаний: %w", err)
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("создание пула PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("PostgreSQL %s:%d недоступен: %w", cfg.DBHost, cfg.DBPort, err)
	}

	logger.Info("Хранилище воспоминаний подключено",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
		slog.Int("max_conns", int(poolCfg.MaxConns)),
	)
	return pool, nil
}

// MigrationResult — состояние схемы после Migrate.
type MigrationResult struct {
	// Previous — версия до запуска (0 — пустая база)
	Previous uint
	// Version — текущая версия схемы
	Version uint
	// Applied — были ли применены новые миграции
	Applied bool
}

// Migrate приводит схему memories к SchemaVersion.
// Повторный запуск на актуальной схеме ничего не меняет.
func Migrate(cfg *config.Config, logger *slog.Logger) (*MigrationResult, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	res := &MigrationResult{}
	prev, _, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return nil, fmt.Errorf("чтение версии схемы: %w", err)
	default:
		res.Previous = prev
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return nil, fmt.Errorf("применение миграций memories: %w", err)
	default:
		res.Applied = true
	}

	version, dirty, err := m.Version()
	if err != nil {
		return nil, fmt.Errorf("чтение версии схемы: %w", err)
	}
	if dirty {
		return nil, fmt.Errorf("схема memories в состоянии dirty на версии %d", version)
	}
	res.Version = version

	if version != SchemaVersion {
		logger.Warn("Версия схемы memories отличается от ожидаемой",
			slog.Uint64("version", uint64(version)),
			slog.Uint64("expected", uint64(SchemaVersion)),
		)
	}
	logger.Info("Схема memories актуальна",
		slog.Uint64("from", uint64(res.Previous)),
		slog.Uint64("version", uint64(res.Version)),
		slog.Bool("applied", res.Applied),
	)
	return res, nil
}

// rowQuerier — часть pgxpool.Pool, нужная readiness-проверке.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReadinessChecker — readiness хранилища воспоминаний для /health/ready.
// Реализует handlers.ReadinessChecker.
type ReadinessChecker struct {
	db rowQuerier
}

// NewReadinessChecker создаёт проверку поверх пула.
func NewReadinessChecker(pool *pgxpool.Pool) *ReadinessChecker {
	return &ReadinessChecker{db: pool}
}

// CheckReady считает записи в memories: запрос проходит, только если
// база доступна и схема применена.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	var count int64
	err := c.db.QueryRow(ctx, `SELECT count(*) FROM memories`).Scan(&count)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable {
			return "fail", "таблица memories отсутствует, выполните migrate"
		}
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}
	return "ok", fmt.Sprintf("подключение активно, записей: %d", count)
}
