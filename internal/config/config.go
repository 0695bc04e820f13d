// Пакет config — загрузка и валидация конфигурации Memory Timeline
// из переменных окружения (префикс MT_).
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Хранилище загруженных файлов ---

	// Корневая директория blob store
	UploadDir string
	// Максимальное количество файлов в одном запросе
	UploadMaxFiles int
	// Максимальный размер multipart-тела запроса в байтах
	UploadMaxBytes int64

	// --- HTTP ---

	// Разрешённые CORS origins (браузерный клиент)
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration

	// --- Timeline ---

	// TTL кэша timeline (0 — кэш отключён)
	TimelineCacheTTL time.Duration

	// --- topologymetrics ---

	// Имя группы в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
//
//nolint:cyclop // линейный разбор переменных окружения
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// MT_PORT — порт HTTP-сервера (по умолчанию 4001)
	cfg.Port, err = getEnvInt("MT_PORT", 4001)
	if err != nil {
		return nil, fmt.Errorf("MT_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("MT_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MT_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MT_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("MT_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MT_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("MT_DB_HOST")
	if err != nil {
		return nil, err
	}

	cfg.DBPort, err = getEnvInt("MT_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("MT_DB_PORT: %w", err)
	}

	cfg.DBName, err = getEnvRequired("MT_DB_NAME")
	if err != nil {
		return nil, err
	}

	cfg.DBUser, err = getEnvRequired("MT_DB_USER")
	if err != nil {
		return nil, err
	}

	cfg.DBPassword, err = getEnvRequired("MT_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	cfg.DBSSLMode = getEnvDefault("MT_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("MT_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Хранилище загруженных файлов ---

	cfg.UploadDir = getEnvDefault("MT_UPLOAD_DIR", "./uploads")

	// MT_UPLOAD_MAX_FILES — до 5 файлов на запрос, как в исходном клиенте
	cfg.UploadMaxFiles, err = getEnvInt("MT_UPLOAD_MAX_FILES", 5)
	if err != nil {
		return nil, fmt.Errorf("MT_UPLOAD_MAX_FILES: %w", err)
	}
	if cfg.UploadMaxFiles < 1 || cfg.UploadMaxFiles > 50 {
		return nil, fmt.Errorf("MT_UPLOAD_MAX_FILES: значение %d вне допустимого диапазона 1-50", cfg.UploadMaxFiles)
	}

	maxBytes, err := getEnvInt("MT_UPLOAD_MAX_BYTES", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("MT_UPLOAD_MAX_BYTES: %w", err)
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("MT_UPLOAD_MAX_BYTES: значение должно быть > 0")
	}
	cfg.UploadMaxBytes = int64(maxBytes)

	// --- HTTP ---

	cfg.CORSAllowedOrigins = parseCSV(getEnvDefault("MT_CORS_ALLOWED_ORIGINS", "*"))

	cfg.HTTPReadTimeout, err = getEnvDuration("MT_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MT_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("MT_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MT_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("MT_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MT_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Timeline ---

	cfg.TimelineCacheTTL, err = getEnvDuration("MT_TIMELINE_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MT_TIMELINE_CACHE_TTL: %w", err)
	}
	if cfg.TimelineCacheTTL < 0 {
		return nil, fmt.Errorf("MT_TIMELINE_CACHE_TTL: значение должно быть >= 0")
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("MT_DEPHEALTH_GROUP", "memory-timeline")

	cfg.DephealthCheckInterval, err = getEnvDuration("MT_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MT_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("MT_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MT_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL для pgxpool.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL.
// Используется golang-migrate (схема pgx5) и topologymetrics (схема postgres).
func (c *Config) DatabaseURL() string {
	return c.databaseURL("postgres")
}

// MigrateURL возвращает URL подключения в формате драйвера pgx5 golang-migrate.
func (c *Config) MigrateURL() string {
	return c.databaseURL("pgx5")
}

func (c *Config) databaseURL(scheme string) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку со значениями через запятую, отбрасывая пустые.
func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
