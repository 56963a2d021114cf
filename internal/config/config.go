// Package config собирает настройки сервиса из .env, окружения и флагов.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

const (
	OTelNone   = "none"
	OTelStdout = "stdout"
)

type Config struct {
	Port              string
	Storage           string // хранилище постов: in-memory или postgres
	CommentStorage    string // хранилище комментариев: пусто (как у постов) или mongo
	DatabaseURL       string
	MongoURI          string
	MongoDB           string
	UserServiceURL    string
	HTTPClientTimeout time.Duration
	PostLimit         int
	CommentLimit      int
	JWTSecret         string
	LogLevel          slog.Level
	OTelExporter      string // экспортер спанов и метрик: none или stdout
	OTelInterval      time.Duration
	ShutdownTimeout   time.Duration
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

// Load читает .env (если он есть), затем окружение, затем флаги из args.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(args)
}

// FromEnv собирает конфигурацию без чтения .env.
func FromEnv(args []string) (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDB:        getEnv("MONGO_DB", "content"),
		UserServiceURL: getEnv("USER_SERVICE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		OTelExporter:   strings.ToLower(getEnv("OTEL_EXPORTER", OTelStdout)),
	}

	var err error
	if cfg.HTTPClientTimeout, err = time.ParseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid HTTP_CLIENT_TIMEOUT: %w", err)
	}
	if cfg.OTelInterval, err = time.ParseDuration(getEnv("OTEL_METRIC_INTERVAL", "1m")); err != nil {
		return nil, fmt.Errorf("invalid OTEL_METRIC_INTERVAL: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.PostLimit, err = getInt("POST_LIMIT", 25); err != nil {
		return nil, err
	}
	if cfg.CommentLimit, err = getInt("COMMENT_LIMIT", 50); err != nil {
		return nil, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.StringVar(&cfg.Storage, "storage", StorageInMemory, "Storage type (in-memory or postgres)")
	fset.StringVar(&cfg.CommentStorage, "comment-storage", "", "Comment storage override (mongo)")
	fset.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageInMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}

	if c.OTelExporter != OTelNone && c.OTelExporter != OTelStdout {
		return fmt.Errorf("unknown OTEL_EXPORTER %q", c.OTelExporter)
	}
	if c.OTelInterval <= 0 {
		return errors.New("OTEL_METRIC_INTERVAL must be positive")
	}

	c.CommentStorage = strings.ToLower(c.CommentStorage)
	switch c.CommentStorage {
	case "":
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI must be set for mongo comment storage")
		}
	default:
		return fmt.Errorf("unknown comment storage %q", c.CommentStorage)
	}
	return nil
}
