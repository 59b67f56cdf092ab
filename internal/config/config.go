package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/writingstuff/internal/chunker"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// CORS
	AllowedOrigin string

	// Database
	DatabaseURL   string
	DatabaseDebug bool

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int

	// Ingest
	MaxConcurrentIngest int
	StatsWindow         time.Duration
}

// Load reads configuration from the environment. Variables from a .env
// file in the working directory are applied first without overriding
// ones already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "config: ignoring .env: %v\n", err)
	}
	return fromEnv()
}

func fromEnv() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		APIKey: os.Getenv("WRITINGSTUFF_API_KEY"),

		AllowedOrigin: envOr("CORS_ALLOWED_ORIGIN", "*"),

		DatabaseURL:   envOr("DATABASE_URL", "sqlite:writingstuff.db"),
		DatabaseDebug: envBool("DATABASE_DEBUG", false),

		UploadDir:      envOr("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", chunker.DefaultChunkSize),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", chunker.DefaultOverlap),

		MaxConcurrentIngest: envInt("MAX_CONCURRENT_INGEST", 4),
		StatsWindow:         envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = chunker.DefaultChunkSize
	}
	// Zero overlap is a valid setting.
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = chunker.DefaultOverlap
	}
	if cfg.MaxConcurrentIngest <= 0 {
		cfg.MaxConcurrentIngest = 4
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Chunking returns the default chunk configuration.
func (c Config) Chunking() chunker.Config {
	return chunker.Config{ChunkSize: c.DefaultChunkSize, Overlap: c.DefaultChunkOverlap}
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("WRITINGSTUFF_API_KEY is required")
	}
	if !strings.HasPrefix(c.DatabaseURL, "sqlite:") &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with sqlite:, postgres:// or postgresql://")
	}
	if err := c.Chunking().Validate(); err != nil {
		return fmt.Errorf("DEFAULT_CHUNK_SIZE/DEFAULT_CHUNK_OVERLAP: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
