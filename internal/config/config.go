package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	ExportAPIKey string

	// Where DirSaver writes documents
	OutputDir string

	// Remote upload target; replaces OutputDir when set
	UploadURL    string
	UploadAPIKey string

	// Request limits
	MaxContentBytes int64
	MaxBatchSize    int
	RequestTimeout  time.Duration

	// Batch fan-out
	MaxConcurrentExports int

	// PDF
	MarginMM             float64
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ExportAPIKey: os.Getenv("EXPORT_API_KEY"),

		OutputDir: envOr("OUTPUT_DIR", "exports"),

		UploadURL:    os.Getenv("UPLOAD_URL"),
		UploadAPIKey: os.Getenv("UPLOAD_API_KEY"),

		MaxContentBytes: envInt64("MAX_CONTENT_BYTES", 2097152), // 2MB
		MaxBatchSize:    envInt("MAX_BATCH_SIZE", 20),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 60*time.Second),

		MaxConcurrentExports: envInt("MAX_CONCURRENT_EXPORTS", 4),

		MarginMM:             envFloat("PDF_MARGIN_MM", 15),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", false),
	}

	if cfg.MaxContentBytes <= 0 {
		cfg.MaxContentBytes = 2097152
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.MaxConcurrentExports <= 0 {
		cfg.MaxConcurrentExports = 4
	}
	if cfg.MarginMM <= 0 {
		cfg.MarginMM = 15
	}

	return cfg
}

// Validate checks the settings the HTTP server needs.
func (c Config) Validate() error {
	if c.ExportAPIKey == "" {
		return fmt.Errorf("EXPORT_API_KEY is required")
	}
	if c.OutputDir == "" && c.UploadURL == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.MarginMM >= 100 {
		return fmt.Errorf("PDF_MARGIN_MM %.1f leaves no room on an A4 page", c.MarginMM)
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
