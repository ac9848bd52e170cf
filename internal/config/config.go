package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	DatabaseURL    string
	DBMaxOpenConns int
	RedisURL       string
	ProgressTTLSec int

	HTTPAddr       string
	ImportMaxBytes int

	ReportTemplateDir string
	ReportOpenings    bool

	ArchivePaths []string
	// base URL used by `submit` and `status`
	APIBaseURL string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		DBMaxOpenConns: 16,
		ProgressTTLSec: 86400,
		HTTPAddr:       ":8080",
		ImportMaxBytes: 64 << 20,
		ReportOpenings: true,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.ReportTemplateDir = strings.TrimSpace(os.Getenv("REPORT_TEMPLATE_DIR"))

	if v := strings.TrimSpace(os.Getenv("DB_MAX_OPEN_CONNS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DBMaxOpenConns = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("PROGRESS_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProgressTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("IMPORT_MAX_BYTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ImportMaxBytes = n
		}
	}
	cfg.APIBaseURL = strings.TrimSpace(os.Getenv("ARCHIVE_API_URL"))
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://127.0.0.1" + cfg.HTTPAddr
		if !strings.HasPrefix(cfg.HTTPAddr, ":") {
			cfg.APIBaseURL = "http://" + cfg.HTTPAddr
		}
	}
	if v := strings.TrimSpace(os.Getenv("REPORT_OPENINGS")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ReportOpenings = b
		}
	}

	// comma separated list of archives for `import` without arguments
	if v := strings.TrimSpace(os.Getenv("ARCHIVE_PATHS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			s := strings.TrimSpace(p)
			if s != "" {
				cfg.ArchivePaths = append(cfg.ArchivePaths, s)
			}
		}
	}

	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return nil, errors.New("REDIS_URL must use redis:// or rediss://")
	}

	return cfg, nil
}
