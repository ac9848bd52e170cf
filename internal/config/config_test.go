package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "REDIS_URL", "HTTP_ADDR", "IMPORT_MAX_BYTES", "DB_MAX_OPEN_CONNS", "PROGRESS_TTL_SEC", "ARCHIVE_PATHS", "REPORT_OPENINGS", "REPORT_TEMPLATE_DIR", "ARCHIVE_API_URL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.DBMaxOpenConns != 16 || cfg.ImportMaxBytes != 64<<20 || cfg.ProgressTTLSec != 86400 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.APIBaseURL != "http://127.0.0.1:8080" {
		t.Fatalf("api url = %q", cfg.APIBaseURL)
	}
	if !cfg.ReportOpenings || len(cfg.ArchivePaths) != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", " postgres://u:p@localhost/chess ")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("IMPORT_MAX_BYTES", "1024")
	t.Setenv("DB_MAX_OPEN_CONNS", "-3")
	t.Setenv("ARCHIVE_PATHS", "a.pgn, ,b.pgn")
	t.Setenv("REPORT_OPENINGS", "false")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://u:p@localhost/chess" {
		t.Fatalf("DatabaseURL=%q", cfg.DatabaseURL)
	}
	if cfg.HTTPAddr != ":9090" || cfg.ImportMaxBytes != 1024 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.DBMaxOpenConns != 16 {
		t.Fatalf("invalid DB_MAX_OPEN_CONNS should keep default, got %d", cfg.DBMaxOpenConns)
	}
	if len(cfg.ArchivePaths) != 2 || cfg.ArchivePaths[1] != "b.pgn" {
		t.Fatalf("ArchivePaths=%v", cfg.ArchivePaths)
	}
	if cfg.ReportOpenings {
		t.Fatalf("expected ReportOpenings=false")
	}
}

func TestLoadRejectsBadRedisScheme(t *testing.T) {
	t.Setenv("REDIS_URL", "http://localhost:6379")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-redis scheme")
	}
}
