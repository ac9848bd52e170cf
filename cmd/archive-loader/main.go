package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/park285/chess-archive/internal/archivebuilder"
	appcfg "github.com/park285/chess-archive/internal/config"
	"github.com/park285/chess-archive/internal/httpapi"
	"github.com/park285/chess-archive/internal/obslog"
	"github.com/park285/chess-archive/internal/service/archive"
)

const usage = `usage: archive-loader <command> [args]

commands:
  import <file.pgn>...   import archives (ARCHIVE_PATHS when no files are given)
  query  [flags]         print stored games matching the filter
  serve                  run the HTTP API on HTTP_ADDR
  submit <file.pgn>...   upload archives to a running server (ARCHIVE_API_URL)
  status <job-id>...     show import job progress from a running server`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]

	// remote commands only need the API URL
	switch cmd {
	case "submit", "status":
		if cmd == "submit" {
			err = runSubmit(ctx, cfg, args)
		} else {
			err = runStatus(ctx, cfg, args)
		}
		if err != nil {
			logger.Error("archive_command_failed", zap.String("command", cmd), zap.Error(err))
			obslog.Sync()
			os.Exit(1)
		}
		return
	}

	deps, err := archivebuilder.New(cfg, logger)
	if err != nil {
		log.Fatalf("archive init error: %v", err)
	}
	defer func() { _ = deps.Close() }()

	switch cmd {
	case "import":
		err = runImport(ctx, cfg, deps, args)
	case "query":
		err = runQuery(ctx, cfg, deps, args)
	case "serve":
		err = runServe(ctx, cfg, deps)
	default:
		fmt.Fprintln(os.Stderr, usage)
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		logger.Error("archive_command_failed", zap.String("command", cmd), zap.Error(err))
		obslog.Sync()
		_ = deps.Close()
		os.Exit(1)
	}
}

func runImport(ctx context.Context, cfg *appcfg.AppConfig, deps *archivebuilder.Deps, paths []string) error {
	if len(paths) == 0 {
		paths = cfg.ArchivePaths
	}
	if len(paths) == 0 {
		return errors.New("no archive files given")
	}
	var failed int
	for _, path := range paths {
		prog := &archive.LogProgress{Logger: obslog.L(), Source: path, Every: 1000}
		sum, err := deps.Importer.ImportFile(ctx, path, prog)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			obslog.L().Error("archive_import_failed", zap.String("source", path), zap.Error(err))
			failed++
			continue
		}
		text, err := deps.Formatter.ImportSummary(sum)
		if err != nil {
			return err
		}
		fmt.Println(text)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d archives failed", failed, len(paths))
	}
	return nil
}

func runServe(ctx context.Context, cfg *appcfg.AppConfig, deps *archivebuilder.Deps) error {
	srv, err := httpapi.NewServer(deps.Importer, deps.Repo, deps.Jobs, httpapi.Options{
		MaxBodyBytes: cfg.ImportMaxBytes,
		WithOpenings: cfg.ReportOpenings,
		Logger:       obslog.L(),
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.HTTPAddr)
}
