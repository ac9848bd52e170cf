package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-archive/internal/archiveclient"
	appcfg "github.com/park285/chess-archive/internal/config"
	"github.com/park285/chess-archive/internal/obslog"
	"github.com/park285/chess-archive/pkg/archivedto"
)

// runSubmit uploads each file to a running server and waits for its job.
func runSubmit(ctx context.Context, cfg *appcfg.AppConfig, paths []string) error {
	if len(paths) == 0 {
		return errors.New("no archive files given")
	}
	client := archiveclient.New(cfg.APIBaseURL)
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		id, err := client.Submit(ctx, filepath.Base(path), raw)
		if err != nil {
			return fmt.Errorf("submit %s: %w", path, err)
		}
		obslog.L().Info("archive_job_submitted", zap.String("source", path), zap.String("job_id", id))
		job, err := client.Wait(ctx, id, 500*time.Millisecond)
		if err != nil {
			return fmt.Errorf("wait %s: %w", id, err)
		}
		printJob(job)
		if job.State == "FAILED" {
			return fmt.Errorf("import of %s failed: %s", path, job.Error)
		}
	}
	return nil
}

func runStatus(ctx context.Context, cfg *appcfg.AppConfig, ids []string) error {
	if len(ids) == 0 {
		return errors.New("no job ids given")
	}
	client := archiveclient.New(cfg.APIBaseURL)
	for _, id := range ids {
		job, err := client.Job(ctx, id)
		if err != nil {
			return fmt.Errorf("job %s: %w", id, err)
		}
		printJob(job)
	}
	return nil
}

func printJob(job *archivedto.ImportJob) {
	fmt.Printf("%s %s %s %d/%d stored=%d duplicates=%d", job.ID, job.Source, job.State, job.Done, job.Total, job.Stored, job.Duplicates)
	if job.Pending {
		fmt.Print(" unterminated-last-game")
	}
	if job.Error != "" {
		fmt.Printf(" error=%q", job.Error)
	}
	fmt.Println()
}
