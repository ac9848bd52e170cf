package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/park285/chess-archive/internal/pgnarchive"
)

// ImportSummary describes one finished (or aborted) import.
type ImportSummary struct {
	Source     string
	Total      int
	Stored     int
	Duplicates int
	// Pending is true when the archive ended without a blank line after the
	// last move section; that game is not part of Total.
	Pending bool
}

type Importer struct {
	repo   Repository
	logger *zap.Logger
}

func NewImporter(repo Repository, logger *zap.Logger) (*Importer, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{repo: repo, logger: logger}, nil
}

func (im *Importer) ImportFile(ctx context.Context, path string, progress Progress) (*ImportSummary, error) {
	lines, err := pgnarchive.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return im.ImportLines(ctx, path, lines, progress)
}

func (im *Importer) ImportReader(ctx context.Context, source string, r io.Reader, progress Progress) (*ImportSummary, error) {
	lines, err := pgnarchive.ReadLines(r)
	if err != nil {
		return nil, err
	}
	return im.ImportLines(ctx, source, lines, progress)
}

// ImportLines parses lines and stores every game in source order, notifying
// progress once per record. A storage error stops the import.
func (im *Importer) ImportLines(ctx context.Context, source string, lines []string, progress Progress) (*ImportSummary, error) {
	if progress == nil {
		progress = NopProgress{}
	}
	sc := pgnarchive.NewScanner()
	for _, line := range lines {
		sc.Feed(line)
	}
	games := sc.Games()
	sum := &ImportSummary{Source: source, Total: len(games), Pending: sc.Pending()}
	if sum.Pending {
		im.logger.Warn("archive_unterminated_game",
			zap.String("source", source),
			zap.String("reason", "no blank line after last move section"),
		)
	}

	if err := progress.SetNumWorkItems(ctx, len(games)); err != nil {
		im.logger.Warn("archive_progress_error", zap.String("source", source), zap.Error(err))
	}

	for i, rec := range games {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		err := im.repo.UpsertGame(ctx, rec)
		switch {
		case errors.Is(err, ErrDuplicateGame):
			sum.Duplicates++
		case err != nil:
			im.logger.Error("archive_store_error",
				zap.String("source", source),
				zap.Int("index", i+1),
				zap.Error(err),
			)
			return sum, fmt.Errorf("store game %d of %s: %w", i+1, source, err)
		default:
			sum.Stored++
		}
		if err := progress.WorkItemCompleted(ctx); err != nil {
			im.logger.Warn("archive_progress_error", zap.String("source", source), zap.Error(err))
		}
	}

	im.logger.Info("archive_import_done",
		zap.String("source", source),
		zap.Int("total", sum.Total),
		zap.Int("stored", sum.Stored),
		zap.Int("duplicates", sum.Duplicates),
		zap.Bool("pending", sum.Pending),
	)
	return sum, nil
}
