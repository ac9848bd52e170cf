package archive

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Progress receives the total number of records of an import and one
// notification per stored record.
type Progress interface {
	SetNumWorkItems(ctx context.Context, n int) error
	WorkItemCompleted(ctx context.Context) error
}

type NopProgress struct{}

func (NopProgress) SetNumWorkItems(context.Context, int) error { return nil }
func (NopProgress) WorkItemCompleted(context.Context) error    { return nil }

// LogProgress logs a line every Every completed records and at the end.
type LogProgress struct {
	Logger *zap.Logger
	Source string
	Every  int

	mu    sync.Mutex
	total int
	done  int
}

func (p *LogProgress) SetNumWorkItems(ctx context.Context, n int) error {
	p.mu.Lock()
	p.total, p.done = n, 0
	p.mu.Unlock()
	p.logger().Info("archive_import_total", zap.String("source", p.Source), zap.Int("total", n))
	return nil
}

func (p *LogProgress) WorkItemCompleted(ctx context.Context) error {
	p.mu.Lock()
	p.done++
	done, total := p.done, p.total
	p.mu.Unlock()
	every := p.Every
	if every <= 0 {
		every = 1000
	}
	if done%every == 0 || done == total {
		p.logger().Info("archive_import_progress",
			zap.String("source", p.Source),
			zap.Int("done", done),
			zap.Int("total", total),
		)
	}
	return nil
}

// Done returns the number of completed records.
func (p *LogProgress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *LogProgress) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
