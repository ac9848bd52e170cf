package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/park285/chess-archive/internal/domain"
	"github.com/park285/chess-archive/internal/pgnarchive"
)

const twoGames = `[Event "Test Open"]
[Site "Oslo"]
[White "Carlsen, M"]
[Black "Nepomniachtchi, I"]
[WhiteElo "2855"]
[Result "1-0"]

1.e4 e5 2.Nf3

[Event "Test Open"]
[Site "Oslo"]
[White "Nepomniachtchi, I"]
[Black "Carlsen, M"]
[Result "1/2-1/2"]

1.d4 Nf6
2.c4

`

type countingProgress struct {
	total int
	done  int
}

func (p *countingProgress) SetNumWorkItems(_ context.Context, n int) error {
	p.total = n
	return nil
}

func (p *countingProgress) WorkItemCompleted(context.Context) error {
	p.done++
	return nil
}

type failingRepo struct {
	Repository
	failAt int
	calls  int
}

func (r *failingRepo) UpsertGame(ctx context.Context, rec domain.GameRecord) error {
	r.calls++
	if r.calls == r.failAt {
		return errors.New("connection reset")
	}
	return r.Repository.UpsertGame(ctx, rec)
}

func TestImporter_ImportReader(t *testing.T) {
	repo := NewMemoryRepository()
	im, err := NewImporter(repo, nil)
	if err != nil {
		t.Fatalf("NewImporter: %v", err)
	}
	p := &countingProgress{}
	sum, err := im.ImportReader(context.Background(), "inline", strings.NewReader(twoGames), p)
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	if sum.Total != 2 || sum.Stored != 2 || sum.Duplicates != 0 || sum.Pending {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if p.total != 2 || p.done != 2 {
		t.Fatalf("progress total=%d done=%d", p.total, p.done)
	}
	games, _ := repo.QueryGames(context.Background(), domain.GameFilter{ShowMoves: true})
	if len(games) != 2 || games[1].Moves != "1.d4 Nf62.c4" {
		t.Fatalf("unexpected stored games: %+v", games)
	}
}

func TestImporter_ReimportCountsDuplicates(t *testing.T) {
	repo := NewMemoryRepository()
	im, _ := NewImporter(repo, nil)
	ctx := context.Background()
	if _, err := im.ImportReader(ctx, "a", strings.NewReader(twoGames), nil); err != nil {
		t.Fatalf("first import: %v", err)
	}
	sum, err := im.ImportReader(ctx, "a", strings.NewReader(twoGames), nil)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if sum.Stored != 0 || sum.Duplicates != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	c, _ := repo.Counts(ctx)
	if c.Games != 2 || c.Players != 2 || c.Events != 1 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestImporter_PendingGameIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	im, _ := NewImporter(NewMemoryRepository(), zap.New(core))
	input := strings.TrimSuffix(twoGames, "\n\n")
	sum, err := im.ImportReader(context.Background(), "cut", strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	if sum.Total != 1 || !sum.Pending {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if logs.FilterMessage("archive_unterminated_game").Len() != 1 {
		t.Fatalf("expected one unterminated-game warning, got %d", logs.Len())
	}
}

func TestImporter_StorageErrorStops(t *testing.T) {
	repo := &failingRepo{Repository: NewMemoryRepository(), failAt: 2}
	im, _ := NewImporter(repo, nil)
	p := &countingProgress{}
	sum, err := im.ImportReader(context.Background(), "x", strings.NewReader(twoGames), p)
	if err == nil {
		t.Fatalf("expected storage error")
	}
	if !strings.Contains(err.Error(), "store game 2") {
		t.Fatalf("error should name the record index: %v", err)
	}
	if sum.Stored != 1 || p.done != 1 {
		t.Fatalf("unexpected progress: sum=%+v done=%d", sum, p.done)
	}
}

func TestImporter_CancelledContext(t *testing.T) {
	im, _ := NewImporter(NewMemoryRepository(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := im.ImportReader(ctx, "x", strings.NewReader(twoGames), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestImporter_MissingFile(t *testing.T) {
	im, _ := NewImporter(NewMemoryRepository(), nil)
	_, err := im.ImportFile(context.Background(), filepath.Join(t.TempDir(), "none.pgn"), nil)
	if !errors.Is(err, pgnarchive.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestImporter_ImportFileWithLogProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn")
	if err := os.WriteFile(path, []byte(twoGames), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	im, _ := NewImporter(NewMemoryRepository(), nil)
	p := &LogProgress{Source: path, Every: 1}
	sum, err := im.ImportFile(context.Background(), path, p)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if sum.Stored != 2 || p.Done() != 2 {
		t.Fatalf("unexpected result: %+v done=%d", sum, p.Done())
	}
}

func TestNewImporter_NilRepository(t *testing.T) {
	if _, err := NewImporter(nil, nil); !errors.Is(err, ErrNilRepository) {
		t.Fatalf("expected ErrNilRepository, got %v", err)
	}
}
