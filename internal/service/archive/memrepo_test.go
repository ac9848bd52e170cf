package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/park285/chess-archive/internal/domain"
)

func sampleGames() []domain.GameRecord {
	return []domain.GameRecord{
		{Round: "1", Result: domain.ResultWhite, Moves: "1.e4 e5 2.Nf3 Nc6", WhiteName: "Carlsen, M", WhiteElo: "2830", BlackName: "Caruana, F", BlackElo: "2800", EventName: "Open", EventSite: "Oslo", EventDate: "2019.05.01"},
		{Round: "2", Result: domain.ResultDraw, Moves: "1.d4 d5 2.c4", WhiteName: "Caruana, F", WhiteElo: "2805", BlackName: "Carlsen, M", BlackElo: "2820", EventName: "Open", EventSite: "Oslo", EventDate: "2019.05.01"},
		{Round: "1", Result: domain.ResultBlack, Moves: "1.e4 c5", WhiteName: "Ding, L", WhiteElo: "?", BlackName: "Carlsen, M", BlackElo: "2840", EventName: "Cup", EventSite: "Paris", EventDate: "2021.??.??"},
	}
}

func seededRepo(t *testing.T) Repository {
	t.Helper()
	repo := NewMemoryRepository()
	ctx := context.Background()
	for i, g := range sampleGames() {
		if err := repo.UpsertGame(ctx, g); err != nil {
			t.Fatalf("UpsertGame #%d: %v", i, err)
		}
	}
	return repo
}

func TestMemoryRepository_UpsertIsIdempotent(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()
	before, _ := repo.Counts(ctx)
	for _, g := range sampleGames() {
		if err := repo.UpsertGame(ctx, g); !errors.Is(err, ErrDuplicateGame) {
			t.Fatalf("expected ErrDuplicateGame, got %v", err)
		}
	}
	after, _ := repo.Counts(ctx)
	if before != after {
		t.Fatalf("counts changed on re-import: %+v -> %+v", before, after)
	}
	if after.Players != 3 || after.Games != 3 || after.Events != 2 {
		t.Fatalf("unexpected counts: %+v", after)
	}
}

func TestMemoryRepository_EloKeepsMax(t *testing.T) {
	repo := seededRepo(t)
	games, err := repo.QueryGames(context.Background(), domain.GameFilter{White: "Ding, L"})
	if err != nil {
		t.Fatalf("QueryGames: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	if games[0].BlackElo != 2840 {
		t.Fatalf("Carlsen elo=%d want 2840", games[0].BlackElo)
	}
	if games[0].WhiteElo != 0 {
		t.Fatalf("non-numeric elo should store 0, got %d", games[0].WhiteElo)
	}
}

func TestMemoryRepository_QueryFilters(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()
	cases := []struct {
		name   string
		filter domain.GameFilter
		want   int
	}{
		{"all", domain.GameFilter{}, 3},
		{"white", domain.GameFilter{White: "Carlsen, M"}, 1},
		{"black", domain.GameFilter{Black: "Carlsen, M"}, 2},
		{"opening", domain.GameFilter{Opening: "1.e4"}, 2},
		{"winner", domain.GameFilter{Winner: domain.ResultDraw}, 1},
		{"date hit", domain.GameFilter{UseDate: true, Start: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)}, 2},
		{"date unknown excluded", domain.GameFilter{UseDate: true, Start: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)}, 0},
		{"combined", domain.GameFilter{Black: "Carlsen, M", Opening: "1.d4"}, 1},
	}
	for _, tc := range cases {
		games, err := repo.QueryGames(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: QueryGames: %v", tc.name, err)
		}
		if len(games) != tc.want {
			t.Fatalf("%s: got %d games, want %d", tc.name, len(games), tc.want)
		}
	}
}

func TestMemoryRepository_ShowMoves(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()
	hidden, _ := repo.QueryGames(ctx, domain.GameFilter{})
	if hidden[0].Moves != "" {
		t.Fatalf("moves should be hidden without ShowMoves")
	}
	shown, _ := repo.QueryGames(ctx, domain.GameFilter{ShowMoves: true})
	if shown[0].Moves != "1.e4 e5 2.Nf3 Nc6" {
		t.Fatalf("moves=%q", shown[0].Moves)
	}
}
