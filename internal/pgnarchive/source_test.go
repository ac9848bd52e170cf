package pgnarchive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadLines_StripsCarriageReturn(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("[Event \"A\"]\r\n\r\n1.e4\r\n\r\n"))
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := []string{`[Event "A"]`, "", "1.e4", ""}
	if len(lines) != len(want) {
		t.Fatalf("lines=%q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.pgn")
	content := "[Event \"A\"]\n[Result \"0-1\"]\n\n1.e4 e5\n\n[Event \"B\"]\n\n1.d4\n\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	games, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(games) != 2 || games[1].EventName != "B" {
		t.Fatalf("unexpected games: %+v", games)
	}
}

func TestParseFile_MissingSource(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.pgn"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errors.Is(err, ErrSourceUnavailable) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unexpected error chain: %v", err)
	}
}
