package main

import (
	"testing"
	"time"

	"github.com/park285/chess-archive/internal/domain"
)

func TestParseQueryFlags(t *testing.T) {
	f, err := parseQueryFlags([]string{"-white", "Carlsen", "-winner", "w", "-from", "2021-01-01", "-to", "2021-12-31", "-moves"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.White != "Carlsen" || f.Winner != domain.ResultWhite || !f.ShowMoves {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if !f.UseDate || !f.Start.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date range not set: %+v", f)
	}
}

func TestParseQueryFlagsRejectsBadInput(t *testing.T) {
	cases := [][]string{
		{"-winner", "X"},
		{"-from", "2021-01-01"},
		{"-from", "2021/01/01", "-to", "2021-02-01"},
		{"-nope"},
	}
	for _, args := range cases {
		if _, err := parseQueryFlags(args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
