package pgnarchive

import (
	"testing"

	"github.com/park285/chess-archive/internal/domain"
)

func TestNormalizeResult(t *testing.T) {
	cases := map[string]domain.Result{
		"1-0":     domain.ResultWhite,
		"0-1":     domain.ResultBlack,
		"1/2-1/2": domain.ResultDraw,
		"*":       domain.ResultDraw,
		"":        domain.ResultDraw,
		"1-0 ":    domain.ResultDraw,
		"+/-":     domain.ResultDraw,
	}
	for raw, want := range cases {
		if got := NormalizeResult(raw); got != want {
			t.Fatalf("NormalizeResult(%q) = %q, want %q", raw, got, want)
		}
		if !NormalizeResult(raw).Valid() {
			t.Fatalf("NormalizeResult(%q) returned invalid code", raw)
		}
	}
}

func TestParseLines_ResultTagWithoutQuotesIsIgnored(t *testing.T) {
	games := ParseLines([]string{`[Result 1-0]`, "", "1.e4", ""})
	if games[0].Result != "" {
		t.Fatalf("expected empty result, got %q", games[0].Result)
	}
}
