package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/park285/chess-archive/internal/adapter/archivepresenter"
	"github.com/park285/chess-archive/internal/archivebuilder"
	appcfg "github.com/park285/chess-archive/internal/config"
	"github.com/park285/chess-archive/internal/domain"
)

func parseQueryFlags(args []string) (domain.GameFilter, error) {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	white := fs.String("white", "", "exact white player name")
	black := fs.String("black", "", "exact black player name")
	openingPrefix := fs.String("opening", "", "move text prefix, e.g. 1.e4")
	winner := fs.String("winner", "", "W, B or D")
	from := fs.String("from", "", "first event day (YYYY-MM-DD)")
	to := fs.String("to", "", "last event day (YYYY-MM-DD)")
	moves := fs.Bool("moves", false, "include move text")
	if err := fs.Parse(args); err != nil {
		return domain.GameFilter{}, err
	}

	f := domain.GameFilter{
		White:     strings.TrimSpace(*white),
		Black:     strings.TrimSpace(*black),
		Opening:   strings.TrimSpace(*openingPrefix),
		ShowMoves: *moves,
	}
	if w := strings.ToUpper(strings.TrimSpace(*winner)); w != "" {
		f.Winner = domain.Result(w)
		if !f.Winner.Valid() {
			return f, fmt.Errorf("invalid -winner %q (want W, B or D)", *winner)
		}
	}
	if *from != "" || *to != "" {
		start, err := time.Parse("2006-01-02", strings.TrimSpace(*from))
		if err != nil {
			return f, fmt.Errorf("invalid -from: %w", err)
		}
		end, err := time.Parse("2006-01-02", strings.TrimSpace(*to))
		if err != nil {
			return f, fmt.Errorf("invalid -to: %w", err)
		}
		f.UseDate, f.Start, f.End = true, start, end
	}
	return f, nil
}

func runQuery(ctx context.Context, cfg *appcfg.AppConfig, deps *archivebuilder.Deps, args []string) error {
	filter, err := parseQueryFlags(args)
	if err != nil {
		return err
	}
	games, err := deps.Repo.QueryGames(ctx, filter)
	if err != nil {
		return fmt.Errorf("query games: %w", err)
	}
	text, err := deps.Formatter.Games(archivepresenter.ToDTOGames(games, cfg.ReportOpenings))
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
