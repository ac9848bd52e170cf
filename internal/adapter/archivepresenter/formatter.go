package archivepresenter

import (
	"fmt"
	"strings"

	"github.com/park285/chess-archive/internal/msgcat"
	"github.com/park285/chess-archive/internal/service/archive"
	"github.com/park285/chess-archive/pkg/archivedto"
)

// Formatter renders query results and import summaries as plain text using
// the message catalog.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

// Games renders "<n> results" followed by one block per game, each block
// preceded by a blank line.
func (f *Formatter) Games(list *archivedto.GameList) (string, error) {
	count := 0
	if list != nil {
		count = len(list.Games)
	}
	var sb strings.Builder
	header, err := f.cat.Render("report.header", map[string]any{"Count": count})
	if err != nil {
		return "", err
	}
	sb.WriteString(header)
	sb.WriteString("\n")
	if list == nil {
		return sb.String(), nil
	}
	for _, g := range list.Games {
		if err := f.writeGame(&sb, g); err != nil {
			return "", fmt.Errorf("render game %d: %w", g.ID, err)
		}
	}
	return sb.String(), nil
}

func (f *Formatter) writeGame(sb *strings.Builder, g *archivedto.Game) error {
	keys := []string{
		"report.game.event",
		"report.game.site",
		"report.game.date",
		"report.game.white",
		"report.game.black",
		"report.game.result",
	}
	if g.Moves != "" {
		keys = append(keys, "report.game.moves")
	}
	sb.WriteString("\n")
	for _, key := range keys {
		line, err := f.cat.Render(key, g)
		if err != nil {
			return err
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if g.OpeningCode != "" {
		line, err := f.cat.Render("report.game.opening", map[string]any{"Code": g.OpeningCode, "Title": g.OpeningTitle})
		if err != nil {
			return err
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return nil
}

// ImportSummary renders the per-file CLI summary, plus a second line when
// the last game was left unterminated.
func (f *Formatter) ImportSummary(sum *archive.ImportSummary) (string, error) {
	if sum == nil {
		return "", nil
	}
	text, err := f.cat.Render("import.summary", sum)
	if err != nil {
		return "", err
	}
	if sum.Pending {
		pending, err := f.cat.Render("import.pending", sum)
		if err != nil {
			return "", err
		}
		text += "\n" + pending
	}
	return text, nil
}
