package pgnarchive

import (
	"strings"

	"github.com/park285/chess-archive/internal/domain"
)

// recordBuilder accumulates the fields of the game being scanned.
type recordBuilder struct {
	rec   domain.GameRecord
	moves strings.Builder
	lines int
}

func (b *recordBuilder) setTag(name, value string) {
	switch name {
	case TagEvent:
		b.rec.EventName = value
	case TagSite:
		b.rec.EventSite = value
	case TagRound:
		b.rec.Round = value
	case TagWhite:
		b.rec.WhiteName = value
	case TagBlack:
		b.rec.BlackName = value
	case TagResult:
		b.rec.Result = NormalizeResult(value)
	case TagWhiteElo:
		b.rec.WhiteElo = value
	case TagBlackElo:
		b.rec.BlackElo = value
	case TagEventDate:
		b.rec.EventDate = value
	}
}

func (b *recordBuilder) addTagLine(line string) {
	b.lines++
	if name, value, ok := ExtractTag(line); ok {
		b.setTag(name, value)
	}
}

func (b *recordBuilder) addMoveLine(line string) {
	b.lines++
	b.moves.WriteString(line)
}

func (b *recordBuilder) dirty() bool { return b.lines > 0 }

// finish returns the accumulated record and resets every slot.
func (b *recordBuilder) finish() domain.GameRecord {
	rec := b.rec
	rec.Moves = b.moves.String()
	b.rec = domain.GameRecord{}
	b.moves.Reset()
	b.lines = 0
	return rec
}
