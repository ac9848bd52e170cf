package pgnarchive

import "github.com/park285/chess-archive/internal/domain"

type scanState int

const (
	stateTags scanState = iota
	stateMoves
)

// Scanner splits archive lines into games. A game is emitted only when a
// blank line ends its move section; an archive without a trailing blank
// line loses its last game, and Pending reports that case.
type Scanner struct {
	state scanState
	b     recordBuilder
	games []domain.GameRecord
}

func NewScanner() *Scanner {
	return &Scanner{state: stateTags}
}

// Feed advances the state machine by one line. Only the empty string is blank.
func (s *Scanner) Feed(line string) {
	blank := line == ""
	switch s.state {
	case stateTags:
		if blank {
			s.state = stateMoves
			return
		}
		s.b.addTagLine(line)
	case stateMoves:
		if blank {
			s.games = append(s.games, s.b.finish())
			s.state = stateTags
			return
		}
		s.b.addMoveLine(line)
	}
}

// Games returns the records emitted so far, in source order.
func (s *Scanner) Games() []domain.GameRecord {
	return append([]domain.GameRecord(nil), s.games...)
}

// Pending reports whether lines were consumed after the last emitted game.
func (s *Scanner) Pending() bool { return s.b.dirty() }

// ParseLines runs a fresh scanner over lines.
func ParseLines(lines []string) []domain.GameRecord {
	s := NewScanner()
	for _, line := range lines {
		s.Feed(line)
	}
	return s.games
}
