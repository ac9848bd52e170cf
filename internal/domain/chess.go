package domain

import "time"

// Result is the normalized outcome of a game as stored: W, B or D.
type Result string

const (
	ResultWhite Result = "W"
	ResultBlack Result = "B"
	ResultDraw  Result = "D"
)

// Valid reports whether r is one of the three outcome codes.
func (r Result) Valid() bool {
	return r == ResultWhite || r == ResultBlack || r == ResultDraw
}

// GameRecord is one parsed game. Ratings are kept as the raw tag text.
type GameRecord struct {
	Round     string
	Result    Result
	Moves     string
	BlackName string
	BlackElo  string
	WhiteName string
	WhiteElo  string
	EventName string
	EventSite string
	EventDate string
}

type Player struct {
	ID   int64
	Name string
	Elo  int
}

type Event struct {
	ID   int64
	Name string
	Site string
	Date string
}

// StoredGame is a game row joined with its event and both players.
type StoredGame struct {
	ID        int64
	Round     string
	Result    Result
	Moves     string
	EventName string
	EventSite string
	EventDate string
	WhiteName string
	WhiteElo  int
	BlackName string
	BlackElo  int
}

// GameFilter narrows a game query. Empty strings and a false UseDate mean "any".
type GameFilter struct {
	White     string
	Black     string
	Opening   string
	Winner    Result
	UseDate   bool
	Start     time.Time
	End       time.Time
	ShowMoves bool
}
