package openingbook

import (
	"strings"
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

// maxClassifyPly bounds the replay; ECO lines are far shorter.
const maxClassifyPly = 40

func loadECO() *opening.BookECO {
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	return ecoBook
}

// Classify replays the leading SAN moves of stored move text and returns the
// deepest matching ECO code and title. Replay stops at the first token that
// is not a legal move, so unseparated line joins only shorten the line.
func Classify(moves string) (code, title string) {
	game := chesslib.NewGame()
	ply := 0
	for _, tok := range SANTokens(moves) {
		if ply >= maxClassifyPly {
			break
		}
		if err := game.PushNotationMove(tok, chesslib.AlgebraicNotation{}, nil); err != nil {
			break
		}
		ply++
	}
	if ply == 0 {
		return "", ""
	}
	book := loadECO()
	if book == nil {
		return "", ""
	}
	if eco := book.Find(game.Moves()); eco != nil {
		return eco.Code(), eco.Title()
	}
	return "", ""
}

// SANTokens splits move text into bare SAN tokens: move numbers, NAGs,
// annotation glyphs and comments are dropped and a result token ends the list.
func SANTokens(moves string) []string {
	var out []string
	depth := 0
	for _, field := range strings.Fields(moves) {
		if depth > 0 || strings.HasPrefix(field, "{") {
			if strings.HasPrefix(field, "{") {
				depth++
			}
			if strings.HasSuffix(field, "}") {
				depth--
			}
			continue
		}
		if isResultToken(field) {
			break
		}
		tok := stripMoveNumber(field)
		tok = strings.TrimRight(tok, "!?")
		if tok == "" || strings.HasPrefix(tok, "$") {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isResultToken(s string) bool {
	switch s {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

// stripMoveNumber removes a leading "12." or "12..." prefix.
func stripMoveNumber(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '.' {
		if i == len(s) {
			return ""
		}
		return s
	}
	for i < len(s) && s[i] == '.' {
		i++
	}
	return s[i:]
}
