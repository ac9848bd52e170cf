package pgnarchive

import "github.com/park285/chess-archive/internal/domain"

const (
	resultWhiteWin = "1-0"
	resultBlackWin = "0-1"
)

// NormalizeResult maps a raw Result tag value onto W, B or D.
// Draws, "*" and any other marker all collapse into D.
func NormalizeResult(raw string) domain.Result {
	switch raw {
	case resultWhiteWin:
		return domain.ResultWhite
	case resultBlackWin:
		return domain.ResultBlack
	default:
		return domain.ResultDraw
	}
}
