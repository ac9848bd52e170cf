package archivepresenter

import (
	"github.com/park285/chess-archive/internal/chess/openingbook"
	"github.com/park285/chess-archive/internal/domain"
	"github.com/park285/chess-archive/internal/progress"
	"github.com/park285/chess-archive/pkg/archivedto"
)

// ToDTOGame converts a stored game. The opening is classified only when the
// move text was loaded and withOpening is set.
func ToDTOGame(g *domain.StoredGame, withOpening bool) *archivedto.Game {
	if g == nil {
		return nil
	}
	dto := &archivedto.Game{
		ID:        g.ID,
		Round:     g.Round,
		Result:    string(g.Result),
		Moves:     g.Moves,
		EventName: g.EventName,
		EventSite: g.EventSite,
		EventDate: g.EventDate,
		WhiteName: g.WhiteName,
		WhiteElo:  g.WhiteElo,
		BlackName: g.BlackName,
		BlackElo:  g.BlackElo,
	}
	if withOpening && g.Moves != "" {
		dto.OpeningCode, dto.OpeningTitle = openingbook.Classify(g.Moves)
	}
	return dto
}

func ToDTOGames(games []*domain.StoredGame, withOpening bool) *archivedto.GameList {
	out := &archivedto.GameList{Count: len(games), Games: make([]*archivedto.Game, 0, len(games))}
	for _, g := range games {
		if dto := ToDTOGame(g, withOpening); dto != nil {
			out.Games = append(out.Games, dto)
		}
	}
	return out
}

func ToDTOJob(j *progress.Job) *archivedto.ImportJob {
	if j == nil {
		return nil
	}
	return &archivedto.ImportJob{
		ID:         j.ID,
		Source:     j.Source,
		State:      string(j.State),
		Total:      j.Total,
		Done:       j.Done,
		Stored:     j.Stored,
		Duplicates: j.Duplicates,
		Pending:    j.Pending,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}
