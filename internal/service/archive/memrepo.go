package archive

import (
	"context"
	"strings"
	"sync"

	"github.com/park285/chess-archive/internal/domain"
)

// memrepo is an in-memory Repository used when no DATABASE_URL is configured
// and in tests. It follows the same uniqueness rules as the Postgres schema.
type memrepo struct {
	mu sync.RWMutex

	nextPlayerID int64
	nextEventID  int64
	nextGameID   int64

	players   map[string]*domain.Player // name -> player
	events    map[eventKey]*domain.Event
	gameIndex map[gameKey]struct{}
	games     []*memGame // insertion order
}

type eventKey struct{ name, site, date string }

type gameKey struct {
	round        string
	black, white int64
	event        int64
}

type memGame struct {
	id     int64
	round  string
	result domain.Result
	moves  string
	white  *domain.Player
	black  *domain.Player
	event  *domain.Event
}

func NewMemoryRepository() Repository {
	return &memrepo{
		players:   make(map[string]*domain.Player),
		events:    make(map[eventKey]*domain.Event),
		gameIndex: make(map[gameKey]struct{}),
	}
}

func (m *memrepo) UpsertGame(ctx context.Context, rec domain.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	white := m.upsertPlayer(rec.WhiteName, ParseElo(rec.WhiteElo))
	black := m.upsertPlayer(rec.BlackName, ParseElo(rec.BlackElo))
	event := m.ensureEvent(rec)

	key := gameKey{round: rec.Round, black: black.ID, white: white.ID, event: event.ID}
	if _, exists := m.gameIndex[key]; exists {
		return ErrDuplicateGame
	}
	m.nextGameID++
	m.gameIndex[key] = struct{}{}
	m.games = append(m.games, &memGame{
		id:     m.nextGameID,
		round:  rec.Round,
		result: rec.Result,
		moves:  rec.Moves,
		white:  white,
		black:  black,
		event:  event,
	})
	return nil
}

func (m *memrepo) upsertPlayer(name string, elo int) *domain.Player {
	if p, ok := m.players[name]; ok {
		if elo > p.Elo {
			p.Elo = elo
		}
		return p
	}
	m.nextPlayerID++
	p := &domain.Player{ID: m.nextPlayerID, Name: name, Elo: elo}
	m.players[name] = p
	return p
}

func (m *memrepo) ensureEvent(rec domain.GameRecord) *domain.Event {
	key := eventKey{name: rec.EventName, site: rec.EventSite, date: rec.EventDate}
	if e, ok := m.events[key]; ok {
		return e
	}
	m.nextEventID++
	e := &domain.Event{ID: m.nextEventID, Name: rec.EventName, Site: rec.EventSite, Date: rec.EventDate}
	m.events[key] = e
	return e
}

func (m *memrepo) QueryGames(ctx context.Context, filter domain.GameFilter) ([]*domain.StoredGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.StoredGame
	for _, g := range m.games {
		if !matches(g, filter) {
			continue
		}
		sg := &domain.StoredGame{
			ID:        g.id,
			Round:     g.round,
			Result:    g.result,
			EventName: g.event.Name,
			EventSite: g.event.Site,
			EventDate: g.event.Date,
			WhiteName: g.white.Name,
			WhiteElo:  g.white.Elo,
			BlackName: g.black.Name,
			BlackElo:  g.black.Elo,
		}
		if filter.ShowMoves {
			sg.Moves = g.moves
		}
		out = append(out, sg)
	}
	return out, nil
}

func matches(g *memGame, f domain.GameFilter) bool {
	if f.White != "" && g.white.Name != f.White {
		return false
	}
	if f.Black != "" && g.black.Name != f.Black {
		return false
	}
	if f.Opening != "" && !strings.HasPrefix(g.moves, f.Opening) {
		return false
	}
	if f.Winner != "" && g.result != f.Winner {
		return false
	}
	if f.UseDate {
		day, ok := ParseEventDay(g.event.Date)
		if !ok || day.Before(dayOf(f.Start)) || day.After(dayOf(f.End)) {
			return false
		}
	}
	return true
}

func (m *memrepo) Counts(ctx context.Context) (Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Counts{Players: len(m.players), Events: len(m.events), Games: len(m.games)}, nil
}

func (m *memrepo) Close() error { return nil }
