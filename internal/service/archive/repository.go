package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/chess-archive/internal/domain"
)

var (
	ErrDuplicateGame = errors.New("chess game already exists")
	ErrNilRepository = errors.New("nil archive repository")
)

// Repository stores parsed games. UpsertGame is idempotent: players and the
// event are upserted, and an already stored game yields ErrDuplicateGame.
type Repository interface {
	UpsertGame(ctx context.Context, rec domain.GameRecord) error
	QueryGames(ctx context.Context, filter domain.GameFilter) ([]*domain.StoredGame, error)
	Counts(ctx context.Context) (Counts, error)
	Close() error
}

type Counts struct {
	Players int
	Events  int
	Games   int
}

const schema = `
CREATE TABLE IF NOT EXISTS players (
	p_id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	elo  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS events (
	e_id       BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	site       TEXT NOT NULL,
	event_date TEXT NOT NULL,
	event_day  DATE,
	UNIQUE (name, site, event_date)
);
CREATE TABLE IF NOT EXISTS games (
	g_id         BIGSERIAL PRIMARY KEY,
	round        TEXT NOT NULL,
	result       TEXT NOT NULL,
	moves        TEXT NOT NULL,
	black_player BIGINT NOT NULL REFERENCES players (p_id),
	white_player BIGINT NOT NULL REFERENCES players (p_id),
	e_id         BIGINT NOT NULL REFERENCES events (e_id),
	UNIQUE (round, black_player, white_player, e_id)
);`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository opens and pings the database and creates the schema.
func NewPostgresRepository(databaseURL string, maxOpenConns int) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 16
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns / 2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	r := &PostgresRepository{db: db}
	if err := r.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// NewRepository wraps an already opened database handle.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *PostgresRepository) UpsertGame(ctx context.Context, rec domain.GameRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	whiteID, err := upsertPlayer(ctx, tx, rec.WhiteName, ParseElo(rec.WhiteElo))
	if err != nil {
		return err
	}
	blackID, err := upsertPlayer(ctx, tx, rec.BlackName, ParseElo(rec.BlackElo))
	if err != nil {
		return err
	}
	eventID, err := ensureEvent(ctx, tx, rec)
	if err != nil {
		return err
	}

	const insertGame = `
		INSERT INTO games (round, result, moves, black_player, white_player, e_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (round, black_player, white_player, e_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, insertGame, rec.Round, string(rec.Result), rec.Moves, blackID, whiteID, eventID)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit game: %w", err)
	}
	if inserted == 0 {
		return ErrDuplicateGame
	}
	return nil
}

func upsertPlayer(ctx context.Context, tx *sql.Tx, name string, elo int) (int64, error) {
	const query = `
		INSERT INTO players (name, elo)
		VALUES ($1, $2)
		ON CONFLICT (name)
		DO UPDATE SET elo = GREATEST(players.elo, EXCLUDED.elo)
		RETURNING p_id`
	var id int64
	if err := tx.QueryRowContext(ctx, query, name, elo).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert player %q: %w", name, err)
	}
	return id, nil
}

func ensureEvent(ctx context.Context, tx *sql.Tx, rec domain.GameRecord) (int64, error) {
	var day sql.NullTime
	if d, ok := ParseEventDay(rec.EventDate); ok {
		day = sql.NullTime{Time: d, Valid: true}
	}
	const insert = `
		INSERT INTO events (name, site, event_date, event_day)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, site, event_date) DO NOTHING
		RETURNING e_id`
	var id int64
	err := tx.QueryRowContext(ctx, insert, rec.EventName, rec.EventSite, rec.EventDate, day).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	const lookup = `SELECT e_id FROM events WHERE name = $1 AND site = $2 AND event_date = $3`
	if err := tx.QueryRowContext(ctx, lookup, rec.EventName, rec.EventSite, rec.EventDate).Scan(&id); err != nil {
		return 0, fmt.Errorf("select event: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) QueryGames(ctx context.Context, filter domain.GameFilter) ([]*domain.StoredGame, error) {
	query, args := buildGameQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	defer rows.Close()

	var games []*domain.StoredGame
	for rows.Next() {
		var (
			g      domain.StoredGame
			result string
		)
		if err := rows.Scan(
			&g.ID,
			&g.Round,
			&result,
			&g.Moves,
			&g.EventName,
			&g.EventSite,
			&g.EventDate,
			&g.WhiteName,
			&g.WhiteElo,
			&g.BlackName,
			&g.BlackElo,
		); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Result = domain.Result(result)
		if !filter.ShowMoves {
			g.Moves = ""
		}
		games = append(games, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

func buildGameQuery(filter domain.GameFilter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`
		SELECT
			g.g_id,
			g.round,
			g.result,
			g.moves,
			e.name,
			e.site,
			e.event_date,
			w.name,
			w.elo,
			bl.name,
			bl.elo
		FROM games g
		JOIN events e ON e.e_id = g.e_id
		JOIN players w ON w.p_id = g.white_player
		JOIN players bl ON bl.p_id = g.black_player
		WHERE TRUE`)
	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&b, "\n\t\tAND "+cond, len(args))
	}
	if filter.White != "" {
		add("w.name = $%d", filter.White)
	}
	if filter.Black != "" {
		add("bl.name = $%d", filter.Black)
	}
	if filter.Opening != "" {
		add("g.moves LIKE $%d", escapeLike(filter.Opening)+"%")
	}
	if filter.Winner != "" {
		add("g.result = $%d", string(filter.Winner))
	}
	if filter.UseDate {
		add("e.event_day >= $%d", dayOf(filter.Start))
		add("e.event_day <= $%d", dayOf(filter.End))
	}
	b.WriteString("\n\t\tORDER BY g.g_id")
	return b.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepository) Counts(ctx context.Context) (Counts, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM players),
		(SELECT COUNT(*) FROM events),
		(SELECT COUNT(*) FROM games)`
	var c Counts
	if err := r.db.QueryRowContext(ctx, query).Scan(&c.Players, &c.Events, &c.Games); err != nil {
		return Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}
