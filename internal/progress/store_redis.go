package progress

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

type Store struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl, now: time.Now}
}

// NewClient connects to REDIS_URL and pings the server.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}

func (s *Store) keyJob(id string) string { return "import:job:" + strings.TrimSpace(id) }
func (s *Store) keyIndex() string        { return "import:jobs" }

// Create registers a new QUEUED job for source.
func (s *Store) Create(ctx context.Context, source string) (*Job, error) {
	now := s.now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		Source:    strings.TrimSpace(source),
		State:     StateQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.keyJob(job.ID), map[string]any{
		"source":     job.Source,
		"state":      string(job.State),
		"total":      0,
		"done":       0,
		"stored":     0,
		"duplicates": 0,
		"pending":    "0",
		"error":      "",
		"created_at": now.Format(time.RFC3339Nano),
		"updated_at": now.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, s.keyJob(job.ID), s.ttl)
	pipe.ZAdd(ctx, s.keyIndex(), redis.Z{Score: float64(now.UnixNano()), Member: job.ID})
	pipe.Expire(ctx, s.keyIndex(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}
	return job, nil
}

func (s *Store) Load(ctx context.Context, id string) (*Job, error) {
	vals, err := s.rdb.HGetAll(ctx, s.keyJob(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load import job: %w", err)
	}
	if len(vals) == 0 {
		return nil, ErrJobNotFound
	}
	job := &Job{
		ID:         strings.TrimSpace(id),
		Source:     vals["source"],
		State:      State(vals["state"]),
		Total:      atoi(vals["total"]),
		Done:       atoi(vals["done"]),
		Stored:     atoi(vals["stored"]),
		Duplicates: atoi(vals["duplicates"]),
		Pending:    vals["pending"] == "1",
		Error:      vals["error"],
	}
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, vals["created_at"])
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, vals["updated_at"])
	return job, nil
}

// List returns up to limit most recent jobs; expired entries are skipped.
func (s *Store) List(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 20
	}
	ids, err := s.rdb.ZRevRange(ctx, s.keyIndex(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list import jobs: %w", err)
	}
	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		job, err := s.Load(ctx, id)
		if errors.Is(err, ErrJobNotFound) {
			_ = s.rdb.ZRem(ctx, s.keyIndex(), id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}

func (s *Store) update(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = s.now().UTC().Format(time.RFC3339Nano)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.keyJob(id), fields)
	pipe.Expire(ctx, s.keyJob(id), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Finish marks the job DONE with the final counters.
func (s *Store) Finish(ctx context.Context, id string, stored, duplicates int, pending bool) error {
	p := "0"
	if pending {
		p = "1"
	}
	return s.update(ctx, id, map[string]any{
		"state":      string(StateDone),
		"stored":     stored,
		"duplicates": duplicates,
		"pending":    p,
	})
}

// Fail marks the job FAILED and records the cause.
func (s *Store) Fail(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.update(ctx, id, map[string]any{"state": string(StateFailed), "error": msg})
}

// Tracker returns the per-record progress sink for job id.
func (s *Store) Tracker(id string) *Tracker { return &Tracker{store: s, id: id} }

// Tracker feeds importer progress notifications into a job hash.
type Tracker struct {
	store *Store
	id    string
}

func (t *Tracker) SetNumWorkItems(ctx context.Context, n int) error {
	return t.store.update(ctx, t.id, map[string]any{
		"state": string(StateRunning),
		"total": n,
		"done":  0,
	})
}

func (t *Tracker) WorkItemCompleted(ctx context.Context) error {
	pipe := t.store.rdb.TxPipeline()
	pipe.HIncrBy(ctx, t.store.keyJob(t.id), "done", 1)
	pipe.HSet(ctx, t.store.keyJob(t.id), "updated_at", t.store.now().UTC().Format(time.RFC3339Nano))
	_, err := pipe.Exec(ctx)
	return err
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
