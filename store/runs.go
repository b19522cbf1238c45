package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStats summarizes one conversion run.
type RunStats struct {
	Methods   int // records read
	Converted int // converted in this run
	Cached    int // served from the cache
	Absent    int // no body to convert
	Failed    int // conversion panicked
}

// Run is a recorded conversion run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	Stats      RunStats
}

// BeginRun records the start of a run and returns its ID.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "INSERT INTO runs (id, started_at) VALUES (?, ?)", id, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("store: starting run: %w", err)
	}
	return id, nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, id string, stats RunStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, methods = ?, converted = ?, cached = ?, absent = ?, failed = ?
		 WHERE id = ?`,
		time.Now().UnixNano(), stats.Methods, stats.Converted, stats.Cached, stats.Absent, stats.Failed, id,
	)
	if err != nil {
		return fmt.Errorf("store: finishing run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return nil
}

// LastRun returns the most recently started run.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	var (
		r        Run
		started  int64
		finished sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, methods, converted, cached, absent, failed
		 FROM runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&r.ID, &started, &finished, &r.Stats.Methods, &r.Stats.Converted, &r.Stats.Cached, &r.Stats.Absent, &r.Stats.Failed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: querying runs: %w", err)
	}

	r.StartedAt = time.Unix(0, started)
	if finished.Valid {
		r.FinishedAt = time.Unix(0, finished.Int64)
	}
	return &r, nil
}
