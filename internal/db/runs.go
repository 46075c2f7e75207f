package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is the stored summary of one optimization run.
type Run struct {
	ID          string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Outcome     string    `json:"outcome"`
	Frames      int       `json:"frames"`
	InitialCost *float64  `json:"initial_cost,omitempty"`
	FinalCost   *float64  `json:"final_cost,omitempty"`
	Obstacles   int       `json:"obstacles"`
	NPoints     int       `json:"n_points"`
	NIterations int       `json:"n_iterations"`
	Error       string    `json:"error,omitempty"`

	LengthCost     *float64 `json:"length_cost,omitempty"`
	SmoothnessCost *float64 `json:"smoothness_cost,omitempty"`
	ObstacleCost   *float64 `json:"obstacle_cost,omitempty"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

const runColumns = `run_id, started_at, finished_at, outcome, frames, initial_cost, final_cost,
	obstacles, n_points, n_iterations, error, length_cost, smoothness_cost, obstacle_cost`

// RecordRun inserts or replaces a run summary.
func (db *DB) RecordRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return errors.New("run id is required")
	}
	switch r.Outcome {
	case OutcomeCompleted, OutcomeCancelled, OutcomeFailed:
	default:
		return fmt.Errorf("unknown run outcome %q", r.Outcome)
	}
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UnixNano(), r.FinishedAt.UnixNano(), r.Outcome, r.Frames,
		r.InitialCost, r.FinalCost, r.Obstacles, r.NPoints, r.NIterations, r.Error,
		r.LengthCost, r.SmoothnessCost, r.ObstacleCost)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// SetCostBreakdown attaches the per-term cost of the final path to a run.
func (db *DB) SetCostBreakdown(ctx context.Context, id string, length, smoothness, obstacle float64) error {
	res, err := db.ExecContext(ctx, `UPDATE runs SET length_cost = ?, smoothness_cost = ?, obstacle_cost = ?
		WHERE run_id = ?`, length, smoothness, obstacle, id)
	if err != nil {
		return fmt.Errorf("set cost breakdown for %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun returns one run by id.
func (db *DB) GetRun(ctx context.Context, id string) (Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return r, err
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs
		ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRuns returns the number of runs per outcome.
func (db *DB) CountRuns(ctx context.Context) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM runs GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var started, finished int64
	var initial, final, length, smoothness, obstacle sql.NullFloat64
	err := s.Scan(&r.ID, &started, &finished, &r.Outcome, &r.Frames, &initial, &final,
		&r.Obstacles, &r.NPoints, &r.NIterations, &r.Error, &length, &smoothness, &obstacle)
	if err != nil {
		return Run{}, err
	}
	r.StartedAt = time.Unix(0, started).UTC()
	r.FinishedAt = time.Unix(0, finished).UTC()
	r.InitialCost = nullable(initial)
	r.FinalCost = nullable(final)
	r.LengthCost = nullable(length)
	r.SmoothnessCost = nullable(smoothness)
	r.ObstacleCost = nullable(obstacle)
	return r, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
