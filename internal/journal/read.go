package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ReadRun returns the run with the given ID, or ErrRunNotFound.
func (j *Journal) ReadRun(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, scenario, model, initial_state, initial_hash, seq
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ReadSteps returns the steps of a run ordered by seq.
// Returns an empty slice (not nil) when the run has no steps.
func (j *Journal) ReadSteps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, dispatch_id, tag, payload, state, state_hash, changed
		FROM steps
		WHERE run_id = ?
		ORDER BY seq ASC, dispatch_id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var (
			s       Step
			payload sql.NullString
			state   string
		)
		if err := rows.Scan(&s.RunID, &s.Seq, &s.DispatchID, &s.Tag, &payload, &state, &s.StateHash, &s.Changed); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if payload.Valid {
			s.Payload = json.RawMessage(payload.String)
		}
		s.State = json.RawMessage(state)
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// ListRuns returns every run with its step count, ordered by seq.
func (j *Journal) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.id, r.scenario, r.model, r.initial_state, r.initial_hash, r.seq,
		       COUNT(s.seq), COALESCE(MAX(s.seq), 0)
		FROM runs r
		LEFT JOIN steps s ON s.run_id = r.id
		GROUP BY r.id
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var (
			rs    RunSummary
			state string
		)
		if err := rows.Scan(&rs.ID, &rs.Scenario, &rs.Model, &state, &rs.InitialHash, &rs.Seq, &rs.Steps, &rs.LastSeq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rs.InitialState = json.RawMessage(state)
		runs = append(runs, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row *sql.Row) (Run, error) {
	var (
		r     Run
		state string
	)
	if err := row.Scan(&r.ID, &r.Scenario, &r.Model, &state, &r.InitialHash, &r.Seq); err != nil {
		return Run{}, err
	}
	r.InitialState = json.RawMessage(state)
	return r, nil
}
