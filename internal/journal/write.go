package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/yartsul/internal/canonical"
)

// WriteRun records a run header and returns it with Seq assigned.
//
// InitialState is stored in canonical form. InitialHash is computed from it
// when empty. Writing a run whose ID already exists is a no-op that returns
// the stored run.
func (j *Journal) WriteRun(ctx context.Context, run Run) (Run, error) {
	stored, inserted, err := j.insertRun(ctx, run)
	if err != nil {
		return Run{}, err
	}
	if !inserted {
		return j.ReadRun(ctx, run.ID)
	}
	return stored, nil
}

// CreateRun is like WriteRun but fails with ErrRunExists when the ID is
// already journaled, so a new run never inherits an old run's steps.
func (j *Journal) CreateRun(ctx context.Context, run Run) (Run, error) {
	stored, inserted, err := j.insertRun(ctx, run)
	if err != nil {
		return Run{}, err
	}
	if !inserted {
		return Run{}, fmt.Errorf("create run %s: %w", run.ID, ErrRunExists)
	}
	return stored, nil
}

func (j *Journal) insertRun(ctx context.Context, run Run) (Run, bool, error) {
	state, err := canonical.Canonicalize(run.InitialState)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: initial state: %w", err)
	}
	run.InitialState = state
	if run.InitialHash == "" {
		run.InitialHash = canonical.StateHashCanonical(state)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&next); err != nil {
		return Run{}, false, fmt.Errorf("write run: next seq: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, model, initial_state, initial_hash, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.Model,
		string(run.InitialState),
		run.InitialHash,
		next,
	)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, false, fmt.Errorf("write run: commit: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return Run{}, false, nil
	}
	run.Seq = next
	return run, true, nil
}

// WriteStep appends a step to its run.
//
// Payload and State are stored in canonical form; StateHash is computed
// when empty. Writes are idempotent on (run_id, seq): a duplicate is
// silently ignored. The run must already exist.
func (j *Journal) WriteStep(ctx context.Context, step Step) error {
	state, err := canonical.Canonicalize(step.State)
	if err != nil {
		return fmt.Errorf("write step: state: %w", err)
	}
	if step.StateHash == "" {
		step.StateHash = canonical.StateHashCanonical(state)
	}

	var payload sql.NullString
	if len(step.Payload) > 0 {
		p, err := canonical.Canonicalize(step.Payload)
		if err != nil {
			return fmt.Errorf("write step: payload: %w", err)
		}
		payload = sql.NullString{String: string(p), Valid: true}
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO steps
		(run_id, seq, dispatch_id, tag, payload, state, state_hash, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		step.RunID,
		step.Seq,
		step.DispatchID,
		step.Tag,
		payload,
		string(state),
		step.StateHash,
		step.Changed,
	)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}
