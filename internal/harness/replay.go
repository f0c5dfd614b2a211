package harness

import (
	"context"
	"fmt"

	"github.com/roach88/yartsul/internal/canonical"
	"github.com/roach88/yartsul/internal/journal"
)

// Divergence is the first point where a replay disagrees with the journal.
type Divergence struct {
	// Seq is the step seq, or 0 for the initial state.
	Seq          int64  `json:"seq"`
	Tag          string `json:"tag,omitempty"`
	Reason       string `json:"reason"`
	ExpectedHash string `json:"expected_hash,omitempty"`
	ActualHash   string `json:"actual_hash,omitempty"`
}

// ReplayResult is the outcome of Replay.
type ReplayResult struct {
	RunID string `json:"run_id"`
	Model string `json:"model"`

	// Steps is the number of steps replayed before stopping.
	Steps int `json:"steps"`

	Divergence *Divergence `json:"divergence,omitempty"`
}

// Deterministic reports whether the replay matched the journal.
func (r *ReplayResult) Deterministic() bool {
	return r.Divergence == nil
}

// Replay re-folds the actions of a recorded run through model and compares
// each state hash and changed flag with the journal. It stops at the first
// divergence.
func Replay(ctx context.Context, j *journal.Journal, model Model, runID string) (*ReplayResult, error) {
	run, err := j.ReadRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Model != model.Name() {
		return nil, fmt.Errorf("run %s was recorded with model %q, not %q", runID, run.Model, model.Name())
	}

	steps, err := j.ReadSteps(ctx, runID)
	if err != nil {
		return nil, err
	}

	res := &ReplayResult{RunID: runID, Model: model.Name()}

	sess, err := model.Start()
	if err != nil {
		return nil, fmt.Errorf("start model %q: %w", model.Name(), err)
	}
	hash, err := canonical.StateHash(sess.State())
	if err != nil {
		return nil, err
	}
	if hash != run.InitialHash {
		res.Divergence = &Divergence{
			Reason:       "initial state differs",
			ExpectedHash: run.InitialHash,
			ActualHash:   hash,
		}
		return res, nil
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a, err := decodeAction(model.Registry(), step.Tag, step.Payload)
		if err != nil {
			res.Divergence = &Divergence{Seq: step.Seq, Tag: step.Tag, Reason: err.Error()}
			return res, nil
		}

		changed, err := sess.Dispatch(a)
		if err != nil {
			res.Divergence = &Divergence{Seq: step.Seq, Tag: step.Tag, Reason: fmt.Sprintf("reducer: %v", err)}
			return res, nil
		}
		res.Steps++

		hash, err := canonical.StateHash(sess.State())
		if err != nil {
			return nil, err
		}

		switch {
		case hash != step.StateHash:
			res.Divergence = &Divergence{
				Seq:          step.Seq,
				Tag:          step.Tag,
				Reason:       "state differs",
				ExpectedHash: step.StateHash,
				ActualHash:   hash,
			}
			return res, nil
		case changed != step.Changed:
			res.Divergence = &Divergence{
				Seq:    step.Seq,
				Tag:    step.Tag,
				Reason: fmt.Sprintf("changed = %t, recorded %t", changed, step.Changed),
			}
			return res, nil
		}
	}
	return res, nil
}
