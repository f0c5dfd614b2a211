package journal

import (
	"encoding/json"
	"errors"
)

// ErrRunNotFound is returned when a run ID is not in the journal.
var ErrRunNotFound = errors.New("journal: run not found")

// ErrRunExists is returned by CreateRun when the run ID is already taken.
var ErrRunExists = errors.New("journal: run already exists")

// Run is the header of a harness run.
type Run struct {
	ID           string          `json:"id"`
	Scenario     string          `json:"scenario"`
	Model        string          `json:"model"`
	InitialState json.RawMessage `json:"initial_state"`
	InitialHash  string          `json:"initial_hash"`

	// Seq orders runs within a journal. Assigned by WriteRun.
	Seq int64 `json:"seq"`
}

// Step is one dispatch within a run.
type Step struct {
	RunID      string `json:"run_id"`
	Seq        int64  `json:"seq"`
	DispatchID string `json:"dispatch_id"`
	Tag        string `json:"tag"`

	// Payload is nil for actions dispatched without one.
	Payload json.RawMessage `json:"payload,omitempty"`

	State     json.RawMessage `json:"state"`
	StateHash string          `json:"state_hash"`

	// Changed is false when the reducer returned the previous state.
	Changed bool `json:"changed"`
}

// RunSummary is a run together with its step count, as listed by ListRuns.
type RunSummary struct {
	Run
	Steps   int   `json:"steps"`
	LastSeq int64 `json:"last_seq"`
}
