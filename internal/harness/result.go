package harness

import "encoding/json"

// TraceEvent is one recorded dispatch.
type TraceEvent struct {
	Seq        int64           `json:"seq"`
	DispatchID string          `json:"dispatch_id"`
	Tag        string          `json:"tag"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	State      json.RawMessage `json:"state"`
	StateHash  string          `json:"state_hash"`
	Changed    bool            `json:"changed"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Scenario string `json:"scenario"`
	Model    string `json:"model"`
	RunID    string `json:"run_id"`

	// Pass is true when every step ran and every check held.
	Pass bool `json:"pass"`

	// Initial and Final are the canonical JSON of the first and last state.
	Initial json.RawMessage `json:"initial"`
	Final   json.RawMessage `json:"final"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
