package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/yartsul/internal/canonical"
)

// TraceSnapshot is the golden form of a run. Hashes are left out since
// they follow from the states.
type TraceSnapshot struct {
	RunID        string          `json:"run_id,omitempty"`
	ScenarioName string          `json:"scenario_name"`
	Trace        []snapshotEvent `json:"trace"`
}

type snapshotEvent struct {
	Seq        int64           `json:"seq"`
	DispatchID string          `json:"dispatch_id"`
	Tag        string          `json:"tag"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	State      json.RawMessage `json:"state"`
	Changed    bool            `json:"changed"`
}

// Snapshot builds the golden form of result.
func Snapshot(result *Result) TraceSnapshot {
	s := TraceSnapshot{
		RunID:        result.RunID,
		ScenarioName: result.Scenario,
		Trace:        make([]snapshotEvent, len(result.Trace)),
	}
	for i, ev := range result.Trace {
		s.Trace[i] = snapshotEvent{
			Seq:        ev.Seq,
			DispatchID: ev.DispatchID,
			Tag:        ev.Tag,
			Payload:    ev.Payload,
			State:      ev.State,
			Changed:    ev.Changed,
		}
	}
	return s
}

// MarshalSnapshot returns the canonical JSON of result's snapshot.
func MarshalSnapshot(result *Result) ([]byte, error) {
	return canonical.Marshal(Snapshot(result))
}

// AssertGolden compares result's trace against
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
