package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			mark := ""
			if !ev.Changed {
				mark = " (unchanged)"
			}
			if len(ev.Payload) > 0 {
				fmt.Fprintf(&buf, "  [%d] %s %s%s\n", ev.Seq, ev.Tag, ev.Payload, mark)
			} else {
				fmt.Fprintf(&buf, "  [%d] %s%s\n", ev.Seq, ev.Tag, mark)
			}
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failures in order.
func EvaluateAssertions(result *Result, assertions []Assertion) []error {
	var errs []error
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalState:
			err = assertFinalState(result, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertUnchanged:
			err = assertUnchanged(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func assertFinalState(result *Result, a Assertion) error {
	if msg := matchState(result.Final, a.State); msg != "" {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("state matching %v", a.State),
			Actual:   msg,
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertTraceCount checks that Tag was dispatched exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Tag == a.Tag {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d dispatches of %s", a.Count, a.Tag),
			Actual:   fmt.Sprintf("%d dispatches", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks that the first dispatch of each tag appears in
// the listed order. Other dispatches may come in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range trace {
		if _, seen := positions[ev.Tag]; !seen {
			positions[ev.Tag] = i + 1
		}
	}

	for _, tag := range a.Tags {
		if positions[tag] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all tags present: %v", a.Tags),
				Actual:   fmt.Sprintf("missing tag: %s", tag),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Tags); i++ {
		prev, curr := a.Tags[i-1], a.Tags[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("tags in order: %v", a.Tags),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertUnchanged checks that Tag was dispatched and never changed the
// state.
func assertUnchanged(trace []TraceEvent, a Assertion) error {
	var seqs []int64
	found := false
	for _, ev := range trace {
		if ev.Tag != a.Tag {
			continue
		}
		found = true
		if ev.Changed {
			seqs = append(seqs, ev.Seq)
		}
	}

	switch {
	case !found:
		return &AssertionError{
			Type:     AssertUnchanged,
			Expected: fmt.Sprintf("at least one dispatch of %s", a.Tag),
			Actual:   "not found in trace",
			Trace:    trace,
		}
	case len(seqs) > 0:
		return &AssertionError{
			Type:     AssertUnchanged,
			Expected: fmt.Sprintf("%s to leave the state unchanged", a.Tag),
			Actual:   fmt.Sprintf("state changed at seq %v", seqs),
			Trace:    trace,
		}
	}
	return nil
}

// matchState compares a state against an expected subset. It returns ""
// on a match and a description of the first mismatch otherwise.
func matchState(state json.RawMessage, expected map[string]any) string {
	actual, err := toGeneric(state)
	if err != nil {
		return fmt.Sprintf("decode state: %v", err)
	}

	raw, err := json.Marshal(expected)
	if err != nil {
		return fmt.Sprintf("encode expectation: %v", err)
	}
	want, err := toGeneric(raw)
	if err != nil {
		return fmt.Sprintf("decode expectation: %v", err)
	}

	return matchSubset("", want, actual)
}

func matchSubset(path string, want, got any) string {
	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			return fmt.Sprintf("%s: expected object, got %s", pathOrRoot(path), describe(got))
		}
		keys := make([]string, 0, len(w))
		for k := range w {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			gv, exists := g[k]
			if !exists {
				return fmt.Sprintf("%s: field missing", join(path, k))
			}
			if msg := matchSubset(join(path, k), w[k], gv); msg != "" {
				return msg
			}
		}
		return ""
	case []any:
		g, ok := got.([]any)
		if !ok {
			return fmt.Sprintf("%s: expected list, got %s", pathOrRoot(path), describe(got))
		}
		if len(g) != len(w) {
			return fmt.Sprintf("%s: expected %d elements, got %d", pathOrRoot(path), len(w), len(g))
		}
		for i := range w {
			if msg := matchSubset(fmt.Sprintf("%s[%d]", path, i), w[i], g[i]); msg != "" {
				return msg
			}
		}
		return ""
	default:
		if !reflect.DeepEqual(want, got) {
			return fmt.Sprintf("%s: expected %s, got %s", pathOrRoot(path), describe(want), describe(got))
		}
		return ""
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func pathOrRoot(path string) string {
	if path == "" {
		return "state"
	}
	return path
}

func describe(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
