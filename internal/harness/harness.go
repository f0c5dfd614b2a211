package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/yartsul/internal/canonical"
	"github.com/roach88/yartsul/internal/catalog"
	"github.com/roach88/yartsul/internal/journal"
	"github.com/roach88/yartsul/internal/testutil"
)

// Harness runs scenarios against a fixed set of models.
type Harness struct {
	models  map[string]Model
	journal *journal.Journal
	ids     IDGenerator
	logger  *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithJournal records runs in j. Without it each run gets a private
// in-memory journal that is discarded afterwards.
func WithJournal(j *journal.Journal) Option {
	return func(h *Harness) { h.journal = j }
}

// WithIDGenerator sets the run ID source for scenarios without run_id.
func WithIDGenerator(g IDGenerator) Option {
	return func(h *Harness) { h.ids = g }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness for models. Model names must be unique.
func New(models []Model, opts ...Option) (*Harness, error) {
	h := &Harness{
		models: make(map[string]Model, len(models)),
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, m := range models {
		if _, dup := h.models[m.Name()]; dup {
			return nil, fmt.Errorf("duplicate model %q", m.Name())
		}
		h.models[m.Name()] = m
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Model returns the model registered under name.
func (h *Harness) Model(name string) (Model, bool) {
	m, ok := h.models[name]
	return m, ok
}

// Run executes sc and returns its result.
//
// Setup problems (unknown model, unreadable catalog, journal failures, a
// run ID that is already journaled) return an error. Problems with the run
// itself (rejected payloads, reducer errors, failed expectations) are
// recorded in Result.Errors.
// A reducer error stops the run; later steps are not dispatched.
func (h *Harness) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	model, ok := h.models[sc.Model]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", sc.Model)
	}

	var cat *catalog.Catalog
	if path := sc.CatalogPath(); path != "" {
		c, err := catalog.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		if errs := c.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("invalid catalog %s: %w", path, errs[0])
		}
		cat = c
	}

	j := h.journal
	if j == nil {
		mem, err := journal.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
		}
		defer mem.Close()
		j = mem
	}

	runID := sc.RunID
	if runID == "" {
		runID = h.ids.Generate()
	}

	result := NewResult()
	result.Scenario = sc.Name
	result.Model = model.Name()
	result.RunID = runID

	if cat != nil {
		for _, ve := range cat.CheckRegistry(model.Registry()) {
			result.AddError(fmt.Sprintf("catalog: %s", ve.Error()))
		}
	}

	sess, err := model.Start()
	if err != nil {
		return nil, fmt.Errorf("start model %q: %w", model.Name(), err)
	}

	initial, err := canonical.Marshal(sess.State())
	if err != nil {
		return nil, fmt.Errorf("encode initial state: %w", err)
	}
	result.Initial = initial
	result.Final = initial

	_, err = j.CreateRun(ctx, journal.Run{
		ID:           runID,
		Scenario:     sc.Name,
		Model:        model.Name(),
		InitialState: initial,
	})
	if errors.Is(err, journal.ErrRunExists) {
		return nil, fmt.Errorf("run %s already journaled: %w", runID, journal.ErrRunExists)
	}
	if err != nil {
		return nil, err
	}

	h.logger.Info("run started",
		"scenario", sc.Name,
		"model", model.Name(),
		"run_id", runID,
		"steps", len(sc.Steps),
	)

	r := &run{
		logger:  h.logger,
		journal: j,
		model:   model,
		session: sess,
		catalog: cat,
		id:      runID,
		result:  result,
	}

	clock := testutil.NewDeterministicClock()
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, stop, err := r.dispatch(ctx, i, clock.Next(), step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if stop {
			break
		}
		result.Final = ev.State

		if step.ExpectUnchanged && ev.Changed {
			result.AddError(fmt.Sprintf("step %d (%s): expected state to be unchanged", i, step.Dispatch))
		}
		if step.Expect != nil {
			if msg := matchState(ev.State, step.Expect); msg != "" {
				result.AddError(fmt.Sprintf("step %d (%s): expect: %s", i, step.Dispatch, msg))
			}
		}
	}

	for _, err := range EvaluateAssertions(result, sc.Assertions) {
		h.logger.Warn("assertion failed", "scenario", sc.Name, "error", err)
		result.AddError(err.Error())
	}

	return result, nil
}

// run is the state of one scenario execution.
type run struct {
	logger  *slog.Logger
	journal *journal.Journal
	model   Model
	session Session
	catalog *catalog.Catalog
	id      string
	result  *Result
}

// dispatch runs step i and records it. stop reports a step failure that
// ends the run; err is reserved for journal failures.
func (r *run) dispatch(ctx context.Context, i int, seq int64, step Step) (ev TraceEvent, stop bool, err error) {
	fail := func(format string, args ...any) (TraceEvent, bool, error) {
		msg := fmt.Sprintf("step %d (%s): ", i, step.Dispatch) + fmt.Sprintf(format, args...)
		r.logger.Warn("step failed", "run_id", r.id, "seq", seq, "error", msg)
		r.result.AddError(msg)
		return TraceEvent{}, true, nil
	}

	if r.catalog != nil {
		if err := r.catalog.CheckPayload(step.Dispatch, step.Payload); err != nil {
			return fail("catalog: %v", err)
		}
	}

	raw, err := encodePayload(step.Payload)
	if err != nil {
		return fail("%v", err)
	}

	a, err := decodeAction(r.model.Registry(), step.Dispatch, raw)
	if err != nil {
		return fail("%v", err)
	}

	changed, err := r.session.Dispatch(a)
	if err != nil {
		return fail("reducer: %v", err)
	}

	state, err := canonical.Marshal(r.session.State())
	if err != nil {
		return fail("encode state: %v", err)
	}

	ev = TraceEvent{
		Seq:        seq,
		DispatchID: fmt.Sprintf("%s/%d", r.id, seq),
		Tag:        step.Dispatch,
		Payload:    raw,
		State:      state,
		StateHash:  canonical.StateHashCanonical(state),
		Changed:    changed,
	}

	if err := r.journal.WriteStep(ctx, journal.Step{
		RunID:      r.id,
		Seq:        ev.Seq,
		DispatchID: ev.DispatchID,
		Tag:        ev.Tag,
		Payload:    ev.Payload,
		State:      ev.State,
		StateHash:  ev.StateHash,
		Changed:    ev.Changed,
	}); err != nil {
		return TraceEvent{}, false, err
	}

	r.result.Trace = append(r.result.Trace, ev)

	r.logger.Debug("dispatched",
		"run_id", r.id,
		"seq", seq,
		"tag", step.Dispatch,
		"changed", changed,
	)
	return ev, false, nil
}
