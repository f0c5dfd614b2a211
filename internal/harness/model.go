package harness

import (
	"github.com/roach88/yartsul/action"
	"github.com/roach88/yartsul/reducer"
)

// InitTag is the tag of the action a session dispatches with a nil state to
// obtain the initial state. No reducer is expected to handle it.
const InitTag = "@@yartsul/INIT"

// Model is a reducer the harness can drive without knowing its state type.
type Model interface {
	// Name identifies the model in scenarios and the journal.
	Name() string

	// Registry decodes payloads for the model's actions.
	Registry() *action.Registry

	// Start initializes a fresh session.
	Start() (Session, error)
}

// Session holds the current state of one run.
type Session interface {
	// State returns the current state. It must be JSON-encodable.
	State() any

	// Dispatch folds a into the state. changed is false when the reducer
	// returned the previous state itself.
	Dispatch(a action.Action) (changed bool, err error)
}

// Bind wraps a typed reducer as a Model.
func Bind[S any](name string, r reducer.Reducer[S], reg *action.Registry) Model {
	if reg == nil {
		reg = action.NewRegistry()
	}
	return &boundModel[S]{name: name, reducer: r, registry: reg}
}

type boundModel[S any] struct {
	name     string
	reducer  reducer.Reducer[S]
	registry *action.Registry
}

func (m *boundModel[S]) Name() string {
	return m.name
}

func (m *boundModel[S]) Registry() *action.Registry {
	return m.registry
}

func (m *boundModel[S]) Start() (Session, error) {
	s, err := m.reducer(nil, action.Action{Tag: InitTag})
	if err != nil {
		return nil, err
	}
	return &session[S]{reducer: m.reducer, state: s}, nil
}

type session[S any] struct {
	reducer reducer.Reducer[S]
	state   *S
}

func (s *session[S]) State() any {
	return s.state
}

func (s *session[S]) Dispatch(a action.Action) (bool, error) {
	next, err := s.reducer(s.state, a)
	if err != nil {
		return false, err
	}
	changed := next != s.state
	s.state = next
	return changed, nil
}
