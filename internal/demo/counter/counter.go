// Package counter is the classic counter model. Its transitions return a
// fresh State rather than mutating the draft.
package counter

import (
	"github.com/roach88/yartsul/action"
	"github.com/roach88/yartsul/reducer"
)

// State is the counter model state.
type State struct {
	Count int `json:"count"`
}

var (
	Increment = action.DefineVoid("increment")
	Decrement = action.DefineVoid("decrement")
	Add       = action.Define[int]("add")
	Subtract  = action.Define[int]("subtract")
	Reset     = action.DefineVoid("reset")
)

// Initial returns the initial state.
func Initial() *State {
	return &State{}
}

// NewReducer builds the counter reducer starting from initial.
func NewReducer(initial *State) reducer.Reducer[State] {
	return reducer.MustCreate(initial,
		action.HandleVoid(Increment, func(s *State) (*State, error) {
			return &State{Count: s.Count + 1}, nil
		}),
		action.HandleVoid(Decrement, func(s *State) (*State, error) {
			return &State{Count: s.Count - 1}, nil
		}),
		action.Handle(Add, func(s *State, n int) (*State, error) {
			return &State{Count: s.Count + n}, nil
		}),
		action.Handle(Subtract, func(s *State, n int) (*State, error) {
			return &State{Count: s.Count - n}, nil
		}),
		action.HandleVoid(Reset, func(*State) (*State, error) {
			return Initial(), nil
		}),
	)
}

// Registry returns a registry of the counter actions.
func Registry() *action.Registry {
	return action.NewRegistry(Increment, Decrement, Add, Subtract, Reset)
}
