// Package reducer composes action handlers into a single state-transition
// function.
//
// Create builds a dispatch table from handler tags once, rejecting two
// handlers for the same tag, and returns a Reducer:
//
//	r, err := reducer.Create(&State{},
//		action.HandleVoid(Increment, func(s *State) (*State, error) {
//			return &State{Count: s.Count + 1}, nil
//		}),
//		action.Handle(Add, func(s *State, n int) (*State, error) {
//			s.Count += n
//			return nil, nil
//		}),
//	)
//
// The Reducer follows the store contract:
//   - a nil state yields the initial state pointer unchanged;
//   - an action with no handler yields the given state pointer unchanged;
//   - otherwise the handler runs against a draft (see package draft), and the
//     result shares every untouched sub-value with the previous state.
//
// Callers may compare state pointers to detect no-op dispatches.
package reducer
