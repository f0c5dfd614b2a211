package reducer

import (
	"github.com/roach88/yartsul/action"
	"github.com/roach88/yartsul/draft"
)

// Reducer maps the current state and an action to the next state.
// A nil state means the store has no state yet.
type Reducer[S any] func(state *S, a action.Action) (*S, error)

// Create composes handlers into a Reducer starting from initial.
//
// Handler order does not matter. Two handlers sharing a tag fail with a
// *ConfigError and no Reducer is returned.
func Create[S any](initial *S, handlers ...action.Handler[S]) (Reducer[S], error) {
	table := make(map[string]action.Handler[S], len(handlers))
	for _, h := range handlers {
		if _, exists := table[h.Tag()]; exists {
			return nil, NewDuplicateHandlerError(h.Tag())
		}
		table[h.Tag()] = h
	}

	return func(state *S, a action.Action) (*S, error) {
		if state == nil {
			return initial, nil
		}

		h, ok := table[a.Tag]
		if !ok {
			return state, nil
		}

		return draft.Produce(state, func(d *S) (draft.Result[S], error) {
			next, err := h.Apply(d, a.Payload)
			if err != nil {
				return draft.Result[S]{}, err
			}
			return draft.Replace(next), nil
		})
	}, nil
}

// MustCreate is like Create but panics on error.
// Use it for reducers built at package initialization.
func MustCreate[S any](initial *S, handlers ...action.Handler[S]) Reducer[S] {
	r, err := Create(initial, handlers...)
	if err != nil {
		panic(err)
	}
	return r
}
