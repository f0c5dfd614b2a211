package draft

import (
	"errors"
	"reflect"
)

var (
	// ErrNilBase is returned when Produce is called with a nil base.
	ErrNilBase = errors.New("draft: base state is nil")

	// ErrReplacedAndModified is returned when a recipe both modified its
	// draft and returned a replacement.
	ErrReplacedAndModified = errors.New("draft: recipe returned a replacement and also modified its draft")

	// ErrUnexportedReference is returned when the state has an unexported
	// field holding a pointer, map, slice or interface.
	ErrUnexportedReference = errors.New("draft: unexported field holds a reference")
)

// Result tells Produce how the recipe finished.
// The zero Result means the draft was mutated in place (or left alone).
type Result[S any] struct {
	replacement *S
	replaced    bool
}

// Replace reports that the recipe produced v as the next state.
// Replace(nil) is the same as Mutated.
func Replace[S any](v *S) Result[S] {
	if v == nil {
		return Mutated[S]()
	}
	return Result[S]{replacement: v, replaced: true}
}

// Mutated reports that the recipe worked on the draft in place.
func Mutated[S any]() Result[S] {
	return Result[S]{}
}

// Replaced returns the replacement, if any.
func (r Result[S]) Replaced() (*S, bool) {
	return r.replacement, r.replaced
}

// Recipe transforms a draft of the base state.
type Recipe[S any] func(draft *S) (Result[S], error)

// Produce runs recipe against a draft of base and returns the next state.
//
// States reaching a struct whose unexported fields hold references fail
// with ErrUnexportedReference before recipe runs. Errors returned by recipe
// are passed through unchanged.
func Produce[S any](base *S, recipe Recipe[S]) (*S, error) {
	if base == nil {
		return nil, ErrNilBase
	}

	c := newCloner()
	c.strict = true
	d := c.clone(reflect.ValueOf(base)).Interface().(*S)
	if c.err != nil {
		return nil, c.err
	}

	res, err := recipe(d)
	if err != nil {
		return nil, err
	}

	final, changed := finalize(base, d)

	if next, ok := res.Replaced(); ok && next != d {
		if changed {
			return nil, ErrReplacedAndModified
		}
		return next, nil
	}
	return final, nil
}

// Clone returns a deep copy of v following the package copying rules.
func Clone[S any](v *S) *S {
	if v == nil {
		return nil
	}
	return newCloner().clone(reflect.ValueOf(v)).Interface().(*S)
}

func newCloner() *cloner {
	return &cloner{seen: make(map[visit]reflect.Value)}
}

// finalize reconciles d against base. It returns base itself when d holds
// no changes.
func finalize[S any](base, d *S) (*S, bool) {
	r := &reconciler{
		active: make(map[pair]bool),
		done:   make(map[pair]outcome),
	}
	v, changed := r.reconcile(reflect.ValueOf(base), reflect.ValueOf(d))
	if !changed {
		return base, false
	}
	return v.Interface().(*S), true
}
