// Package action declares uniquely-tagged actions once and derives everything
// else from that declaration.
//
// A Definition is created per action kind, usually as a package-level variable:
//
//	var (
//		Increment = action.DefineVoid("increment")
//		Add       = action.Define[int]("add")
//	)
//
// From a definition a caller gets:
//   - a constructor: Increment.New(), Add.New(2)
//   - a membership test: Add.Is(a), with narrowing via Add.Match(a)
//   - a handler descriptor for reducer.Create: action.Handle(Add, fn)
//
// Tags are opaque and compared by exact string equality. Nothing in this
// package checks that tags are unique across definitions; reducer.Create
// rejects two handlers for one tag, and Registry rejects two decoders for one
// tag. Two definitions sharing a tag accept each other's actions.
//
// This package performs no I/O and holds no mutable state.
package action
