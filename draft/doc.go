// Package draft produces the next immutable state from a mutable draft.
//
// Produce hands a recipe a deep copy of the base state. The recipe may
// mutate that draft freely, or return a replacement value. When the recipe
// mutates, the draft is reconciled against the base: every sub-value that
// did not change is swapped back for the base's own sub-value, so the result
// shares all untouched pointers, maps and slices with the base. If nothing
// changed at all, Produce returns the base pointer itself.
//
// Copying rules:
//   - exported struct fields, pointers, maps, slices, arrays and interface
//     values are copied recursively;
//   - unexported struct fields are copied shallowly and compared by value.
//     Produce rejects states whose unexported fields hold pointers, maps,
//     slices or interfaces, since writes through them would reach the base.
//     time.Time is allowed. Clone accepts them and shares what they point to;
//   - funcs, channels and unsafe pointers are shared;
//   - pointer aliasing and pointer cycles in the base are preserved in the
//     draft. Reconciliation does not revisit a pointer pair already in
//     progress, so a cycle whose members changed keeps its back-reference
//     to the base.
//
// Nothing is frozen: callers must treat the returned state as read-only.
package draft
