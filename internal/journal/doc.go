// Package journal provides SQLite-backed storage for harness runs.
//
// A run records the model it exercised and its initial state; each step
// records the dispatched action and the state the reducer returned for it.
// The journal is append-only:
//   - rows are never updated;
//   - writes are idempotent on their natural keys (runs.id, steps(run_id, seq));
//   - all ordering uses seq INTEGER, never wall time.
//
// Every read orders by seq ASC with id COLLATE BINARY as the tiebreaker, so
// two reads of the same journal always return the same sequence.
//
// States and payloads are stored as canonical JSON (see internal/canonical),
// so the state_hash column can be recomputed from the stored text.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: steps must reference an existing run
package journal
