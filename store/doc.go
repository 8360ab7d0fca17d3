// Package store persists agent run documents.
//
// A Run is the audit record of one graph execution: the decisions taken at
// each node, their outcomes, and any problems encountered along the way.
// RunRecorder builds that document while an execution is in flight; RunStore
// is the persistence interface the backends implement.
//
// Backends live in subpackages:
//
//   - store/memory: in-process map, for tests and short-lived agents
//   - store/file: JSON documents under ~/.hive/storage/<agent>/runs/
//   - store/sqlite: embedded SQLite database
//   - store/redis: Redis with optional TTL-based expiry
//   - store/postgres: PostgreSQL via pgx
//
// All backends key runs by agent name, list them most recent first, and
// return ErrRunNotFound for missing runs.
package store
