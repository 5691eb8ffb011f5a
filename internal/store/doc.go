// Package store provides SQLite-backed durable storage for the
// hash-chained transaction log.
//
// The log is append-only and totally ordered by id. Committing is an
// atomic compare-and-swap against the current head: "append T iff
// T.previous == head hash", executed inside one SQL transaction. A
// losing writer gets a ConflictError and rebuilds against the new
// head; the store never rewrites or merges.
//
// The payload column stores each transaction's changesets in the same
// RFC 8785 canonical JSON the content hash was computed over, so
// VerifyChain can recompute every hash from what is on disk.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
package store
