// Package chain builds and verifies the hash-chained transaction log.
//
// A transaction's identity is content-addressed: the hex SHA-256 of
// the RFC 8785 canonical JSON of its projection {previous, author,
// createdAt, nodes, configurations}, domain-separated under
// DomainTransaction. The sequential id and the hash itself are
// excluded from the input, so the same logical content always hashes
// identically and a peer replaying the log can verify every link.
//
// Transactions are immutable once hashed. Squash produces a new
// compacted transaction over a window; Invert produces a new undo
// transaction against a prior-state provider. Commit-time conflict
// handling (previous vs. current head) lives in the store.
package chain
