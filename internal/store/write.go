package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpazik/binder-sub005/internal/chain"
)

// ConflictError reports an optimistic-concurrency failure: the
// transaction's previous link no longer matches the store head.
// The caller should rebuild the transaction against the new head and
// retry; the store never merges silently.
type ConflictError struct {
	// HeadID and HeadHash describe the current head at commit time.
	HeadID   int64
	HeadHash string

	// Previous is the stale link the rejected transaction carried.
	Previous string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("commit conflict: previous %s does not match head %s (transaction %d)", e.Previous, e.HeadHash, e.HeadID)
}

// IsConflict reports whether err is a commit conflict, unwrapping as
// needed.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// Append commits a transaction to the log iff its previous link
// matches the current head hash and its id is the next in sequence.
// The check and the insert run in one SQL transaction, so the
// compare-and-swap is atomic even with a concurrent writer.
//
// The transaction must already be hashed; its content hash is
// re-verified before the commit so a corrupted value can never enter
// the log.
func (s *Store) Append(ctx context.Context, tx chain.Transaction) error {
	if tx.Hash == "" {
		return fmt.Errorf("append: transaction is not hashed")
	}
	if err := chain.Verify(tx); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	payload, err := marshalPayload(tx)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append: begin: %w", err)
	}
	defer dbTx.Rollback()

	headID, headHash, err := headLocked(ctx, dbTx)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	if tx.Previous != headHash || tx.ID != headID+1 {
		return &ConflictError{HeadID: headID, HeadHash: headHash, Previous: tx.Previous}
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, hash, previous, author, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		tx.ID,
		tx.Hash,
		tx.Previous,
		tx.Author,
		tx.CreatedAt.UTC().Format(timeLayout),
		payload,
	)
	if err != nil {
		return fmt.Errorf("append: insert: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("append: commit: %w", err)
	}
	return nil
}
