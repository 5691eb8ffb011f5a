package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mpazik/binder-sub005/internal/chain"
)

// timeLayout is the fixed RFC 3339 UTC form used in the created_at
// column, matching the wire shape and hash input.
const timeLayout = time.RFC3339Nano

// ErrNotFound reports a transaction id absent from the log.
var ErrNotFound = errors.New("transaction not found")

// Head returns the id and hash of the latest committed transaction.
// An empty log reports the genesis head: id 0, all-zero hash.
func (s *Store) Head(ctx context.Context) (int64, string, error) {
	return head(ctx, s.db)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func head(ctx context.Context, q queryRower) (int64, string, error) {
	var id int64
	var hash string
	err := q.QueryRowContext(ctx, `
		SELECT id, hash FROM transactions ORDER BY id DESC LIMIT 1
	`).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, chain.GenesisHash, nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("query head: %w", err)
	}
	return id, hash, nil
}

func headLocked(ctx context.Context, tx *sql.Tx) (int64, string, error) {
	return head(ctx, tx)
}

// Get returns the transaction with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (chain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, hash, previous, author, created_at, payload
		FROM transactions WHERE id = ?
	`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return chain.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return tx, err
}

// Range returns transactions with from <= id <= to in id order.
// Results are deterministic: the log is totally ordered by id.
func (s *Store) Range(ctx context.Context, from, to int64) ([]chain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, previous, author, created_at, payload
		FROM transactions
		WHERE id >= ? AND id <= ?
		ORDER BY id ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	defer rows.Close()

	txs := []chain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate range: %w", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (chain.Transaction, error) {
	var tx chain.Transaction
	var createdAt, payload string

	if err := row.Scan(&tx.ID, &tx.Hash, &tx.Previous, &tx.Author, &createdAt, &payload); err != nil {
		return chain.Transaction{}, err
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return chain.Transaction{}, fmt.Errorf("transaction %d: parse created_at: %w", tx.ID, err)
	}
	tx.CreatedAt = t.UTC()

	tx.Nodes, tx.Configurations, err = unmarshalPayload(payload)
	if err != nil {
		return chain.Transaction{}, fmt.Errorf("transaction %d: %w", tx.ID, err)
	}

	return tx, nil
}
