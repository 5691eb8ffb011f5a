package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/model"
)

// DomainTransaction prefixes transaction hash input. The version
// suffix leaves room for algorithm migration.
const DomainTransaction = "binder/transaction/v1"

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalProjection extracts the hash input of a transaction:
// previous, author, createdAt and both changeset maps. ID and Hash are
// excluded - the hash cannot depend on its own value, and the
// sequential id is a local counter a replaying peer might assign
// differently.
func CanonicalProjection(tx Transaction) model.Object {
	nodes := make(model.Object, len(tx.Nodes))
	for uid, cs := range tx.Nodes {
		nodes[string(uid)] = change.EncodeChangeset(cs)
	}
	configs := make(model.Object, len(tx.Configurations))
	for key, cs := range tx.Configurations {
		configs[string(key)] = change.EncodeChangeset(cs)
	}
	return model.Object{
		"previous":       model.String(tx.Previous),
		"author":         model.String(tx.Author),
		"createdAt":      model.String(formatTime(tx.CreatedAt)),
		"nodes":          nodes,
		"configurations": configs,
	}
}

// formatTime renders a timestamp in the fixed RFC 3339 UTC form used
// in both the wire shape and the hash input.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// HashTransaction computes the content hash over the canonical JSON of
// the projection. Deterministic: identical projections always hash
// identically, regardless of id.
func HashTransaction(tx Transaction) (string, error) {
	canonical, err := model.MarshalCanonical(CanonicalProjection(tx))
	if err != nil {
		return "", fmt.Errorf("hash transaction: %w", err)
	}
	return hashWithDomain(DomainTransaction, canonical), nil
}

// WithHash assigns the sequential id and computes the content hash,
// returning the completed transaction. This is the only way a
// transaction becomes hashable; it performs no other work.
func WithHash(tx Transaction, id int64) (Transaction, error) {
	hash, err := HashTransaction(tx)
	if err != nil {
		return Transaction{}, err
	}
	out := tx.Clone()
	out.ID = id
	out.Hash = hash
	return out, nil
}

// IntegrityError reports a transaction whose stored hash does not
// match its recomputed content hash. The log is untrusted from that
// transaction on; this is never auto-repaired.
type IntegrityError struct {
	ID       int64
	Stored   string
	Computed string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("transaction %d: stored hash %s does not match computed %s", e.ID, e.Stored, e.Computed)
}

// IsIntegrityError reports whether err is an IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// Verify recomputes the transaction's hash and compares it to the
// stored one. The genesis transaction is trusted by construction.
func Verify(tx Transaction) error {
	if tx.IsGenesis() {
		return nil
	}
	computed, err := HashTransaction(tx)
	if err != nil {
		return err
	}
	if computed != tx.Hash {
		return &IntegrityError{ID: tx.ID, Stored: tx.Hash, Computed: computed}
	}
	return nil
}

// VerifyLink checks that next chains onto prev.
func VerifyLink(prev, next Transaction) error {
	if next.Previous != prev.Hash {
		return fmt.Errorf("transaction %d: previous %s does not match hash of transaction %d (%s)",
			next.ID, next.Previous, prev.ID, prev.Hash)
	}
	return nil
}
