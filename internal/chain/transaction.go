package chain

import (
	"strings"
	"time"

	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/ref"
)

// GenesisHash is the well-known hash of the empty chain head.
var GenesisHash = strings.Repeat("0", 64)

// genesisCreatedAt is the fixed timestamp of the genesis transaction.
var genesisCreatedAt = time.Unix(0, 0).UTC()

// Transaction is one atomic, ordered batch of entity changesets. A
// transaction is built once, hashed via WithHash, and immutable
// thereafter: squashing or inverting always produces a new value.
type Transaction struct {
	// ID is the store-assigned sequential number. It is excluded from
	// the hash: a replaying peer may assign ids differently.
	ID int64

	// Hash is the hex SHA-256 of the canonical projection.
	Hash string

	// Previous is the hash of the preceding transaction, or
	// GenesisHash for the first one.
	Previous string

	// Nodes holds per-entity changesets keyed by uid.
	Nodes map[ref.UID]change.Changeset

	// Configurations holds per-entity changesets keyed by
	// configuration key.
	Configurations map[ref.Key]change.Changeset

	Author    string
	CreatedAt time.Time
}

// Genesis returns the well-known transaction the chain starts from:
// id 0, all-zero hash, fixed timestamp, no changesets.
func Genesis() Transaction {
	return Transaction{
		ID:             0,
		Hash:           GenesisHash,
		Previous:       GenesisHash,
		Nodes:          map[ref.UID]change.Changeset{},
		Configurations: map[ref.Key]change.Changeset{},
		CreatedAt:      genesisCreatedAt,
	}
}

// IsGenesis reports whether tx is the genesis transaction.
func (tx Transaction) IsGenesis() bool {
	return tx.ID == 0 && tx.Hash == GenesisHash
}

// Clone returns a deep copy of the transaction.
func (tx Transaction) Clone() Transaction {
	out := tx
	out.Nodes = make(map[ref.UID]change.Changeset, len(tx.Nodes))
	for uid, cs := range tx.Nodes {
		out.Nodes[uid] = cs.Clone()
	}
	out.Configurations = make(map[ref.Key]change.Changeset, len(tx.Configurations))
	for key, cs := range tx.Configurations {
		out.Configurations[key] = cs.Clone()
	}
	return out
}

// GraphVersion is a lightweight pointer to the state a transaction
// produced. It is always derived from a transaction, never built
// independently.
type GraphVersion struct {
	ID        int64     `json:"id"`
	Hash      string    `json:"hash"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Version derives the graph version this transaction produced.
func (tx Transaction) Version() GraphVersion {
	return GraphVersion{ID: tx.ID, Hash: tx.Hash, UpdatedAt: tx.CreatedAt}
}
