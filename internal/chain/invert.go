package chain

import (
	"fmt"
	"time"

	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/ref"
)

// StateProvider supplies the materialized state of entities as of the
// transaction being inverted, i.e. the state the chain had at
// tx.Previous. Typically backed by the store's materializer.
type StateProvider interface {
	NodeState(uid ref.UID) (change.PriorState, error)
	ConfigState(key ref.Key) (change.PriorState, error)
}

// Invert computes the undo transaction: every entity's changeset in
// both namespaces is inverted against the prior state. The result is
// stamped with the given author and timestamp but carries no id, hash
// or previous link until chained forward with WithHash; the caller
// sets Previous to the current head before hashing.
//
// Missing prior state for any field or item fails the whole inversion;
// an undo must never guess.
func Invert(tx Transaction, states StateProvider, author string, createdAt time.Time) (Transaction, error) {
	out := Transaction{
		Nodes:          make(map[ref.UID]change.Changeset, len(tx.Nodes)),
		Configurations: make(map[ref.Key]change.Changeset, len(tx.Configurations)),
		Author:         author,
		CreatedAt:      createdAt,
	}

	for uid, cs := range tx.Nodes {
		prior, err := states.NodeState(uid)
		if err != nil {
			return Transaction{}, fmt.Errorf("invert transaction %d: node %s: %w", tx.ID, uid, err)
		}
		inv, err := change.Inverse(cs, prior)
		if err != nil {
			return Transaction{}, fmt.Errorf("invert transaction %d: node %s: %w", tx.ID, uid, err)
		}
		out.Nodes[uid] = inv
	}

	for key, cs := range tx.Configurations {
		prior, err := states.ConfigState(key)
		if err != nil {
			return Transaction{}, fmt.Errorf("invert transaction %d: configuration %s: %w", tx.ID, key, err)
		}
		inv, err := change.Inverse(cs, prior)
		if err != nil {
			return Transaction{}, fmt.Errorf("invert transaction %d: configuration %s: %w", tx.ID, key, err)
		}
		out.Configurations[key] = inv
	}

	return out, nil
}
