package chain

import (
	"fmt"

	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/ref"
)

// Squash compacts a chronologically ordered window of transactions
// into one with the same net effect. The result keeps the window's
// place in the chain: previous and id from the first transaction,
// author and createdAt from the last. Each entity's changeset is the
// left-fold of change.Squash over the window; the hash is recomputed
// over the new canonical projection.
//
// The input transactions must be consecutive: each must chain onto the
// one before it.
func Squash(txs []Transaction) (Transaction, error) {
	if len(txs) == 0 {
		return Transaction{}, fmt.Errorf("squash: empty transaction window")
	}
	for i := 1; i < len(txs); i++ {
		if err := VerifyLink(txs[i-1], txs[i]); err != nil {
			return Transaction{}, fmt.Errorf("squash: %w", err)
		}
	}

	first, last := txs[0], txs[len(txs)-1]
	out := Transaction{
		Previous:       first.Previous,
		Nodes:          map[ref.UID]change.Changeset{},
		Configurations: map[ref.Key]change.Changeset{},
		Author:         last.Author,
		CreatedAt:      last.CreatedAt,
	}

	for _, tx := range txs {
		for uid, cs := range tx.Nodes {
			if prev, ok := out.Nodes[uid]; ok {
				out.Nodes[uid] = change.Squash(prev, cs)
			} else {
				out.Nodes[uid] = cs.Clone()
			}
		}
		for key, cs := range tx.Configurations {
			if prev, ok := out.Configurations[key]; ok {
				out.Configurations[key] = change.Squash(prev, cs)
			} else {
				out.Configurations[key] = cs.Clone()
			}
		}
	}

	return WithHash(out, first.ID)
}
