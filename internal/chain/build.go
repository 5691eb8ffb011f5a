package chain

import (
	"fmt"
	"time"

	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/ref"
)

// Build assembles an unhashed transaction from entity changesets.
// Creates of nodes receive a fresh uid from newUID; creates of
// configuration entries are addressed by their key. Updates are routed
// by the canonical reference type of their namespace: uid references
// into nodes, key references into configurations.
//
// The result carries no id or hash; chain it with WithHash once the
// head is known.
func Build(previous, author string, createdAt time.Time, entities []change.EntityChangeset, newUID func() ref.UID) (Transaction, error) {
	tx := Transaction{
		Previous:       previous,
		Nodes:          map[ref.UID]change.Changeset{},
		Configurations: map[ref.Key]change.Changeset{},
		Author:         author,
		CreatedAt:      createdAt,
	}

	for i, entity := range entities {
		switch e := entity.(type) {
		case change.Create:
			if e.Key != "" {
				if _, dup := tx.Configurations[e.Key]; dup {
					return Transaction{}, fmt.Errorf("build: entity %d: duplicate configuration key %q", i, e.Key)
				}
				tx.Configurations[e.Key] = e.Fields.Clone()
				continue
			}
			if newUID == nil {
				return Transaction{}, fmt.Errorf("build: entity %d: node create requires a uid generator", i)
			}
			uid := newUID()
			if _, dup := tx.Nodes[uid]; dup {
				return Transaction{}, fmt.Errorf("build: entity %d: uid generator repeated %q", i, uid)
			}
			tx.Nodes[uid] = e.Fields.Clone()

		case change.Update:
			if uid, ok := e.Ref.UID(); ok {
				if prev, dup := tx.Nodes[uid]; dup {
					tx.Nodes[uid] = change.Squash(prev, e.Fields)
				} else {
					tx.Nodes[uid] = e.Fields.Clone()
				}
				continue
			}
			if key, ok := e.Ref.Key(); ok {
				if prev, dup := tx.Configurations[key]; dup {
					tx.Configurations[key] = change.Squash(prev, e.Fields)
				} else {
					tx.Configurations[key] = e.Fields.Clone()
				}
				continue
			}
			return Transaction{}, fmt.Errorf("build: entity %d: update ref must be a uid or key", i)

		default:
			return Transaction{}, fmt.Errorf("build: entity %d: unknown changeset kind %T", i, entity)
		}
	}

	return tx, nil
}
