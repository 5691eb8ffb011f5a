package chain

import (
	"fmt"
	"time"

	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/model"
	"github.com/mpazik/binder-sub005/internal/ref"
)

// Encode renders the full persisted shape of a transaction, the
// canonical projection plus id and hash.
func Encode(tx Transaction) model.Object {
	obj := CanonicalProjection(tx)
	obj["id"] = model.Int(tx.ID)
	obj["hash"] = model.String(tx.Hash)
	return obj
}

// MarshalJSON implements json.Marshaler using the persisted wire
// shape. Keys are emitted in deterministic order.
func (tx Transaction) MarshalJSON() ([]byte, error) {
	return model.MarshalValue(Encode(tx))
}

// UnmarshalJSON implements json.Unmarshaler for the persisted wire
// shape.
func (tx *Transaction) UnmarshalJSON(data []byte) error {
	v, err := model.UnmarshalValue(data)
	if err != nil {
		return err
	}
	obj, ok := v.(model.Object)
	if !ok {
		return fmt.Errorf("transaction must be a JSON object, got %T", v)
	}
	decoded, err := Decode(obj)
	if err != nil {
		return err
	}
	*tx = decoded
	return nil
}

// Decode parses the persisted wire shape back into a Transaction.
func Decode(obj model.Object) (Transaction, error) {
	var tx Transaction

	id, ok := obj["id"].(model.Int)
	if !ok {
		return tx, fmt.Errorf("transaction id must be an integer")
	}
	tx.ID = int64(id)

	hash, ok := obj["hash"].(model.String)
	if !ok {
		return tx, fmt.Errorf("transaction hash must be a string")
	}
	if len(hash) != 64 {
		return tx, fmt.Errorf("transaction hash must be 64 hex characters, got %d", len(hash))
	}
	tx.Hash = string(hash)

	previous, ok := obj["previous"].(model.String)
	if !ok {
		return tx, fmt.Errorf("transaction previous must be a string")
	}
	if len(previous) != 64 {
		return tx, fmt.Errorf("transaction previous must be 64 hex characters, got %d", len(previous))
	}
	tx.Previous = string(previous)

	if author, ok := obj["author"].(model.String); ok {
		tx.Author = string(author)
	}

	createdAt, ok := obj["createdAt"].(model.String)
	if !ok {
		return tx, fmt.Errorf("transaction createdAt must be a string")
	}
	t, err := time.Parse(time.RFC3339Nano, string(createdAt))
	if err != nil {
		return tx, fmt.Errorf("transaction createdAt: %w", err)
	}
	tx.CreatedAt = t.UTC()

	tx.Nodes = map[ref.UID]change.Changeset{}
	if nodes, ok := obj["nodes"].(model.Object); ok {
		for uid, raw := range nodes {
			csObj, ok := raw.(model.Object)
			if !ok {
				return tx, fmt.Errorf("node %q: changeset must be an object, got %T", uid, raw)
			}
			cs, err := change.DecodeChangeset(csObj)
			if err != nil {
				return tx, fmt.Errorf("node %q: %w", uid, err)
			}
			tx.Nodes[ref.UID(uid)] = cs
		}
	}

	tx.Configurations = map[ref.Key]change.Changeset{}
	if configs, ok := obj["configurations"].(model.Object); ok {
		for key, raw := range configs {
			csObj, ok := raw.(model.Object)
			if !ok {
				return tx, fmt.Errorf("configuration %q: changeset must be an object, got %T", key, raw)
			}
			cs, err := change.DecodeChangeset(csObj)
			if err != nil {
				return tx, fmt.Errorf("configuration %q: %w", key, err)
			}
			tx.Configurations[ref.Key(key)] = cs
		}
	}

	return tx, nil
}
