package store

import (
	"fmt"

	"github.com/mpazik/binder-sub005/internal/chain"
	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/model"
	"github.com/mpazik/binder-sub005/internal/ref"
)

// marshalPayload serializes the two changeset maps to canonical JSON
// TEXT. The payload column is hash input on replay, so it must use the
// same canonical form the hash was computed over.
func marshalPayload(tx chain.Transaction) (string, error) {
	nodes := make(model.Object, len(tx.Nodes))
	for uid, cs := range tx.Nodes {
		nodes[string(uid)] = change.EncodeChangeset(cs)
	}
	configs := make(model.Object, len(tx.Configurations))
	for key, cs := range tx.Configurations {
		configs[string(key)] = change.EncodeChangeset(cs)
	}
	payload := model.Object{"nodes": nodes, "configurations": configs}

	data, err := model.MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses the payload column back into changeset maps.
func unmarshalPayload(data string) (map[ref.UID]change.Changeset, map[ref.Key]change.Changeset, error) {
	v, err := model.UnmarshalValue([]byte(data))
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	obj, ok := v.(model.Object)
	if !ok {
		return nil, nil, fmt.Errorf("unmarshal payload: expected object, got %T", v)
	}

	nodes := map[ref.UID]change.Changeset{}
	if raw, ok := obj["nodes"].(model.Object); ok {
		for uid, val := range raw {
			csObj, ok := val.(model.Object)
			if !ok {
				return nil, nil, fmt.Errorf("unmarshal payload: node %q: expected object, got %T", uid, val)
			}
			cs, err := change.DecodeChangeset(csObj)
			if err != nil {
				return nil, nil, fmt.Errorf("unmarshal payload: node %q: %w", uid, err)
			}
			nodes[ref.UID(uid)] = cs
		}
	}

	configs := map[ref.Key]change.Changeset{}
	if raw, ok := obj["configurations"].(model.Object); ok {
		for key, val := range raw {
			csObj, ok := val.(model.Object)
			if !ok {
				return nil, nil, fmt.Errorf("unmarshal payload: configuration %q: expected object, got %T", key, val)
			}
			cs, err := change.DecodeChangeset(csObj)
			if err != nil {
				return nil, nil, fmt.Errorf("unmarshal payload: configuration %q: %w", key, err)
			}
			configs[ref.Key(key)] = cs
		}
	}

	return nodes, configs, nil
}
