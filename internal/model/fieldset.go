package model

import (
	"fmt"
	"strings"
)

// Fieldset is the materialized key-to-value state of one entity.
// An absent key is not the same as a key holding Null.
type Fieldset map[string]Value

// Get returns the value under key and whether the key is present.
func (fs Fieldset) Get(key string) (Value, bool) {
	v, ok := fs[key]
	return v, ok
}

// GetPath resolves a dot-separated path through nested objects.
// Returns false when any segment is absent or a non-object is
// traversed.
func (fs Fieldset) GetPath(path string) (Value, bool) {
	segments := strings.Split(path, ".")
	var cur Value = Object(fs)
	for _, seg := range segments {
		obj, ok := cur.(Object)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath sets a value at a dot-separated path, creating intermediate
// objects as needed. Fails if an intermediate segment holds a
// non-object value.
func (fs Fieldset) SetPath(path string, v Value) error {
	segments := strings.Split(path, ".")
	cur := Object(fs)
	for i, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg]
		if !ok {
			child := make(Object)
			cur[seg] = child
			cur = child
			continue
		}
		obj, ok := next.(Object)
		if !ok {
			return fmt.Errorf("path %q: segment %q holds a non-object value", path, strings.Join(segments[:i+1], "."))
		}
		cur = obj
	}
	cur[segments[len(segments)-1]] = v
	return nil
}

// Clone returns a deep copy of the fieldset.
func (fs Fieldset) Clone() Fieldset {
	out := make(Fieldset, len(fs))
	for k, v := range fs {
		out[k] = Clone(v)
	}
	return out
}

// Equal reports whether two fieldsets hold the same keys and values.
func (fs Fieldset) Equal(other Fieldset) bool {
	return Equal(Object(fs), Object(other))
}
