package change

import (
	"fmt"

	"github.com/mpazik/binder-sub005/internal/model"
)

// Apply produces the fieldset that results from applying cs to fs.
// The input fieldset is not modified. Apply defines the reference
// semantics against which Squash and Inverse are verified:
//
//	Apply(Squash(a, b), s) == Apply(b, Apply(a, s))
//	Apply(Inverse(c, stateOf(s)), Apply(c, s)) == s
func Apply(cs Changeset, fs model.Fieldset) (model.Fieldset, error) {
	out := fs.Clone()
	for field, vc := range cs {
		if err := applyField(out, field, vc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func applyField(fs model.Fieldset, field string, vc ValueChange) error {
	switch c := vc.(type) {
	case Set:
		fs[field] = model.Clone(c.Value)
		return nil

	case Clear:
		delete(fs, field)
		return nil

	case Seq:
		cur, ok := fs[field]
		var arr model.Array
		if ok {
			arr, ok = cur.(model.Array)
			if !ok {
				return &ApplyError{Field: field, Message: fmt.Sprintf("list mutation on non-array value %T", cur)}
			}
			arr = model.Clone(arr).(model.Array)
		}
		arr, err := applyMutations(field, arr, c.Mutations)
		if err != nil {
			return err
		}
		fs[field] = arr
		return nil

	case Patch:
		cur, ok := fs[field]
		var obj model.Object
		if ok {
			obj, ok = cur.(model.Object)
			if !ok {
				return &ApplyError{Field: field, Message: fmt.Sprintf("patch on non-object value %T", cur)}
			}
		} else {
			obj = model.Object{}
		}
		patched, err := Apply(c.Nested, model.Fieldset(obj))
		if err != nil {
			return err
		}
		fs[field] = model.Object(patched)
		return nil

	default:
		panic("unknown ValueChange variant")
	}
}

func applyMutations(field string, arr model.Array, muts []ListMutation) (model.Array, error) {
	var err error
	for _, m := range muts {
		arr, err = applyMutation(field, arr, m)
		if err != nil {
			return nil, err
		}
	}
	return arr, nil
}

func applyMutation(field string, arr model.Array, m ListMutation) (model.Array, error) {
	switch mut := m.(type) {
	case Insert:
		pos := len(arr)
		if mut.HasPos {
			pos = clamp(mut.Pos, 0, len(arr))
		}
		out := make(model.Array, 0, len(arr)+1)
		out = append(out, arr[:pos]...)
		out = append(out, model.Clone(mut.Value))
		out = append(out, arr[pos:]...)
		return out, nil

	case Remove:
		idx := findItem(arr, mut.Value, mut.Pos, mut.HasPos)
		if idx < 0 {
			// Removing an absent item is a no-op: squashed
			// changesets may carry removals whose target an
			// earlier transaction already dropped.
			return arr, nil
		}
		out := make(model.Array, 0, len(arr)-1)
		out = append(out, arr[:idx]...)
		out = append(out, arr[idx+1:]...)
		return out, nil

	case ItemPatch:
		idx := findItem(arr, mut.Ref, 0, false)
		if idx < 0 {
			return nil, &ApplyError{Field: field, Message: fmt.Sprintf("patch of missing item %q", string(mut.Ref))}
		}
		attrs := model.Object{}
		itemRef := model.Value(mut.Ref)
		if tuple, ok := arr[idx].(model.Array); ok && len(tuple) == 2 {
			itemRef = tuple[0]
			if obj, ok := tuple[1].(model.Object); ok {
				attrs = obj
			}
		}
		patched, err := Apply(mut.Nested, model.Fieldset(attrs))
		if err != nil {
			return nil, err
		}
		out := model.Clone(arr).(model.Array)
		if len(patched) == 0 {
			// An item with no attributes is canonically a plain
			// reference, so patching a scalar item round-trips.
			out[idx] = model.Clone(itemRef)
		} else {
			out[idx] = model.Array{itemRef, model.Object(patched)}
		}
		return out, nil

	default:
		panic("unknown ListMutation variant")
	}
}

// findItem locates an item by identity. With a position it checks that
// slot first and falls back to a scan, so a stale position after
// unrelated edits still resolves to the right item.
func findItem(arr model.Array, target model.Value, pos int, hasPos bool) int {
	if hasPos && pos >= 0 && pos < len(arr) && sameItem(arr[pos], target) {
		return pos
	}
	for i, item := range arr {
		if sameItem(item, target) {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
