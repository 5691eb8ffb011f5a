package change

import (
	"github.com/mpazik/binder-sub005/internal/model"
)

// Changeset is the full delta for one entity: a map from field key to
// the change applied to that field. Changesets are produced by
// Normalize, Squash or Inverse and are treated as immutable; the
// algebra always returns new values.
type Changeset map[string]ValueChange

// ValueChange is a sealed interface over the single-field change
// variants. Exactly one variant describes each field.
type ValueChange interface {
	valueChange() // sealed
}

// Set replaces the field with a value.
type Set struct {
	Value model.Value
}

func (Set) valueChange() {}

// Clear removes the field entirely. Distinct from setting Null.
type Clear struct{}

func (Clear) valueChange() {}

// Seq applies an ordered sequence of list mutations to a multi-value
// field.
type Seq struct {
	Mutations []ListMutation
}

func (Seq) valueChange() {}

// Patch applies a nested changeset to an object-valued field.
type Patch struct {
	Nested Changeset
}

func (Patch) valueChange() {}

// ListMutation is a sealed interface over the single-item mutation
// variants of a sequence field.
type ListMutation interface {
	listMutation() // sealed
}

// Insert adds an item. Without a position the item is appended.
// The value is the item itself: a scalar, or a [ref, attrs] tuple for
// relation items carrying attributes.
type Insert struct {
	Value  model.Value
	Pos    int
	HasPos bool
}

func (Insert) listMutation() {}

// Remove deletes an item identified by value. Without a position the
// first matching item is removed; the position disambiguates
// duplicates.
type Remove struct {
	Value  model.Value
	Pos    int
	HasPos bool
}

func (Remove) listMutation() {}

// ItemPatch applies a nested changeset to the attributes of one
// relation item, addressed by its reference.
type ItemPatch struct {
	Ref    model.String
	Nested Changeset
}

func (ItemPatch) listMutation() {}

// Clone returns a deep copy of the changeset.
func (cs Changeset) Clone() Changeset {
	out := make(Changeset, len(cs))
	for k, vc := range cs {
		out[k] = cloneValueChange(vc)
	}
	return out
}

func cloneValueChange(vc ValueChange) ValueChange {
	switch c := vc.(type) {
	case Set:
		return Set{Value: model.Clone(c.Value)}
	case Clear:
		return Clear{}
	case Seq:
		muts := make([]ListMutation, len(c.Mutations))
		for i, m := range c.Mutations {
			muts[i] = cloneMutation(m)
		}
		return Seq{Mutations: muts}
	case Patch:
		return Patch{Nested: c.Nested.Clone()}
	default:
		panic("unknown ValueChange variant")
	}
}

func cloneMutation(m ListMutation) ListMutation {
	switch mut := m.(type) {
	case Insert:
		return Insert{Value: model.Clone(mut.Value), Pos: mut.Pos, HasPos: mut.HasPos}
	case Remove:
		return Remove{Value: model.Clone(mut.Value), Pos: mut.Pos, HasPos: mut.HasPos}
	case ItemPatch:
		return ItemPatch{Ref: mut.Ref, Nested: mut.Nested.Clone()}
	default:
		panic("unknown ListMutation variant")
	}
}

// Equal reports deep equality of two changesets.
func (cs Changeset) Equal(other Changeset) bool {
	if len(cs) != len(other) {
		return false
	}
	for k, vc := range cs {
		ovc, ok := other[k]
		if !ok || !equalValueChange(vc, ovc) {
			return false
		}
	}
	return true
}

func equalValueChange(a, b ValueChange) bool {
	switch av := a.(type) {
	case Set:
		bv, ok := b.(Set)
		return ok && model.Equal(av.Value, bv.Value)
	case Clear:
		_, ok := b.(Clear)
		return ok
	case Seq:
		bv, ok := b.(Seq)
		if !ok || len(av.Mutations) != len(bv.Mutations) {
			return false
		}
		for i := range av.Mutations {
			if !equalMutation(av.Mutations[i], bv.Mutations[i]) {
				return false
			}
		}
		return true
	case Patch:
		bv, ok := b.(Patch)
		return ok && av.Nested.Equal(bv.Nested)
	default:
		return false
	}
}

func equalMutation(a, b ListMutation) bool {
	switch am := a.(type) {
	case Insert:
		bm, ok := b.(Insert)
		return ok && model.Equal(am.Value, bm.Value) && am.HasPos == bm.HasPos && (!am.HasPos || am.Pos == bm.Pos)
	case Remove:
		bm, ok := b.(Remove)
		return ok && model.Equal(am.Value, bm.Value) && am.HasPos == bm.HasPos && (!am.HasPos || am.Pos == bm.Pos)
	case ItemPatch:
		bm, ok := b.(ItemPatch)
		return ok && am.Ref == bm.Ref && am.Nested.Equal(bm.Nested)
	default:
		return false
	}
}

// itemKey returns the identity of a list item: the reference for a
// [ref, attrs] relation tuple, or the value itself for scalars.
func itemKey(v model.Value) model.Value {
	if tuple, ok := v.(model.Array); ok && len(tuple) == 2 {
		if _, isRef := tuple[0].(model.String); isRef {
			if _, isAttrs := tuple[1].(model.Object); isAttrs {
				return tuple[0]
			}
		}
	}
	return v
}

// sameItem reports whether two list items share an identity.
func sameItem(a, b model.Value) bool {
	return model.Equal(itemKey(a), itemKey(b))
}
