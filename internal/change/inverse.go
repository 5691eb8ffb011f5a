package change

import (
	"fmt"

	"github.com/mpazik/binder-sub005/internal/model"
)

// PriorState supplies the pre-change value of any field or item that
// inversion needs to reconstruct. It mirrors the entity-state provider
// of the surrounding system: a materialized store as of the state the
// changeset was applied to.
//
// Field returns (value, present, error); present=false means the field
// is known to be absent, while an error means the state is unknown.
type PriorState interface {
	Field(key string) (model.Value, bool, error)
	Item(fieldKey string, itemRef model.Value) (model.Value, bool, error)
}

// FieldsetState adapts a materialized Fieldset into a PriorState.
func FieldsetState(fs model.Fieldset) PriorState {
	return fieldsetState{fs: fs}
}

type fieldsetState struct {
	fs model.Fieldset
}

func (s fieldsetState) Field(key string) (model.Value, bool, error) {
	v, ok := s.fs[key]
	return v, ok, nil
}

func (s fieldsetState) Item(fieldKey string, itemRef model.Value) (model.Value, bool, error) {
	v, ok := s.fs[fieldKey]
	if !ok {
		return nil, false, nil
	}
	arr, ok := v.(model.Array)
	if !ok {
		return nil, false, fmt.Errorf("field %q holds a non-array value", fieldKey)
	}
	for _, item := range arr {
		if sameItem(item, itemRef) {
			return item, true, nil
		}
	}
	return nil, false, nil
}

// NoState is a PriorState with no snapshot behind it. Every lookup
// fails, so any inversion that needs prior data fails instead of
// guessing.
func NoState() PriorState {
	return noState{}
}

type noState struct{}

func (noState) Field(key string) (model.Value, bool, error) {
	return nil, false, fmt.Errorf("no prior state available for field %q", key)
}

func (noState) Item(fieldKey string, itemRef model.Value) (model.Value, bool, error) {
	return nil, false, fmt.Errorf("no prior state available for field %q", fieldKey)
}

// Inverse computes the changeset that undoes cs, given the state the
// forward changeset was applied to:
//
//	Apply(Inverse(c, FieldsetState(s)), Apply(c, s)) == s
//
// List mutations are inverted individually and the sequence reversed,
// replaying the forward mutations against the prior value so each
// inverse records the position and payload valid at its point in the
// sequence. A removed relation item's full attribute payload comes
// from the prior state, since the forward changeset only recorded the
// removal. Missing prior state is an InverseError, never a guess.
func Inverse(cs Changeset, prior PriorState) (Changeset, error) {
	out := make(Changeset, len(cs))
	for field, vc := range cs {
		inv, err := inverseField(field, vc, prior)
		if err != nil {
			return nil, err
		}
		out[field] = inv
	}
	return out, nil
}

func inverseField(field string, vc ValueChange, prior PriorState) (ValueChange, error) {
	switch c := vc.(type) {
	case Set, Clear:
		prev, ok, err := prior.Field(field)
		if err != nil {
			return nil, &InverseError{Field: field, Message: "prior value unavailable", Err: err}
		}
		if !ok {
			return Clear{}, nil
		}
		return Set{Value: model.Clone(prev)}, nil

	case Seq:
		return inverseSeq(field, c, prior)

	case Patch:
		prev, ok, err := prior.Field(field)
		if err != nil {
			return nil, &InverseError{Field: field, Message: "prior value unavailable", Err: err}
		}
		if !ok {
			// The forward patch created the object; undo drops it.
			return Clear{}, nil
		}
		obj, ok := prev.(model.Object)
		if !ok {
			return nil, &InverseError{Field: field, Message: fmt.Sprintf("prior value is not an object: %T", prev)}
		}
		inv, err := Inverse(c.Nested, FieldsetState(model.Fieldset(obj)))
		if err != nil {
			return nil, err
		}
		return Patch{Nested: inv}, nil

	default:
		panic("unknown ValueChange variant")
	}
}

// inverseSeq replays the forward mutations against the prior array,
// collecting one inverse per mutation, then reverses the collected
// list: undoing a sequence replays it backwards through each
// intermediate state.
func inverseSeq(field string, c Seq, prior PriorState) (ValueChange, error) {
	prev, ok, err := prior.Field(field)
	if err != nil {
		return nil, &InverseError{Field: field, Message: "prior value unavailable", Err: err}
	}
	var cur model.Array
	if ok {
		arr, isArr := prev.(model.Array)
		if !isArr {
			return nil, &InverseError{Field: field, Message: fmt.Sprintf("prior value is not an array: %T", prev)}
		}
		cur = model.Clone(arr).(model.Array)
	}

	inverses := make([]ListMutation, 0, len(c.Mutations))
	for _, m := range c.Mutations {
		switch mut := m.(type) {
		case Insert:
			pos := len(cur)
			if mut.HasPos {
				pos = clamp(mut.Pos, 0, len(cur))
			}
			inverses = append(inverses, Remove{Value: model.Clone(mut.Value), Pos: pos, HasPos: true})

		case Remove:
			idx := findItem(cur, mut.Value, mut.Pos, mut.HasPos)
			if idx < 0 {
				return nil, &InverseError{Field: field, Message: "removed item not present in prior state"}
			}
			inverses = append(inverses, Insert{Value: model.Clone(cur[idx]), Pos: idx, HasPos: true})

		case ItemPatch:
			idx := findItem(cur, mut.Ref, 0, false)
			if idx < 0 {
				return nil, &InverseError{Field: field, Message: fmt.Sprintf("patched item %q not present in prior state", string(mut.Ref))}
			}
			attrs := model.Object{}
			if tuple, isTuple := cur[idx].(model.Array); isTuple && len(tuple) == 2 {
				if obj, isObj := tuple[1].(model.Object); isObj {
					attrs = obj
				}
			}
			invNested, err := Inverse(mut.Nested, FieldsetState(model.Fieldset(attrs)))
			if err != nil {
				return nil, err
			}
			inverses = append(inverses, ItemPatch{Ref: mut.Ref, Nested: invNested})

		default:
			panic("unknown ListMutation variant")
		}

		cur, err = applyMutation(field, cur, m)
		if err != nil {
			return nil, &InverseError{Field: field, Message: "forward mutation does not apply to prior state", Err: err}
		}
	}

	// Reverse temporal order.
	for i, j := 0, len(inverses)-1; i < j; i, j = i+1, j-1 {
		inverses[i], inverses[j] = inverses[j], inverses[i]
	}
	return Seq{Mutations: inverses}, nil
}
