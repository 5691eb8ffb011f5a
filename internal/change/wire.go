package change

import (
	"fmt"

	"github.com/mpazik/binder-sub005/internal/model"
)

// Wire shape of a changeset: a field-keyed object whose values are
//
//   - a bare JSON value            shorthand for Set
//   - null                         Clear
//   - ["seq", [mutation, ...]]     list mutations
//   - a nested object              Patch
//   - ["set", value]               Set of an object or of an array
//     that would otherwise read as a tagged form
//
// The same encoding feeds both storage and the canonical hash
// projection, so it must round-trip exactly.

const (
	tagSeq = "seq"
	tagSet = "set"
)

// EncodeChangeset converts a changeset to its wire object.
func EncodeChangeset(cs Changeset) model.Object {
	out := make(model.Object, len(cs))
	for field, vc := range cs {
		out[field] = encodeValueChange(vc)
	}
	return out
}

func encodeValueChange(vc ValueChange) model.Value {
	switch c := vc.(type) {
	case Set:
		if needsSetTag(c.Value) {
			return model.Array{model.String(tagSet), model.Clone(c.Value)}
		}
		return model.Clone(c.Value)

	case Clear:
		return model.Null{}

	case Seq:
		muts := make(model.Array, len(c.Mutations))
		for i, m := range c.Mutations {
			muts[i] = encodeMutation(m)
		}
		return model.Array{model.String(tagSeq), muts}

	case Patch:
		return EncodeChangeset(c.Nested)

	default:
		panic("unknown ValueChange variant")
	}
}

// needsSetTag reports whether a Set value would be misread on decode:
// objects decode as Patch and tagged arrays as Seq/Set forms.
func needsSetTag(v model.Value) bool {
	switch val := v.(type) {
	case model.Object:
		return true
	case model.Null:
		return true
	case model.Array:
		if len(val) == 2 {
			if s, ok := val[0].(model.String); ok && (s == tagSeq || s == tagSet) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func encodeMutation(m ListMutation) model.Value {
	switch mut := m.(type) {
	case Insert:
		out := model.Array{model.String(kindInsert), model.Clone(mut.Value)}
		if mut.HasPos {
			out = append(out, model.Int(mut.Pos))
		}
		return out

	case Remove:
		out := model.Array{model.String(kindRemove), model.Clone(mut.Value)}
		if mut.HasPos {
			out = append(out, model.Int(mut.Pos))
		}
		return out

	case ItemPatch:
		return model.Array{model.String(kindPatch), mut.Ref, EncodeChangeset(mut.Nested)}

	default:
		panic("unknown ListMutation variant")
	}
}

// DecodeChangeset converts a wire object back into a changeset.
func DecodeChangeset(obj model.Object) (Changeset, error) {
	cs := make(Changeset, len(obj))
	for field, v := range obj {
		vc, err := decodeValueChange(field, v)
		if err != nil {
			return nil, err
		}
		cs[field] = vc
	}
	return cs, nil
}

func decodeValueChange(field string, v model.Value) (ValueChange, error) {
	switch val := v.(type) {
	case model.Null:
		return Clear{}, nil

	case model.Array:
		if len(val) == 2 {
			if s, ok := val[0].(model.String); ok {
				switch s {
				case tagSeq:
					inner, ok := val[1].(model.Array)
					if !ok {
						return nil, fmt.Errorf("field %q: seq payload must be an array, got %T", field, val[1])
					}
					muts := make([]ListMutation, len(inner))
					for i, raw := range inner {
						m, err := decodeMutation(field, raw)
						if err != nil {
							return nil, err
						}
						muts[i] = m
					}
					return Seq{Mutations: muts}, nil

				case tagSet:
					return Set{Value: model.Clone(val[1])}, nil
				}
			}
		}
		return Set{Value: model.Clone(val)}, nil

	case model.Object:
		nested, err := DecodeChangeset(val)
		if err != nil {
			return nil, err
		}
		return Patch{Nested: nested}, nil

	default:
		return Set{Value: v}, nil
	}
}

func decodeMutation(field string, v model.Value) (ListMutation, error) {
	tuple, ok := v.(model.Array)
	if !ok || len(tuple) == 0 {
		return nil, fmt.Errorf("field %q: mutation must be a non-empty array, got %T", field, v)
	}
	kind, ok := tuple[0].(model.String)
	if !ok {
		return nil, fmt.Errorf("field %q: mutation kind must be a string, got %T", field, tuple[0])
	}

	switch string(kind) {
	case kindInsert, kindRemove:
		if len(tuple) < 2 || len(tuple) > 3 {
			return nil, fmt.Errorf("field %q: %q mutation must have 2 or 3 elements, got %d", field, kind, len(tuple))
		}
		var pos int
		hasPos := len(tuple) == 3
		if hasPos {
			p, ok := tuple[2].(model.Int)
			if !ok {
				return nil, fmt.Errorf("field %q: %q position must be an integer, got %T", field, kind, tuple[2])
			}
			pos = int(p)
		}
		value := model.Clone(tuple[1])
		if string(kind) == kindInsert {
			return Insert{Value: value, Pos: pos, HasPos: hasPos}, nil
		}
		return Remove{Value: value, Pos: pos, HasPos: hasPos}, nil

	case kindPatch:
		if len(tuple) != 3 {
			return nil, fmt.Errorf("field %q: %q mutation must have 3 elements, got %d", field, kind, len(tuple))
		}
		refKey, ok := tuple[1].(model.String)
		if !ok {
			return nil, fmt.Errorf("field %q: patch ref must be a string, got %T", field, tuple[1])
		}
		attrs, ok := tuple[2].(model.Object)
		if !ok {
			return nil, fmt.Errorf("field %q: patch attrs must be an object, got %T", field, tuple[2])
		}
		nested, err := DecodeChangeset(attrs)
		if err != nil {
			return nil, err
		}
		return ItemPatch{Ref: refKey, Nested: nested}, nil

	default:
		return nil, fmt.Errorf("field %q: unknown mutation kind %q", field, string(kind))
	}
}
