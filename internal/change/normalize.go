package change

import (
	"fmt"

	"github.com/mpazik/binder-sub005/internal/model"
	"github.com/mpazik/binder-sub005/internal/ref"
	"github.com/mpazik/binder-sub005/internal/schema"
)

// Mutation kind keywords. These are reserved: a two-element array whose
// first element is one of them is always read as a mutation tuple,
// never as a relation shorthand.
const (
	kindInsert = "insert"
	kindRemove = "remove"
	kindPatch  = "patch"
)

// Normalize converts an ergonomic field-to-value mapping, as decoded
// from YAML or JSON, into a canonical Changeset:
//
//   - nil                  -> Clear
//   - mutation tuple       -> Seq of that one mutation
//   - array of tuples      -> Seq, preserving order
//   - [refKey, attrsMap]   -> Set of a [ref, attrs] relation tuple
//   - map                  -> Patch, normalized recursively
//   - anything else        -> Set
//
// Mutation tuples are ["insert", value, pos?], ["remove", value, pos?]
// and ["patch", ref, attrs]. Malformed tuples are rejected with a
// NormalizeError. The function is pure.
func Normalize(raw map[string]any) (Changeset, error) {
	cs := make(Changeset, len(raw))
	for field, v := range raw {
		vc, err := normalizeFieldValue(field, v)
		if err != nil {
			return nil, err
		}
		cs[field] = vc
	}
	return cs, nil
}

// NormalizeWithSchema is Normalize followed by schema validation:
// list mutations are only accepted on multi-value fields, and Set
// values of known fields are coerced to the declared data type.
func NormalizeWithSchema(raw map[string]any, p schema.Provider, ns ref.Namespace) (Changeset, error) {
	cs, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	for field, vc := range cs {
		fd := p.FieldDef(ns, field)
		if fd == nil {
			continue
		}
		switch c := vc.(type) {
		case Seq:
			if !fd.AllowMultiple {
				return nil, &NormalizeError{Field: field, Message: "list mutations require a multi-value field"}
			}
		case Set:
			coerced, err := schema.Coerce(*fd, c.Value)
			if err != nil {
				return nil, &NormalizeError{Field: field, Message: err.Error()}
			}
			cs[field] = Set{Value: coerced}
		}
	}
	return cs, nil
}

func normalizeFieldValue(field string, v any) (ValueChange, error) {
	switch val := v.(type) {
	case nil:
		return Clear{}, nil

	case []any:
		if isMutationTuple(val) {
			mut, err := parseMutation(field, val)
			if err != nil {
				return nil, err
			}
			return Seq{Mutations: []ListMutation{mut}}, nil
		}
		if all, some := countMutationTuples(val); some {
			if !all {
				return nil, &NormalizeError{Field: field, Message: "array mixes mutation tuples with plain values"}
			}
			muts := make([]ListMutation, len(val))
			for i, elem := range val {
				mut, err := parseMutation(field, elem.([]any))
				if err != nil {
					return nil, err
				}
				muts[i] = mut
			}
			return Seq{Mutations: muts}, nil
		}
		if isShorthand(val) {
			tuple, err := unwrapShorthand(field, val)
			if err != nil {
				return nil, err
			}
			return Set{Value: tuple}, nil
		}
		// Plain array: unwrap shorthand tuples element-wise.
		arr := make(model.Array, len(val))
		for i, elem := range val {
			item, err := normalizeItemValue(field, elem)
			if err != nil {
				return nil, err
			}
			arr[i] = item
		}
		return Set{Value: arr}, nil

	case map[string]any:
		nested, err := Normalize(val)
		if err != nil {
			return nil, err
		}
		return Patch{Nested: nested}, nil

	default:
		fv, err := model.FromGo(v)
		if err != nil {
			return nil, &NormalizeError{Field: field, Message: err.Error()}
		}
		return Set{Value: fv}, nil
	}
}

// isMutationTuple reports whether v starts with a mutation keyword.
func isMutationTuple(v []any) bool {
	if len(v) == 0 {
		return false
	}
	kind, ok := v[0].(string)
	if !ok {
		return false
	}
	return kind == kindInsert || kind == kindRemove || kind == kindPatch
}

// countMutationTuples reports whether all, and whether some, elements
// of v are mutation tuples.
func countMutationTuples(v []any) (all, some bool) {
	all = len(v) > 0
	for _, elem := range v {
		inner, ok := elem.([]any)
		if ok && isMutationTuple(inner) {
			some = true
		} else {
			all = false
		}
	}
	return all, some
}

// isShorthand reports whether v has the [refKey, attrsMap] relation
// shorthand shape.
func isShorthand(v []any) bool {
	if len(v) != 2 {
		return false
	}
	if _, ok := v[0].(string); !ok {
		return false
	}
	_, ok := v[1].(map[string]any)
	return ok
}

// unwrapShorthand converts a [refKey, attrsMap] shorthand into a
// canonical [ref, attrs] tuple value.
func unwrapShorthand(field string, v []any) (model.Value, error) {
	if len(v) != 2 {
		return nil, &NormalizeError{Field: field, Message: fmt.Sprintf("relation shorthand must be [ref, attrs], got %d elements", len(v))}
	}
	refKey, ok := v[0].(string)
	if !ok {
		return nil, &NormalizeError{Field: field, Message: "relation shorthand ref must be a string"}
	}
	attrsRaw, ok := v[1].(map[string]any)
	if !ok {
		return nil, &NormalizeError{Field: field, Message: "relation shorthand attrs must be a map"}
	}
	attrs, err := model.FromGo(attrsRaw)
	if err != nil {
		return nil, &NormalizeError{Field: field, Message: err.Error()}
	}
	return model.Array{model.String(refKey), attrs}, nil
}

// normalizeItemValue normalizes a value in item position: relation
// shorthand is unwrapped, everything else converts directly.
func normalizeItemValue(field string, v any) (model.Value, error) {
	if inner, ok := v.([]any); ok && isShorthand(inner) {
		return unwrapShorthand(field, inner)
	}
	fv, err := model.FromGo(v)
	if err != nil {
		return nil, &NormalizeError{Field: field, Message: err.Error()}
	}
	return fv, nil
}

// parseMutation converts one raw mutation tuple into a ListMutation.
func parseMutation(field string, t []any) (ListMutation, error) {
	kind, _ := t[0].(string)
	switch kind {
	case kindInsert, kindRemove:
		if len(t) < 2 || len(t) > 3 {
			return nil, &NormalizeError{Field: field, Message: fmt.Sprintf("%q tuple must have 2 or 3 elements, got %d", kind, len(t))}
		}
		value, err := normalizeItemValue(field, t[1])
		if err != nil {
			return nil, err
		}
		var pos int
		hasPos := len(t) == 3
		if hasPos {
			pos, err = toPosition(t[2])
			if err != nil {
				return nil, &NormalizeError{Field: field, Message: fmt.Sprintf("%q position: %v", kind, err)}
			}
		}
		if kind == kindInsert {
			return Insert{Value: value, Pos: pos, HasPos: hasPos}, nil
		}
		return Remove{Value: value, Pos: pos, HasPos: hasPos}, nil

	case kindPatch:
		if len(t) != 3 {
			return nil, &NormalizeError{Field: field, Message: fmt.Sprintf("%q tuple must have 3 elements, got %d", kind, len(t))}
		}
		refKey, ok := t[1].(string)
		if !ok {
			return nil, &NormalizeError{Field: field, Message: "patch ref must be a string"}
		}
		attrsRaw, ok := t[2].(map[string]any)
		if !ok {
			return nil, &NormalizeError{Field: field, Message: "patch attrs must be a map"}
		}
		nested, err := Normalize(attrsRaw)
		if err != nil {
			return nil, err
		}
		return ItemPatch{Ref: model.String(refKey), Nested: nested}, nil

	default:
		return nil, &NormalizeError{Field: field, Message: fmt.Sprintf("unknown mutation kind %q", kind)}
	}
}

// toPosition converts a raw position to an int. Integral float64
// values are accepted because JSON numbers decode that way through
// interface{}.
func toPosition(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
		return 0, fmt.Errorf("position must be an integer, got %v", n)
	default:
		return 0, fmt.Errorf("position must be an integer, got %T", v)
	}
}
