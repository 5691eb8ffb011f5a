package schema

import (
	"fmt"

	"github.com/mpazik/binder-sub005/internal/model"
	"github.com/mpazik/binder-sub005/internal/ref"
)

// DataType enumerates the value types a field definition may declare.
type DataType string

const (
	TypeString   DataType = "string"
	TypeInt      DataType = "int"
	TypeBool     DataType = "bool"
	TypeRelation DataType = "relation"
	TypeObject   DataType = "object"
)

// FieldDef describes one field of an entity type.
type FieldDef struct {
	// Path is the field key, possibly dotted for nested fields.
	Path string

	// DataType selects the coercion and validation rules.
	DataType DataType

	// AllowMultiple marks the field as a sequence; only such fields
	// accept list mutations.
	AllowMultiple bool

	// Range names the target entity type for relation fields.
	Range string

	// Format optionally constrains string values to an alphabet,
	// e.g. "base36" or "hex".
	Format string
}

// IsRelation reports whether the field holds entity references.
func (fd FieldDef) IsRelation() bool {
	return fd.DataType == TypeRelation
}

// Provider resolves field definitions for normalization. A nil lookup
// result means the field is unknown to the schema.
type Provider interface {
	FieldDef(ns ref.Namespace, path string) *FieldDef
}

// Registry is an in-memory Provider keyed by namespace and field path.
type Registry struct {
	defs map[ref.Namespace]map[string]FieldDef
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[ref.Namespace]map[string]FieldDef)}
}

// Register adds a field definition. A later registration for the same
// namespace and path replaces the earlier one.
func (r *Registry) Register(ns ref.Namespace, fd FieldDef) {
	m, ok := r.defs[ns]
	if !ok {
		m = make(map[string]FieldDef)
		r.defs[ns] = m
	}
	m[fd.Path] = fd
}

// FieldDef implements Provider.
func (r *Registry) FieldDef(ns ref.Namespace, path string) *FieldDef {
	m, ok := r.defs[ns]
	if !ok {
		return nil
	}
	fd, ok := m[path]
	if !ok {
		return nil
	}
	return &fd
}

// Coercer validates and coerces a raw value for one data type.
type Coercer func(v model.Value) (model.Value, error)

// coercers maps each data type to its coercion function. Dispatch is a
// plain map lookup, not generics; unknown data types fail loudly.
var coercers = map[DataType]Coercer{
	TypeString:   coerceString,
	TypeInt:      coerceInt,
	TypeBool:     coerceBool,
	TypeRelation: coerceRelation,
	TypeObject:   coerceObject,
}

// Coerce validates a value against the field definition's data type.
// Multi-value fields accept an array of valid items or a single item.
func Coerce(fd FieldDef, v model.Value) (model.Value, error) {
	coerce, ok := coercers[fd.DataType]
	if !ok {
		return nil, fmt.Errorf("unknown data type %q for field %q", fd.DataType, fd.Path)
	}
	if fd.AllowMultiple {
		if arr, ok := v.(model.Array); ok {
			out := make(model.Array, len(arr))
			for i, item := range arr {
				cv, err := coerce(item)
				if err != nil {
					return nil, fmt.Errorf("field %q item %d: %w", fd.Path, i, err)
				}
				out[i] = cv
			}
			return out, nil
		}
	}
	cv, err := coerce(v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", fd.Path, err)
	}
	return cv, nil
}

func coerceString(v model.Value) (model.Value, error) {
	if _, ok := v.(model.String); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected string, got %T", v)
}

func coerceInt(v model.Value) (model.Value, error) {
	if _, ok := v.(model.Int); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected int, got %T", v)
}

func coerceBool(v model.Value) (model.Value, error) {
	if _, ok := v.(model.Bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected bool, got %T", v)
}

// coerceRelation accepts a plain reference string or a [ref, attrs]
// tuple for relations carrying attributes.
func coerceRelation(v model.Value) (model.Value, error) {
	switch val := v.(type) {
	case model.String:
		return v, nil
	case model.Array:
		if len(val) != 2 {
			return nil, fmt.Errorf("relation tuple must be [ref, attrs], got %d elements", len(val))
		}
		if _, ok := val[0].(model.String); !ok {
			return nil, fmt.Errorf("relation tuple ref must be a string, got %T", val[0])
		}
		if _, ok := val[1].(model.Object); !ok {
			return nil, fmt.Errorf("relation tuple attrs must be an object, got %T", val[1])
		}
		return v, nil
	default:
		return nil, fmt.Errorf("expected relation reference, got %T", v)
	}
}

func coerceObject(v model.Value) (model.Value, error) {
	if _, ok := v.(model.Object); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected object, got %T", v)
}
