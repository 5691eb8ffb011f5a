package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/mpazik/binder-sub005/internal/ref"
)

// Schema files are CUE structs with one top-level field per namespace,
// each mapping field paths to definitions:
//
//	fields: {
//		node: {
//			tags: {dataType: "string", allowMultiple: true}
//			assignee: {dataType: "relation", range: "person"}
//		}
//		config: {
//			"core.title": {dataType: "string"}
//		}
//	}

// LoadFile parses a CUE schema file into a Registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Load(data)
}

// Load parses CUE schema source into a Registry.
func Load(src []byte) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, fmt.Errorf("schema is missing the top-level \"fields\" struct")
	}

	reg := NewRegistry()
	nsIter, err := fieldsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate namespaces: %w", err)
	}
	for nsIter.Next() {
		ns := ref.Namespace(nsIter.Label())
		switch ns {
		case ref.NamespaceNode, ref.NamespaceConfig:
		default:
			return nil, fmt.Errorf("unknown namespace %q in schema", ns)
		}

		fieldIter, err := nsIter.Value().Fields()
		if err != nil {
			return nil, fmt.Errorf("namespace %s: iterate fields: %w", ns, err)
		}
		for fieldIter.Next() {
			fd, err := parseFieldDef(fieldIter.Label(), fieldIter.Value())
			if err != nil {
				return nil, fmt.Errorf("namespace %s: %w", ns, err)
			}
			reg.Register(ns, fd)
		}
	}
	return reg, nil
}

func parseFieldDef(path string, v cue.Value) (FieldDef, error) {
	fd := FieldDef{Path: path, DataType: TypeString}

	dtVal := v.LookupPath(cue.ParsePath("dataType"))
	if dtVal.Exists() {
		dt, err := dtVal.String()
		if err != nil {
			return fd, fmt.Errorf("field %q: dataType: %w", path, err)
		}
		fd.DataType = DataType(dt)
		if _, ok := coercers[fd.DataType]; !ok {
			return fd, fmt.Errorf("field %q: unknown dataType %q", path, dt)
		}
	}

	multiVal := v.LookupPath(cue.ParsePath("allowMultiple"))
	if multiVal.Exists() {
		multi, err := multiVal.Bool()
		if err != nil {
			return fd, fmt.Errorf("field %q: allowMultiple: %w", path, err)
		}
		fd.AllowMultiple = multi
	}

	rangeVal := v.LookupPath(cue.ParsePath("range"))
	if rangeVal.Exists() {
		rng, err := rangeVal.String()
		if err != nil {
			return fd, fmt.Errorf("field %q: range: %w", path, err)
		}
		fd.Range = rng
	}

	formatVal := v.LookupPath(cue.ParsePath("format"))
	if formatVal.Exists() {
		format, err := formatVal.String()
		if err != nil {
			return fd, fmt.Errorf("field %q: format: %w", path, err)
		}
		fd.Format = format
	}

	if fd.DataType == TypeRelation && fd.Range == "" {
		return fd, fmt.Errorf("field %q: relation fields require a range", path)
	}

	return fd, nil
}
