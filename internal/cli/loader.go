package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/ref"
	"github.com/mpazik/binder-sub005/internal/schema"
)

// ChangeFile is the YAML shape of a commit input:
//
//	author: alice
//	nodes:
//	  - $ref: taskAbc1230        # update an existing node
//	    fields:
//	      status: done
//	  - type: task               # create a node, uid assigned
//	    fields:
//	      title: Write the report
//	      tags: [urgent, important]
//	configurations:
//	  - key: core.title
//	    fields:
//	      value: My workspace
//
// Field values use the ergonomic shapes the normalizer accepts,
// including list mutation tuples like ["insert", "done", 1].
type ChangeFile struct {
	Author         string            `yaml:"author"`
	Nodes          []EntityEntry     `yaml:"nodes"`
	Configurations []EntityEntry     `yaml:"configurations"`
}

// EntityEntry is one entity's worth of changes in a ChangeFile.
type EntityEntry struct {
	Ref    string         `yaml:"$ref"`
	Type   string         `yaml:"type"`
	Key    string         `yaml:"key"`
	Fields map[string]any `yaml:"fields"`
}

// LoadChangeFile reads and parses a YAML change file.
func LoadChangeFile(path string) (*ChangeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read change file: %w", err)
	}
	var cf ChangeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse change file: %w", err)
	}
	return &cf, nil
}

// Entities normalizes the change file into entity changesets. When a
// schema provider is given, field values are validated against it.
func (cf *ChangeFile) Entities(p schema.Provider) ([]change.EntityChangeset, error) {
	var out []change.EntityChangeset

	for i, entry := range cf.Nodes {
		fields, err := normalizeEntry(entry, p, ref.NamespaceNode)
		if err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		switch {
		case entry.Ref != "":
			r, err := ref.ParseIn(ref.NamespaceNode, entry.Ref)
			if err != nil {
				return nil, fmt.Errorf("nodes[%d]: %w", i, err)
			}
			out = append(out, change.Update{Ref: r, Fields: fields})
		case entry.Type != "":
			out = append(out, change.Create{Type: entry.Type, Fields: fields})
		default:
			return nil, fmt.Errorf("nodes[%d]: entry needs either $ref or type", i)
		}
	}

	for i, entry := range cf.Configurations {
		if entry.Key == "" {
			return nil, fmt.Errorf("configurations[%d]: entry needs a key", i)
		}
		fields, err := normalizeEntry(entry, p, ref.NamespaceConfig)
		if err != nil {
			return nil, fmt.Errorf("configurations[%d]: %w", i, err)
		}
		out = append(out, change.Update{Ref: ref.FromKey(ref.Key(entry.Key)), Fields: fields})
	}

	return out, nil
}

func normalizeEntry(entry EntityEntry, p schema.Provider, ns ref.Namespace) (change.Changeset, error) {
	if len(entry.Fields) == 0 {
		return nil, fmt.Errorf("entry has no fields")
	}
	if p != nil {
		return change.NormalizeWithSchema(entry.Fields, p, ns)
	}
	return change.Normalize(entry.Fields)
}
