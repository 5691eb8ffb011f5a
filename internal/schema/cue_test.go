package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpazik/binder-sub005/internal/ref"
)

const testSchema = `
fields: {
	node: {
		title: {dataType: "string"}
		tags: {dataType: "string", allowMultiple: true}
		priority: {dataType: "int"}
		assignee: {dataType: "relation", range: "person"}
		meta: {dataType: "object"}
		shorthand: {}
	}
	config: {
		"core.title": {dataType: "string"}
	}
}
`

func TestLoadSchema(t *testing.T) {
	reg, err := Load([]byte(testSchema))
	require.NoError(t, err)

	tests := []struct {
		ns       ref.Namespace
		path     string
		dataType DataType
		multiple bool
	}{
		{ref.NamespaceNode, "title", TypeString, false},
		{ref.NamespaceNode, "tags", TypeString, true},
		{ref.NamespaceNode, "priority", TypeInt, false},
		{ref.NamespaceNode, "assignee", TypeRelation, false},
		{ref.NamespaceNode, "meta", TypeObject, false},
		{ref.NamespaceNode, "shorthand", TypeString, false},
		{ref.NamespaceConfig, "core.title", TypeString, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fd := reg.FieldDef(tt.ns, tt.path)
			require.NotNil(t, fd)
			assert.Equal(t, tt.dataType, fd.DataType)
			assert.Equal(t, tt.multiple, fd.AllowMultiple)
		})
	}

	assert.Equal(t, "person", reg.FieldDef(ref.NamespaceNode, "assignee").Range)
}

func TestLoadSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		substr string
	}{
		{"missing fields struct", `other: {}`, "fields"},
		{"unknown namespace", `fields: {widget: {a: {}}}`, "unknown namespace"},
		{"unknown data type", `fields: {node: {a: {dataType: "blob"}}}`, "unknown dataType"},
		{"relation without range", `fields: {node: {a: {dataType: "relation"}}}`, "require a range"},
		{"invalid cue", `fields: {node: {a: }`, "compile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}
