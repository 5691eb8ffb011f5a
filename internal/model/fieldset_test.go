package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsetGetPath(t *testing.T) {
	fs := Fieldset{
		"title": String("report"),
		"meta":  Object{"owner": Object{"name": String("alice")}},
	}

	tests := []struct {
		name     string
		path     string
		expected Value
		found    bool
	}{
		{"top level", "title", String("report"), true},
		{"nested", "meta.owner.name", String("alice"), true},
		{"missing top", "absent", nil, false},
		{"missing nested", "meta.owner.age", nil, false},
		{"through scalar", "title.nested", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := fs.GetPath(tt.path)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.True(t, Equal(tt.expected, v))
			}
		})
	}
}

func TestFieldsetSetPath(t *testing.T) {
	fs := Fieldset{}
	require.NoError(t, fs.SetPath("meta.owner.name", String("alice")))

	v, ok := fs.GetPath("meta.owner.name")
	require.True(t, ok)
	assert.True(t, Equal(String("alice"), v))
}

func TestFieldsetSetPathThroughScalar(t *testing.T) {
	fs := Fieldset{"title": String("report")}
	err := fs.SetPath("title.sub", Int(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-object")
}

func TestFieldsetCloneIsDeep(t *testing.T) {
	fs := Fieldset{"tags": Array{String("a")}}
	cloned := fs.Clone()
	cloned["tags"].(Array)[0] = String("changed")

	assert.True(t, Equal(String("a"), fs["tags"].(Array)[0]))
}

func TestFieldsetEqualDistinguishesNullFromAbsent(t *testing.T) {
	withNull := Fieldset{"k": Null{}}
	without := Fieldset{}

	assert.False(t, withNull.Equal(without))
	assert.True(t, withNull.Equal(Fieldset{"k": Null{}}))
}
