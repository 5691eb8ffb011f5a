package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpazik/binder-sub005/internal/model"
	"github.com/mpazik/binder-sub005/internal/ref"
	"github.com/mpazik/binder-sub005/internal/schema"
)

func TestNormalizeScalars(t *testing.T) {
	cs, err := Normalize(map[string]any{
		"title":  "report",
		"count":  3,
		"done":   true,
		"legacy": nil,
	})
	require.NoError(t, err)

	expected := Changeset{
		"title":  Set{Value: model.String("report")},
		"count":  Set{Value: model.Int(3)},
		"done":   Set{Value: model.Bool(true)},
		"legacy": Clear{},
	}
	assert.True(t, expected.Equal(cs))
}

func TestNormalizeSingleMutationTuple(t *testing.T) {
	cs, err := Normalize(map[string]any{
		"tags": []any{"insert", "urgent", 0},
	})
	require.NoError(t, err)

	expected := Changeset{
		"tags": Seq{Mutations: []ListMutation{
			Insert{Value: model.String("urgent"), Pos: 0, HasPos: true},
		}},
	}
	assert.True(t, expected.Equal(cs))
}

func TestNormalizeMutationSequence(t *testing.T) {
	cs, err := Normalize(map[string]any{
		"tags": []any{
			[]any{"insert", "a"},
			[]any{"remove", "b", 2},
			[]any{"patch", "personAbc1230", map[string]any{"role": "lead"}},
		},
	})
	require.NoError(t, err)

	expected := Changeset{
		"tags": Seq{Mutations: []ListMutation{
			Insert{Value: model.String("a")},
			Remove{Value: model.String("b"), Pos: 2, HasPos: true},
			ItemPatch{Ref: "personAbc1230", Nested: Changeset{"role": Set{Value: model.String("lead")}}},
		}},
	}
	assert.True(t, expected.Equal(cs))
}

func TestNormalizeRelationShorthand(t *testing.T) {
	cs, err := Normalize(map[string]any{
		"assignee": []any{"personAbc1230", map[string]any{"role": "lead"}},
	})
	require.NoError(t, err)

	expected := Changeset{
		"assignee": Set{Value: model.Array{
			model.String("personAbc1230"),
			model.Object{"role": model.String("lead")},
		}},
	}
	assert.True(t, expected.Equal(cs))
}

func TestNormalizePlainArrayUnwrapsShorthand(t *testing.T) {
	cs, err := Normalize(map[string]any{
		"members": []any{
			"personAbc1230",
			[]any{"personDef4560", map[string]any{"role": "lead"}},
		},
	})
	require.NoError(t, err)

	expected := Changeset{
		"members": Set{Value: model.Array{
			model.String("personAbc1230"),
			model.Array{model.String("personDef4560"), model.Object{"role": model.String("lead")}},
		}},
	}
	assert.True(t, expected.Equal(cs))
}

func TestNormalizeNestedMapBecomesPatch(t *testing.T) {
	cs, err := Normalize(map[string]any{
		"meta": map[string]any{
			"owner":   "alice",
			"expired": nil,
		},
	})
	require.NoError(t, err)

	expected := Changeset{
		"meta": Patch{Nested: Changeset{
			"owner":   Set{Value: model.String("alice")},
			"expired": Clear{},
		}},
	}
	assert.True(t, expected.Equal(cs))
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]any
		substr string
	}{
		{"mixed tuple array", map[string]any{"tags": []any{[]any{"insert", "a"}, "plain"}}, "mixes mutation tuples"},
		{"insert arity", map[string]any{"tags": []any{"insert"}}, "2 or 3 elements"},
		{"insert too long", map[string]any{"tags": []any{"insert", "a", 1, 2}}, "2 or 3 elements"},
		{"patch arity", map[string]any{"tags": []any{"patch", "r"}}, "3 elements"},
		{"patch ref type", map[string]any{"tags": []any{"patch", 7, map[string]any{}}}, "must be a string"},
		{"bad position", map[string]any{"tags": []any{"insert", "a", "first"}}, "position"},
		{"float value", map[string]any{"score": 1.5}, "non-integral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, IsNormalizeError(err), "expected NormalizeError, got %T", err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestNormalizeWithSchema(t *testing.T) {
	reg := schema.NewRegistry()
	reg.Register(ref.NamespaceNode, schema.FieldDef{Path: "tags", DataType: schema.TypeString, AllowMultiple: true})
	reg.Register(ref.NamespaceNode, schema.FieldDef{Path: "title", DataType: schema.TypeString})
	reg.Register(ref.NamespaceNode, schema.FieldDef{Path: "priority", DataType: schema.TypeInt})

	t.Run("coerces known fields", func(t *testing.T) {
		cs, err := NormalizeWithSchema(map[string]any{"priority": 2}, reg, ref.NamespaceNode)
		require.NoError(t, err)
		assert.True(t, Changeset{"priority": Set{Value: model.Int(2)}}.Equal(cs))
	})

	t.Run("rejects wrong data type", func(t *testing.T) {
		_, err := NormalizeWithSchema(map[string]any{"priority": "high"}, reg, ref.NamespaceNode)
		require.Error(t, err)
		assert.True(t, IsNormalizeError(err))
	})

	t.Run("mutations require multi-value field", func(t *testing.T) {
		_, err := NormalizeWithSchema(map[string]any{"title": []any{"insert", "x"}}, reg, ref.NamespaceNode)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multi-value")

		_, err = NormalizeWithSchema(map[string]any{"tags": []any{"insert", "x"}}, reg, ref.NamespaceNode)
		assert.NoError(t, err)
	})

	t.Run("unknown fields pass through", func(t *testing.T) {
		cs, err := NormalizeWithSchema(map[string]any{"custom": "v"}, reg, ref.NamespaceNode)
		require.NoError(t, err)
		assert.True(t, Changeset{"custom": Set{Value: model.String("v")}}.Equal(cs))
	})
}
