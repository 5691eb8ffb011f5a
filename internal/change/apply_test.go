package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpazik/binder-sub005/internal/model"
)

func TestApplySetAndClear(t *testing.T) {
	fs := model.Fieldset{"title": model.String("old"), "stale": model.Int(1)}

	out, err := Apply(Changeset{
		"title": Set{Value: model.String("new")},
		"stale": Clear{},
		"added": Set{Value: model.Bool(true)},
	}, fs)
	require.NoError(t, err)

	assert.True(t, out.Equal(model.Fieldset{
		"title": model.String("new"),
		"added": model.Bool(true),
	}))
	// Input untouched.
	assert.True(t, fs.Equal(model.Fieldset{"title": model.String("old"), "stale": model.Int(1)}))
}

func TestApplyClearVersusNull(t *testing.T) {
	fs := model.Fieldset{"a": model.Int(1), "b": model.Int(2)}

	out, err := Apply(Changeset{
		"a": Clear{},
		"b": Set{Value: model.Null{}},
	}, fs)
	require.NoError(t, err)

	_, aPresent := out.Get("a")
	assert.False(t, aPresent)
	b, bPresent := out.Get("b")
	require.True(t, bPresent)
	assert.True(t, model.Equal(model.Null{}, b))
}

func TestApplyListMutations(t *testing.T) {
	tests := []struct {
		name     string
		start    model.Array
		muts     []ListMutation
		expected model.Array
	}{
		{
			name:     "append without position",
			start:    model.Array{model.String("a")},
			muts:     []ListMutation{Insert{Value: model.String("b")}},
			expected: model.Array{model.String("a"), model.String("b")},
		},
		{
			name:     "insert at position",
			start:    model.Array{model.String("a"), model.String("c")},
			muts:     []ListMutation{Insert{Value: model.String("b"), Pos: 1, HasPos: true}},
			expected: model.Array{model.String("a"), model.String("b"), model.String("c")},
		},
		{
			name:     "insert position clamped",
			start:    model.Array{model.String("a")},
			muts:     []ListMutation{Insert{Value: model.String("b"), Pos: 99, HasPos: true}},
			expected: model.Array{model.String("a"), model.String("b")},
		},
		{
			name:     "remove by value",
			start:    model.Array{model.String("a"), model.String("b")},
			muts:     []ListMutation{Remove{Value: model.String("a")}},
			expected: model.Array{model.String("b")},
		},
		{
			name:  "remove duplicate by position",
			start: model.Array{model.String("x"), model.String("y"), model.String("x")},
			muts: []ListMutation{
				Remove{Value: model.String("x"), Pos: 2, HasPos: true},
			},
			expected: model.Array{model.String("x"), model.String("y")},
		},
		{
			name:     "remove absent is a no-op",
			start:    model.Array{model.String("a")},
			muts:     []ListMutation{Remove{Value: model.String("zzz")}},
			expected: model.Array{model.String("a")},
		},
		{
			name:  "ordered sequence",
			start: nil,
			muts: []ListMutation{
				Insert{Value: model.String("a")},
				Insert{Value: model.String("b")},
				Remove{Value: model.String("a")},
			},
			expected: model.Array{model.String("b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := model.Fieldset{}
			if tt.start != nil {
				fs["tags"] = tt.start
			}
			out, err := Apply(Changeset{"tags": Seq{Mutations: tt.muts}}, fs)
			require.NoError(t, err)
			got, ok := out.Get("tags")
			require.True(t, ok)
			assert.True(t, model.Equal(tt.expected, got), "got %#v", got)
		})
	}
}

func TestApplyItemPatch(t *testing.T) {
	fs := model.Fieldset{"members": model.Array{
		model.Array{model.String("personAbc1230"), model.Object{"role": model.String("dev")}},
		model.String("personDef4560"),
	}}

	out, err := Apply(Changeset{"members": Seq{Mutations: []ListMutation{
		ItemPatch{Ref: "personAbc1230", Nested: Changeset{"role": Set{Value: model.String("lead")}}},
	}}}, fs)
	require.NoError(t, err)

	got, _ := out.Get("members")
	expected := model.Array{
		model.Array{model.String("personAbc1230"), model.Object{"role": model.String("lead")}},
		model.String("personDef4560"),
	}
	assert.True(t, model.Equal(expected, got))
}

func TestApplyItemPatchPromotesScalar(t *testing.T) {
	fs := model.Fieldset{"members": model.Array{model.String("personDef4560")}}

	out, err := Apply(Changeset{"members": Seq{Mutations: []ListMutation{
		ItemPatch{Ref: "personDef4560", Nested: Changeset{"role": Set{Value: model.String("lead")}}},
	}}}, fs)
	require.NoError(t, err)

	got, _ := out.Get("members")
	expected := model.Array{
		model.Array{model.String("personDef4560"), model.Object{"role": model.String("lead")}},
	}
	assert.True(t, model.Equal(expected, got))
}

func TestApplyItemPatchEmptyAttrsDemotesToScalar(t *testing.T) {
	fs := model.Fieldset{"members": model.Array{
		model.Array{model.String("personAbc1230"), model.Object{"role": model.String("dev")}},
	}}

	out, err := Apply(Changeset{"members": Seq{Mutations: []ListMutation{
		ItemPatch{Ref: "personAbc1230", Nested: Changeset{"role": Clear{}}},
	}}}, fs)
	require.NoError(t, err)

	got, _ := out.Get("members")
	assert.True(t, model.Equal(model.Array{model.String("personAbc1230")}, got))
}

func TestApplyItemPatchMissingItemFails(t *testing.T) {
	fs := model.Fieldset{"members": model.Array{}}

	_, err := Apply(Changeset{"members": Seq{Mutations: []ListMutation{
		ItemPatch{Ref: "ghost", Nested: Changeset{"role": Set{Value: model.String("x")}}},
	}}}, fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing item")
}

func TestApplyNestedPatch(t *testing.T) {
	fs := model.Fieldset{"meta": model.Object{
		"owner": model.String("alice"),
		"tags":  model.Int(1),
	}}

	out, err := Apply(Changeset{"meta": Patch{Nested: Changeset{
		"owner": Set{Value: model.String("bob")},
		"tags":  Clear{},
	}}}, fs)
	require.NoError(t, err)

	got, _ := out.Get("meta")
	assert.True(t, model.Equal(model.Object{"owner": model.String("bob")}, got))
}

func TestApplyPatchCreatesObject(t *testing.T) {
	out, err := Apply(Changeset{"meta": Patch{Nested: Changeset{
		"owner": Set{Value: model.String("alice")},
	}}}, model.Fieldset{})
	require.NoError(t, err)

	got, ok := out.Get("meta")
	require.True(t, ok)
	assert.True(t, model.Equal(model.Object{"owner": model.String("alice")}, got))
}

func TestApplyTypeMismatches(t *testing.T) {
	_, err := Apply(Changeset{"tags": Seq{Mutations: []ListMutation{Insert{Value: model.Int(1)}}}},
		model.Fieldset{"tags": model.String("not a list")})
	require.Error(t, err)

	_, err = Apply(Changeset{"meta": Patch{Nested: Changeset{"k": Clear{}}}},
		model.Fieldset{"meta": model.Int(7)})
	require.Error(t, err)
}
