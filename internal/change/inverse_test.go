package change

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpazik/binder-sub005/internal/model"
)

// assertInverseRoundTrip checks the defining law of Inverse: applying
// the changeset and then its inverse restores the starting state.
func assertInverseRoundTrip(t *testing.T, cs Changeset, start model.Fieldset) {
	t.Helper()

	after, err := Apply(cs, start)
	require.NoError(t, err)

	inv, err := Inverse(cs, FieldsetState(start))
	require.NoError(t, err)

	restored, err := Apply(inv, after)
	require.NoError(t, err)

	assert.True(t, start.Equal(restored),
		"start %#v\nafter %#v\ninverse %#v\nrestored %#v", start, after, inv, restored)
}

func TestInverseSetRestoresPriorValue(t *testing.T) {
	start := model.Fieldset{"title": model.String("old")}
	cs := Changeset{"title": Set{Value: model.String("new")}}

	inv, err := Inverse(cs, FieldsetState(start))
	require.NoError(t, err)
	assert.True(t, Changeset{"title": Set{Value: model.String("old")}}.Equal(inv))

	assertInverseRoundTrip(t, cs, start)
}

func TestInverseSetOnAbsentFieldClears(t *testing.T) {
	cs := Changeset{"title": Set{Value: model.String("new")}}

	inv, err := Inverse(cs, FieldsetState(model.Fieldset{}))
	require.NoError(t, err)
	assert.True(t, Changeset{"title": Clear{}}.Equal(inv))

	assertInverseRoundTrip(t, cs, model.Fieldset{})
}

func TestInverseClearRestoresValue(t *testing.T) {
	start := model.Fieldset{"title": model.String("kept")}
	cs := Changeset{"title": Clear{}}

	assertInverseRoundTrip(t, cs, start)
}

func TestInverseClearOnAbsentFieldIsClear(t *testing.T) {
	// Absence is exact knowledge: the undo of clearing nothing is
	// clearing nothing.
	inv, err := Inverse(Changeset{"gone": Clear{}}, FieldsetState(model.Fieldset{}))
	require.NoError(t, err)
	assert.True(t, Changeset{"gone": Clear{}}.Equal(inv))
}

func TestInverseInsertBecomesPositionedRemove(t *testing.T) {
	start := model.Fieldset{"tags": model.Array{model.String("a"), model.String("b")}}
	cs := Changeset{"tags": Seq{Mutations: []ListMutation{
		Insert{Value: model.String("x"), Pos: 1, HasPos: true},
	}}}

	inv, err := Inverse(cs, FieldsetState(start))
	require.NoError(t, err)

	expected := Changeset{"tags": Seq{Mutations: []ListMutation{
		Remove{Value: model.String("x"), Pos: 1, HasPos: true},
	}}}
	assert.True(t, expected.Equal(inv))

	assertInverseRoundTrip(t, cs, start)
}

func TestInverseRemoveRecordsPayloadAndPosition(t *testing.T) {
	// The forward changeset only names the removed item; its inverse
	// must restore the full tuple at its old slot, recovered from the
	// prior state.
	start := model.Fieldset{"members": model.Array{
		model.String("personAbc1230"),
		model.Array{model.String("personDef4560"), model.Object{"role": model.String("lead")}},
		model.String("personGhi7890"),
	}}
	cs := Changeset{"members": Seq{Mutations: []ListMutation{
		Remove{Value: model.String("personDef4560")},
	}}}

	inv, err := Inverse(cs, FieldsetState(start))
	require.NoError(t, err)

	expected := Changeset{"members": Seq{Mutations: []ListMutation{
		Insert{
			Value:  model.Array{model.String("personDef4560"), model.Object{"role": model.String("lead")}},
			Pos:    1,
			HasPos: true,
		},
	}}}
	assert.True(t, expected.Equal(inv), "got %#v", inv)

	assertInverseRoundTrip(t, cs, start)
}

func TestInverseSequenceReversesOrder(t *testing.T) {
	start := model.Fieldset{"tags": model.Array{model.String("a"), model.String("b")}}
	cs := Changeset{"tags": Seq{Mutations: []ListMutation{
		Remove{Value: model.String("a")},
		Insert{Value: model.String("c"), Pos: 0, HasPos: true},
		Remove{Value: model.String("b")},
	}}}

	assertInverseRoundTrip(t, cs, start)
}

func TestInverseItemPatchRestoresAttributes(t *testing.T) {
	start := model.Fieldset{"members": model.Array{
		model.Array{model.String("personAbc1230"), model.Object{"role": model.String("dev")}},
	}}
	cs := Changeset{"members": Seq{Mutations: []ListMutation{
		ItemPatch{Ref: "personAbc1230", Nested: Changeset{
			"role":  Set{Value: model.String("lead")},
			"since": Set{Value: model.String("2026")},
		}},
	}}}

	assertInverseRoundTrip(t, cs, start)
}

func TestInverseItemPatchOnScalarItem(t *testing.T) {
	start := model.Fieldset{"members": model.Array{model.String("personAbc1230")}}
	cs := Changeset{"members": Seq{Mutations: []ListMutation{
		ItemPatch{Ref: "personAbc1230", Nested: Changeset{"role": Set{Value: model.String("lead")}}},
	}}}

	assertInverseRoundTrip(t, cs, start)
}

func TestInverseNestedPatch(t *testing.T) {
	start := model.Fieldset{"meta": model.Object{
		"owner": model.String("alice"),
		"kind":  model.String("doc"),
	}}
	cs := Changeset{"meta": Patch{Nested: Changeset{
		"owner": Set{Value: model.String("bob")},
		"kind":  Clear{},
		"fresh": Set{Value: model.Int(1)},
	}}}

	assertInverseRoundTrip(t, cs, start)
}

func TestInversePatchCreatingObjectClears(t *testing.T) {
	cs := Changeset{"meta": Patch{Nested: Changeset{"owner": Set{Value: model.String("alice")}}}}

	inv, err := Inverse(cs, FieldsetState(model.Fieldset{}))
	require.NoError(t, err)
	assert.True(t, Changeset{"meta": Clear{}}.Equal(inv))

	assertInverseRoundTrip(t, cs, model.Fieldset{})
}

func TestInverseWithoutStateFails(t *testing.T) {
	_, err := Inverse(Changeset{"title": Set{Value: model.String("x")}}, NoState())
	require.Error(t, err)
	assert.True(t, IsInverseError(err), "expected InverseError, got %T", err)
}

func TestInverseRemoveOfAbsentItemFails(t *testing.T) {
	_, err := Inverse(Changeset{"tags": Seq{Mutations: []ListMutation{
		Remove{Value: model.String("ghost")},
	}}}, FieldsetState(model.Fieldset{"tags": model.Array{}}))
	require.Error(t, err)
	assert.True(t, IsInverseError(err))
}

// TestInverseRoundTripRandomized drives the round-trip law with
// generated changesets, skipping combinations the forward application
// itself rejects.
func TestInverseRoundTripRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 300; i++ {
		start := randomFieldset(rng)
		cs := randomChangeset(rng)

		after, err := Apply(cs, start)
		if err != nil {
			continue
		}
		inv, err := Inverse(cs, FieldsetState(start))
		if err != nil {
			// Removing an item absent from the prior state is a valid
			// forward no-op with no inverse.
			continue
		}
		restored, err := Apply(inv, after)
		require.NoError(t, err, "iteration %d: cs=%#v inv=%#v", i, cs, inv)

		assert.True(t, start.Equal(restored),
			"iteration %d:\nstart    %#v\ncs       %#v\nafter    %#v\ninverse  %#v\nrestored %#v",
			i, start, cs, after, inv, restored)
	}
}
