package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpazik/binder-sub005/internal/change"
	"github.com/mpazik/binder-sub005/internal/model"
	"github.com/mpazik/binder-sub005/internal/ref"
)

// mapState is a StateProvider over in-memory fieldsets.
type mapState struct {
	nodes   map[ref.UID]model.Fieldset
	configs map[ref.Key]model.Fieldset
}

func (s mapState) NodeState(uid ref.UID) (change.PriorState, error) {
	fs, ok := s.nodes[uid]
	if !ok {
		fs = model.Fieldset{}
	}
	return change.FieldsetState(fs), nil
}

func (s mapState) ConfigState(key ref.Key) (change.PriorState, error) {
	fs, ok := s.configs[key]
	if !ok {
		fs = model.Fieldset{}
	}
	return change.FieldsetState(fs), nil
}

func TestInvertRestoresBothNamespaces(t *testing.T) {
	priorNode := model.Fieldset{"status": model.String("open"), "tags": model.Array{model.String("a")}}
	priorConfig := model.Fieldset{"value": model.String("old title")}
	states := mapState{
		nodes:   map[ref.UID]model.Fieldset{"taskAbc12340": priorNode},
		configs: map[ref.Key]model.Fieldset{"core.title": priorConfig},
	}

	tx := Transaction{
		ID:       3,
		Previous: GenesisHash,
		Nodes: map[ref.UID]change.Changeset{
			"taskAbc12340": {
				"status": change.Set{Value: model.String("done")},
				"tags": change.Seq{Mutations: []change.ListMutation{
					change.Remove{Value: model.String("a")},
					change.Insert{Value: model.String("b")},
				}},
			},
		},
		Configurations: map[ref.Key]change.Changeset{
			"core.title": {"value": change.Clear{}},
		},
		Author:    "alice",
		CreatedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}

	undoAt := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	inv, err := Invert(tx, states, "undo-bot", undoAt)
	require.NoError(t, err)

	assert.Equal(t, "undo-bot", inv.Author)
	assert.Equal(t, undoAt, inv.CreatedAt)
	assert.Empty(t, inv.Hash)
	assert.Zero(t, inv.ID)

	// Forward then inverse restores the prior state of every entity.
	afterNode, err := change.Apply(tx.Nodes["taskAbc12340"], priorNode)
	require.NoError(t, err)
	restoredNode, err := change.Apply(inv.Nodes["taskAbc12340"], afterNode)
	require.NoError(t, err)
	assert.True(t, priorNode.Equal(restoredNode))

	afterConfig, err := change.Apply(tx.Configurations["core.title"], priorConfig)
	require.NoError(t, err)
	restoredConfig, err := change.Apply(inv.Configurations["core.title"], afterConfig)
	require.NoError(t, err)
	assert.True(t, priorConfig.Equal(restoredConfig))
}

func TestInvertFailsWithoutPriorState(t *testing.T) {
	tx := Transaction{
		Nodes: map[ref.UID]change.Changeset{
			"taskAbc12340": {"tags": change.Seq{Mutations: []change.ListMutation{
				change.Remove{Value: model.String("ghost")},
			}}},
		},
	}
	states := mapState{nodes: map[ref.UID]model.Fieldset{}}

	_, err := Invert(tx, states, "undo-bot", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taskAbc12340")
}
