package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domaincfg "graphcore/domain/config"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	"graphcore/infrastructure/messaging/membus"
	pkgerrors "graphcore/pkg/errors"
)

func newTestStore(t *testing.T) (*GraphStore, *LinkManager) {
	t.Helper()
	bus := membus.New(zap.NewNop())
	links := NewLinkManager(bus, zap.NewNop())
	t.Cleanup(links.Close)
	return NewGraphStore(domaincfg.DefaultDomainConfig(), bus, zap.NewNop()), links
}

func TestGraphStore_AddNode(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.AddNode(&entities.Node{ID: "a", Label: "A", Type: entities.NodeTypeNote})
	require.NoError(t, err)
	assert.Equal(t, 1, store.NodeCount())

	t.Run("duplicate id", func(t *testing.T) {
		err := store.AddNode(&entities.Node{ID: "a", Label: "again", Type: entities.NodeTypeNote})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		err := store.AddNode(&entities.Node{ID: "b", Label: "B", Type: "widget"})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestGraphStore_AddNode_EnforcesCapacity(t *testing.T) {
	bus := membus.New(zap.NewNop())
	limits := domaincfg.DefaultDomainConfig()
	limits.MaxNodes = 1
	store := NewGraphStore(limits, bus, zap.NewNop())

	require.NoError(t, store.AddNode(&entities.Node{ID: "a", Label: "A", Type: entities.NodeTypeNote}))

	err := store.AddNode(&entities.Node{ID: "b", Label: "B", Type: entities.NodeTypeNote})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, "NODE_LIMIT_REACHED"))
}

func TestGraphStore_RemoveNode_CascadesThroughBus(t *testing.T) {
	store, links := newTestStore(t)

	require.NoError(t, store.AddNode(&entities.Node{ID: "a", Label: "A", Type: entities.NodeTypeNote}))
	require.NoError(t, store.AddNode(&entities.Node{ID: "b", Label: "B", Type: entities.NodeTypeNote}))
	mustCreate(t, links, "a", "b", entities.LinkTypeReference)

	require.True(t, store.RemoveNode("a"))

	// The removal event reached the link manager
	assert.Equal(t, 0, links.ConnectionCount("b"))
	assert.Empty(t, links.Links())
	assert.Equal(t, 1, store.NodeCount())

	assert.False(t, store.RemoveNode("a"))
}

func TestGraphStore_GetReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddNode(&entities.Node{ID: "a", Label: "A", Type: entities.NodeTypeNote}))

	snapshot := store.Get()
	snapshot.Nodes[0].Label = "mutated"

	assert.Equal(t, "A", store.Get().Nodes[0].Label)
}

func TestGraphStore_SetPositions(t *testing.T) {
	store, _ := newTestStore(t)

	model := aggregates.NewGraphModel()
	model.Nodes = []*entities.Node{
		{ID: "a", Type: entities.NodeTypeNote},
		{ID: "b", Type: entities.NodeTypeNote},
	}
	store.Set(model)

	pos := valueobjects.NewPosition(10, 20)
	store.SetPositions([]*entities.Node{
		{ID: "a", Position: &pos},
		{ID: "ghost", Position: &pos},
		{ID: "b"}, // nil position, skipped
	})

	current := store.Get()
	require.NotNil(t, current.NodeByID("a").Position)
	assert.Equal(t, 10.0, current.NodeByID("a").Position.X)
	assert.Nil(t, current.NodeByID("b").Position)
}
