package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/events"
	"graphcore/infrastructure/messaging/membus"
	pkgerrors "graphcore/pkg/errors"
)

func newTestManager(t *testing.T) (*LinkManager, *membus.Bus) {
	t.Helper()
	bus := membus.New(zap.NewNop())
	m := NewLinkManager(bus, zap.NewNop())
	t.Cleanup(m.Close)
	return m, bus
}

func TestLinkManager_CreateLink_AppliesTypeDefaults(t *testing.T) {
	m, _ := newTestManager(t)

	link, err := m.CreateLink(CreateLinkRequest{
		SourceID: "a",
		TargetID: "b",
		Type:     entities.LinkTypeReference,
	})

	require.NoError(t, err)
	assert.Equal(t, "a-b-reference", link.ID)
	assert.Equal(t, 0.8, link.Strength)
	assert.Equal(t, entities.LinkTypeReference.Color(), link.Color)
	assert.Equal(t, 1, m.ConnectionCount("a"))
	assert.Equal(t, 1, m.ConnectionCount("b"))
}

func TestLinkManager_CreateLink_ExplicitStrengthWins(t *testing.T) {
	m, _ := newTestManager(t)

	strength := 0.25
	link, err := m.CreateLink(CreateLinkRequest{
		SourceID: "a",
		TargetID: "b",
		Type:     entities.LinkTypeTag,
		Strength: &strength,
	})

	require.NoError(t, err)
	assert.Equal(t, 0.25, link.Strength)
}

func TestLinkManager_CreateLink_RejectsSelfLoop(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateLink(CreateLinkRequest{
		SourceID: "a",
		TargetID: "a",
		Type:     entities.LinkTypeReference,
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidEndpoints))
	assert.Equal(t, 0, m.ConnectionCount("a"))
	assert.Empty(t, m.GetNodeLinks("a"))
}

func TestLinkManager_CreateLink_RejectsEmptyEndpoint(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateLink(CreateLinkRequest{
		SourceID: "",
		TargetID: "b",
		Type:     entities.LinkTypeReference,
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidEndpoints))
}

func TestLinkManager_CreateLink_RejectsOutOfRangeStrength(t *testing.T) {
	m, _ := newTestManager(t)

	for _, strength := range []float64{-0.1, 1.5} {
		s := strength
		_, err := m.CreateLink(CreateLinkRequest{
			SourceID: "a",
			TargetID: "b",
			Type:     entities.LinkTypeReference,
			Strength: &s,
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidWeight))
	}
}

func TestLinkManager_CreateLink_RejectsDuplicateTriple(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.NoError(t, err)

	_, err = m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateLink))

	// A different type between the same endpoints is a distinct link
	_, err = m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeTag})
	require.NoError(t, err)
	assert.Len(t, m.GetLinksBetweenNodes("a", "b"), 2)
}

func TestLinkManager_CreateLink_BidirectionalCreatesIndependentPair(t *testing.T) {
	m, _ := newTestManager(t)

	forward, err := m.CreateLink(CreateLinkRequest{
		SourceID:      "a",
		TargetID:      "b",
		Type:          entities.LinkTypeReference,
		Bidirectional: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "a-b-reference", forward.ID)

	reverse := m.GetLink("b-a-reference")
	require.NotNil(t, reverse)
	assert.Equal(t, forward.Strength, reverse.Strength)
	assert.Equal(t, 2, m.ConnectionCount("a"))

	// Deleting one direction leaves the other in place
	require.True(t, m.DeleteLink(reverse.ID))
	assert.NotNil(t, m.GetLink(forward.ID))
	assert.Nil(t, m.GetLink(reverse.ID))
	assert.Equal(t, []string{"b"}, m.GetConnectedNodes("a"))
}

func TestLinkManager_CreateLink_BidirectionalFailsWholeWhenReverseExists(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateLink(CreateLinkRequest{SourceID: "b", TargetID: "a", Type: entities.LinkTypeReference})
	require.NoError(t, err)

	_, err = m.CreateLink(CreateLinkRequest{
		SourceID:      "a",
		TargetID:      "b",
		Type:          entities.LinkTypeReference,
		Bidirectional: true,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateLink))

	// The forward direction must not have been inserted either
	assert.Nil(t, m.GetLink("a-b-reference"))
	assert.Len(t, m.Links(), 1)
}

func TestLinkManager_UpdateLink(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.NoError(t, err)

	t.Run("changes strength and label", func(t *testing.T) {
		strength := 0.9
		label := "cites"
		updated, err := m.UpdateLink(UpdateLinkRequest{ID: created.ID, Strength: &strength, Label: &label})
		require.NoError(t, err)
		assert.Equal(t, 0.9, updated.Strength)
		assert.Equal(t, "cites", updated.Label)
	})

	t.Run("type change keeps color consistent", func(t *testing.T) {
		newType := entities.LinkTypeCustom
		updated, err := m.UpdateLink(UpdateLinkRequest{ID: created.ID, Type: &newType})
		require.NoError(t, err)
		assert.Equal(t, entities.LinkTypeCustom, updated.Type)
		assert.Equal(t, entities.LinkTypeCustom.Color(), updated.Color)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := m.UpdateLink(UpdateLinkRequest{ID: "missing"})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeLinkNotFound))
	})

	t.Run("out of range strength", func(t *testing.T) {
		strength := 2.0
		_, err := m.UpdateLink(UpdateLinkRequest{ID: created.ID, Strength: &strength})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidWeight))
	})
}

func TestLinkManager_UpdateLink_TypeChangeCannotCollide(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.NoError(t, err)
	tagLink, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeTag})
	require.NoError(t, err)

	refType := entities.LinkTypeReference
	_, err = m.UpdateLink(UpdateLinkRequest{ID: tagLink.ID, Type: &refType})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateLink))
}

func TestLinkManager_UpdateLink_TypeChangeRekeysDerivedID(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.NoError(t, err)

	tagType := entities.LinkTypeTag
	updated, err := m.UpdateLink(UpdateLinkRequest{ID: created.ID, Type: &tagType})
	require.NoError(t, err)
	assert.Equal(t, "a-b-tag", updated.ID)
	assert.Nil(t, m.GetLink("a-b-reference"))

	// The original type is free again, not a phantom duplicate
	recreated, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.NoError(t, err)
	assert.Equal(t, "a-b-reference", recreated.ID)

	// The updated type is occupied by its (source, target, type) triple
	_, err = m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeTag})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateLink))

	assert.Len(t, m.Links(), 2)
}

func TestLinkManager_CreateLink_DuplicateTripleWithForeignID(t *testing.T) {
	m, _ := newTestManager(t)

	model := aggregates.NewGraphModel()
	model.Links = []*entities.Link{
		{ID: "custom-1", SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference, Strength: 0.8},
	}
	require.Equal(t, 1, m.Ingest(model))

	// The triple exists even though no link carries the derived id
	_, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateLink))
	assert.Len(t, m.Links(), 1)
}

func TestLinkManager_CreateLink_MintsAroundSquattedID(t *testing.T) {
	m, _ := newTestManager(t)

	// A caller-supplied id that happens to spell another triple's derived id
	model := aggregates.NewGraphModel()
	model.Links = []*entities.Link{
		{ID: "a-b-reference", SourceID: "a", TargetID: "b", Type: entities.LinkTypeTag, Strength: 0.6},
	}
	require.Equal(t, 1, m.Ingest(model))

	link, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.NoError(t, err)
	assert.Equal(t, "a-b-reference-2", link.ID)
	assert.Len(t, m.Links(), 2)
}

func TestLinkManager_Ingest_SkipsDuplicateTriple(t *testing.T) {
	m, _ := newTestManager(t)

	model := aggregates.NewGraphModel()
	model.Links = []*entities.Link{
		{ID: "custom-1", SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference, Strength: 0.8},
		{ID: "custom-2", SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference, Strength: 0.5},
	}

	assert.Equal(t, 1, m.Ingest(model))
	assert.NotNil(t, m.GetLink("custom-1"))
	assert.Nil(t, m.GetLink("custom-2"))
}

func TestLinkManager_DeleteLink(t *testing.T) {
	m, _ := newTestManager(t)

	link, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.NoError(t, err)

	assert.True(t, m.DeleteLink(link.ID))
	assert.False(t, m.DeleteLink(link.ID))
	assert.Equal(t, 0, m.ConnectionCount("a"))
	assert.Empty(t, m.GetConnectedNodes("a"))
}

func TestLinkManager_NeighborIndexSurvivesPartialDeletion(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference})
	require.NoError(t, err)
	tagLink, err := m.CreateLink(CreateLinkRequest{SourceID: "a", TargetID: "b", Type: entities.LinkTypeTag})
	require.NoError(t, err)

	// Two links connect the pair; removing one must keep b as a neighbor
	require.True(t, m.DeleteLink(tagLink.ID))
	assert.Equal(t, []string{"b"}, m.GetConnectedNodes("a"))
	assert.Equal(t, 1, m.ConnectionCount("a"))
}

func TestLinkManager_RemoveNodeLinks(t *testing.T) {
	m, _ := newTestManager(t)

	mustCreate(t, m, "hub", "x", entities.LinkTypeReference)
	mustCreate(t, m, "hub", "y", entities.LinkTypeReference)
	mustCreate(t, m, "y", "hub", entities.LinkTypeTag)
	mustCreate(t, m, "x", "y", entities.LinkTypeReference)

	removed := m.RemoveNodeLinks("hub")
	assert.Equal(t, 3, removed)
	assert.Equal(t, 0, m.ConnectionCount("hub"))
	assert.Equal(t, []string{"y"}, m.GetConnectedNodes("x"))
	assert.Len(t, m.Links(), 1)
}

func TestLinkManager_CascadesOnNodeRemovedEvent(t *testing.T) {
	m, bus := newTestManager(t)

	mustCreate(t, m, "gone", "stays", entities.LinkTypeReference)
	mustCreate(t, m, "stays", "other", entities.LinkTypeReference)

	bus.Publish(events.NewNodeRemoved("gone", time.Now()))

	assert.Equal(t, 0, m.ConnectionCount("gone"))
	assert.Equal(t, []string{"other"}, m.GetConnectedNodes("stays"))
	assert.Len(t, m.Links(), 1)
}

func TestLinkManager_Ingest(t *testing.T) {
	m, _ := newTestManager(t)

	mustCreate(t, m, "old", "older", entities.LinkTypeReference)

	model := aggregates.NewGraphModel()
	model.Links = []*entities.Link{
		{ID: "a-b-reference", SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference, Strength: 0.8},
		{ID: "self", SourceID: "a", TargetID: "a", Type: entities.LinkTypeReference, Strength: 0.8},
		{ID: "a-b-reference", SourceID: "a", TargetID: "b", Type: entities.LinkTypeReference, Strength: 0.8},
	}

	ingested := m.Ingest(model)
	assert.Equal(t, 1, ingested)

	// The previous store is replaced wholesale
	assert.Nil(t, m.GetLink("old-older-reference"))
	assert.NotNil(t, m.GetLink("a-b-reference"))
}

func TestLinkManager_ApplyConnectionCounts(t *testing.T) {
	m, _ := newTestManager(t)

	mustCreate(t, m, "a", "b", entities.LinkTypeReference)
	mustCreate(t, m, "a", "c", entities.LinkTypeReference)

	model := aggregates.NewGraphModel()
	model.Nodes = []*entities.Node{
		{ID: "a", Type: entities.NodeTypeNote, Connections: 99},
		{ID: "b", Type: entities.NodeTypeNote},
		{ID: "lonely", Type: entities.NodeTypeNote, Connections: 5},
	}

	m.ApplyConnectionCounts(model)

	assert.Equal(t, 2, model.Nodes[0].Connections)
	assert.Equal(t, 1, model.Nodes[1].Connections)
	assert.Equal(t, 0, model.Nodes[2].Connections)
}

func mustCreate(t *testing.T, m *LinkManager, source, target string, linkType entities.LinkType) *entities.Link {
	t.Helper()
	link, err := m.CreateLink(CreateLinkRequest{SourceID: source, TargetID: target, Type: linkType})
	require.NoError(t, err)
	return link
}
