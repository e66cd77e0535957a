package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgraph/domain/core/valueobjects"
)

func TestNewGraphNode(t *testing.T) {
	point := KnowledgePoint{
		ID:          "pt-1",
		Title:       "Interfaces",
		Type:        PointTypeConcept,
		Importance:  0.75,
		ChapterPath: []string{"Types", "Interfaces"},
		Definition:  "Method sets as contracts",
	}

	node, err := NewGraphNode(point, NodeVisual{Size: 1.6, Color: "#4A90E2"})
	require.NoError(t, err)

	assert.Equal(t, "pt-1", node.ID().String())
	assert.Equal(t, "Interfaces", node.Title())
	assert.Equal(t, PointTypeConcept, node.Type())
	assert.InDelta(t, 0.75, node.Importance(), 1e-9)
	assert.Equal(t, 2, node.ChapterDepth())
	assert.Equal(t, "Method sets as contracts", node.Source().Definition)
}

func TestNewGraphNode_Invalid(t *testing.T) {
	_, err := NewGraphNode(KnowledgePoint{ID: "", Title: "x", Importance: 0.5}, NodeVisual{})
	assert.Error(t, err)

	_, err = NewGraphNode(KnowledgePoint{ID: "a", Title: "x", Importance: 1.5}, NodeVisual{})
	assert.Error(t, err)

	_, err = NewGraphNode(KnowledgePoint{ID: "a", Title: "x", Importance: -0.1}, NodeVisual{})
	assert.Error(t, err)
}

func TestGraphNode_ChapterPathIsCopied(t *testing.T) {
	path := []string{"A", "B"}
	node, err := NewGraphNode(KnowledgePoint{ID: "pt-1", Title: "T", Importance: 0.5, ChapterPath: path}, NodeVisual{})
	require.NoError(t, err)

	// Mutating the input or the returned slice must not affect the node.
	path[0] = "mutated"
	got := node.ChapterPath()
	got[1] = "also mutated"

	assert.Equal(t, []string{"A", "B"}, node.ChapterPath())
}

func TestColorForType(t *testing.T) {
	assert.Equal(t, "#4A90E2", ColorForType(PointTypeConcept))
	assert.Equal(t, "#7ED321", ColorForType(PointTypeChapter))
	assert.Equal(t, "#F5A623", ColorForType(PointTypeProcess))
	assert.Equal(t, "#BD10E0", ColorForType(PointTypeAPI))
	assert.Equal(t, "#50E3C2", ColorForType(PointTypeBestPractice))
	assert.Equal(t, "#9B9B9B", ColorForType(PointType("other")))
}

func TestSizeForImportance(t *testing.T) {
	assert.InDelta(t, 0.5, SizeForImportance(0), 1e-9)
	assert.InDelta(t, 2.0, SizeForImportance(1), 1e-9)
	assert.InDelta(t, 1.25, SizeForImportance(0.5), 1e-9)
}

func TestReconstructGraphNode(t *testing.T) {
	node, err := ReconstructGraphNode("pt-1", "T", PointTypeAPI, 0.4, []string{"Ch"}, "def", NodeVisual{Size: 1.1, Color: "#BD10E0"})
	require.NoError(t, err)
	assert.Equal(t, "pt-1", node.ID().String())
	assert.Equal(t, "def", node.Source().Definition)
}

func TestGraphEdge_New(t *testing.T) {
	src := mustID(t, "a")
	dst := mustID(t, "b")

	edge, err := NewGraphEdge(src, dst, valueobjects.RelationDependsOn, 0.7, "desc")
	require.NoError(t, err)
	assert.NotEmpty(t, edge.ID)
	assert.Equal(t, valueobjects.RelationDependsOn, edge.Type)
	assert.InDelta(t, 0.7, edge.Weight, 1e-9)
}

func TestGraphEdge_WeightFloorAndCeiling(t *testing.T) {
	src := mustID(t, "a")
	dst := mustID(t, "b")

	low, err := NewGraphEdge(src, dst, valueobjects.RelationRelated, 0.1, "")
	require.NoError(t, err)
	assert.InDelta(t, MinEdgeWeight, low.Weight, 1e-9)

	high, err := NewGraphEdge(src, dst, valueobjects.RelationRelated, 2.0, "")
	require.NoError(t, err)
	assert.InDelta(t, MaxEdgeWeight, high.Weight, 1e-9)
}

func TestGraphEdge_InvalidTypeDefaultsToRelated(t *testing.T) {
	edge, err := NewGraphEdge(mustID(t, "a"), mustID(t, "b"), valueobjects.RelationType("bogus"), 0.5, "")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.RelationRelated, edge.Type)
}

func TestGraphEdge_EmptyEndpoints(t *testing.T) {
	_, err := NewGraphEdge(valueobjects.NodeID{}, mustID(t, "b"), valueobjects.RelationRelated, 0.5, "")
	assert.Error(t, err)
}

func TestGraphEdge_IncidentAndOther(t *testing.T) {
	a := mustID(t, "a")
	b := mustID(t, "b")
	c := mustID(t, "c")

	edge, err := NewGraphEdge(a, b, valueobjects.RelationRelated, 0.5, "")
	require.NoError(t, err)

	assert.True(t, edge.Incident(a))
	assert.True(t, edge.Incident(b))
	assert.False(t, edge.Incident(c))
	assert.True(t, edge.Other(a).Equals(b))
	assert.True(t, edge.Other(b).Equals(a))
}

func TestReconstructGraphEdge_KeepsID(t *testing.T) {
	edge, err := ReconstructGraphEdge("edge-42", mustID(t, "a"), mustID(t, "b"), valueobjects.RelationExtends, 0.6, "")
	require.NoError(t, err)
	assert.Equal(t, "edge-42", edge.ID)
}

func mustID(t *testing.T, s string) valueobjects.NodeID {
	t.Helper()
	id, err := valueobjects.NewNodeID(s)
	require.NoError(t, err)
	return id
}
