package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kgraph/domain/core/entities"
)

func testPoints() []entities.KnowledgePoint {
	return []entities.KnowledgePoint{
		{ID: "p1", Title: "Goroutines", Type: entities.PointTypeConcept, Importance: 0.9, ChapterPath: []string{"Concurrency"}},
		{ID: "p2", Title: "Concurrency", Type: entities.PointTypeChapter, Importance: 0.5, ChapterPath: nil},
		{ID: "p3", Title: "Channels", Type: entities.PointTypeConcept, Importance: 0.3, ChapterPath: []string{"Concurrency", "Primitives"}},
		{ID: "p4", Title: "Select", Type: entities.PointTypeAPI, Importance: 0.7, ChapterPath: []string{"Concurrency", "Primitives"}},
	}
}

func TestNodeBuilder_BuildNodes_Defaults(t *testing.T) {
	b := NewNodeBuilder(zap.NewNop())

	nodes := b.BuildNodes(testPoints(), DefaultBuildOptions())

	require.Len(t, nodes, 4)
	// Input order is preserved when no cap applies.
	assert.Equal(t, "p1", nodes[0].ID().String())
	assert.Equal(t, "p4", nodes[3].ID().String())
}

func TestNodeBuilder_BuildNodes_MinImportance(t *testing.T) {
	b := NewNodeBuilder(zap.NewNop())
	opts := DefaultBuildOptions()
	opts.MinImportance = 0.6

	nodes := b.BuildNodes(testPoints(), opts)

	require.Len(t, nodes, 2)
	assert.Equal(t, "p1", nodes[0].ID().String())
	assert.Equal(t, "p4", nodes[1].ID().String())
}

func TestNodeBuilder_BuildNodes_ExcludesChapters(t *testing.T) {
	b := NewNodeBuilder(zap.NewNop())
	opts := DefaultBuildOptions()
	opts.IncludeChapterNodes = false

	nodes := b.BuildNodes(testPoints(), opts)

	require.Len(t, nodes, 3)
	for _, n := range nodes {
		assert.NotEqual(t, entities.PointTypeChapter, n.Type())
	}
}

func TestNodeBuilder_BuildNodes_MaxNodesCapKeepsMostImportant(t *testing.T) {
	b := NewNodeBuilder(zap.NewNop())
	opts := DefaultBuildOptions()
	opts.MaxNodes = 2

	nodes := b.BuildNodes(testPoints(), opts)

	require.Len(t, nodes, 2)
	assert.Equal(t, "p1", nodes[0].ID().String())
	assert.Equal(t, "p4", nodes[1].ID().String())
}

func TestNodeBuilder_BuildNodes_VisualAttributes(t *testing.T) {
	b := NewNodeBuilder(zap.NewNop())

	nodes := b.BuildNodes(testPoints(), DefaultBuildOptions())

	require.NotEmpty(t, nodes)
	first := nodes[0]
	assert.InDelta(t, 0.5+0.9*1.5, first.Visual().Size, 1e-9)
	assert.Equal(t, entities.ColorForType(entities.PointTypeConcept), first.Visual().Color)
	require.NotNil(t, first.Visual().Position)
}

func TestNodeBuilder_BuildNodes_PositionGrowsWithDepth(t *testing.T) {
	b := NewNodeBuilder(zap.NewNop())

	nodes := b.BuildNodes(testPoints(), DefaultBuildOptions())

	byID := map[string]*entities.GraphNode{}
	for _, n := range nodes {
		byID[n.ID().String()] = n
	}
	shallow := byID["p1"].Visual().Position
	deep := byID["p3"].Visual().Position
	require.NotNil(t, shallow)
	require.NotNil(t, deep)
	assert.Greater(t, deep.X, shallow.X)
}

func TestNodeBuilder_BuildNodes_NoPositionsWhenDisabled(t *testing.T) {
	b := NewNodeBuilder(zap.NewNop())
	opts := DefaultBuildOptions()
	opts.CalculateNodePositions = false

	nodes := b.BuildNodes(testPoints(), opts)

	for _, n := range nodes {
		assert.Nil(t, n.Visual().Position)
	}
}

func TestNodeBuilder_BuildNodes_SkipsInvalidPoints(t *testing.T) {
	b := NewNodeBuilder(zap.NewNop())
	points := append(testPoints(), entities.KnowledgePoint{ID: "", Title: "broken", Importance: 0.5})

	nodes := b.BuildNodes(points, DefaultBuildOptions())

	assert.Len(t, nodes, 4)
}
