package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
	"kgraph/domain/core/valueobjects"
	"kgraph/pkg/errors"
)

func mustNode(t *testing.T, id, title string, pt entities.PointType, importance float64, chapterPath ...string) *entities.GraphNode {
	t.Helper()
	n, err := entities.NewGraphNode(entities.KnowledgePoint{
		ID:          id,
		Title:       title,
		Type:        pt,
		Importance:  importance,
		ChapterPath: chapterPath,
	}, entities.NodeVisual{Size: 1, Color: "#9B9B9B"})
	require.NoError(t, err)
	return n
}

func mustEdge(t *testing.T, source, target string, weight float64) *entities.GraphEdge {
	t.Helper()
	src, err := valueobjects.NewNodeID(source)
	require.NoError(t, err)
	dst, err := valueobjects.NewNodeID(target)
	require.NoError(t, err)
	e, err := entities.NewGraphEdge(src, dst, valueobjects.RelationRelated, weight, "")
	require.NoError(t, err)
	return e
}

// chainGraph builds A-B-C-D connected in a line.
func chainGraph(t *testing.T) *aggregates.Graph {
	t.Helper()
	nodes := []*entities.GraphNode{
		mustNode(t, "A", "Alpha", entities.PointTypeConcept, 0.9),
		mustNode(t, "B", "Beta", entities.PointTypeConcept, 0.7),
		mustNode(t, "C", "Gamma", entities.PointTypeProcess, 0.5),
		mustNode(t, "D", "Delta", entities.PointTypeAPI, 0.3),
	}
	edges := []*entities.GraphEdge{
		mustEdge(t, "A", "B", 0.8),
		mustEdge(t, "B", "C", 0.6),
		mustEdge(t, "C", "D", 0.4),
	}
	g, err := aggregates.NewGraph("corpus-q", nodes, edges)
	require.NoError(t, err)
	return g
}

func nodeIDs(nodes []*entities.GraphNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID().String()
	}
	return ids
}

func TestSubgraph_DepthBounds(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	sub1, err := svc.Subgraph(g, "A", 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, nodeIDs(sub1.Nodes()))
	assert.Equal(t, 1, sub1.EdgeCount())

	sub2, err := svc.Subgraph(g, "A", 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, nodeIDs(sub2.Nodes()))
	assert.Equal(t, 2, sub2.EdgeCount())
}

func TestSubgraph_DepthZeroIsRootOnly(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	sub, err := svc.Subgraph(g, "B", 0)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B"}, nodeIDs(sub.Nodes()))
	assert.Zero(t, sub.EdgeCount())
}

func TestSubgraph_UndirectedReachability(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	// D only has an incoming edge from C, but traversal treats the
	// graph as undirected.
	sub, err := svc.Subgraph(g, "D", 1)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"C", "D"}, nodeIDs(sub.Nodes()))
}

func TestSubgraph_UnknownRootReturnsEmpty(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	sub, err := svc.Subgraph(g, "Z", 3)

	require.NoError(t, err)
	assert.Zero(t, sub.NodeCount())
	assert.Zero(t, sub.EdgeCount())
	assert.Equal(t, g.CorpusID(), sub.CorpusID())
}

func TestSubgraph_Monotonicity(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	for depth := 0; depth < 4; depth++ {
		smaller, err := svc.Subgraph(g, "A", depth)
		require.NoError(t, err)
		larger, err := svc.Subgraph(g, "A", depth+1)
		require.NoError(t, err)
		assert.Subset(t, nodeIDs(larger.Nodes()), nodeIDs(smaller.Nodes()))
		assert.GreaterOrEqual(t, larger.EdgeCount(), smaller.EdgeCount())
	}
}

func TestSubgraph_FreshIdentitySameCorpus(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	sub, err := svc.Subgraph(g, "A", 1)

	require.NoError(t, err)
	assert.NotEqual(t, g.ID(), sub.ID())
	assert.Equal(t, g.CorpusID(), sub.CorpusID())
}

func TestSubgraph_NegativeDepth(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	_, err := svc.Subgraph(g, "A", -1)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSearchNodes_RanksByImportance(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	nodes := []*entities.GraphNode{
		mustNode(t, "a1", "Agent Basics", entities.PointTypeConcept, 0.8),
		mustNode(t, "a2", "Multi-Agent Systems", entities.PointTypeConcept, 0.6),
		mustNode(t, "u1", "Unrelated Topic", entities.PointTypeConcept, 0.9),
	}
	g, err := aggregates.NewGraph("corpus-q", nodes, nil)
	require.NoError(t, err)

	view, err := svc.SearchNodes(g, "agent", 10)

	require.NoError(t, err)
	require.Len(t, view.Nodes, 2)
	assert.Equal(t, "a1", view.Nodes[0].ID().String())
	assert.Equal(t, "a2", view.Nodes[1].ID().String())
	assert.Equal(t, 2, view.TotalNodes)
}

func TestSearchNodes_MatchesChapterPath(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	nodes := []*entities.GraphNode{
		mustNode(t, "n1", "Mutexes", entities.PointTypeConcept, 0.5, "Concurrency", "Synchronization"),
	}
	g, err := aggregates.NewGraph("corpus-q", nodes, nil)
	require.NoError(t, err)

	view, err := svc.SearchNodes(g, "synchron", 10)

	require.NoError(t, err)
	assert.Len(t, view.Nodes, 1)
}

func TestSearchNodes_IncludesIncidentEdgesBeyondCap(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	// Only "Alpha" matches, but both of A's and none of D's edges
	// come along; the cap limits nodes, not edges.
	view, err := svc.SearchNodes(g, "alpha", 1)

	require.NoError(t, err)
	require.Len(t, view.Nodes, 1)
	require.Len(t, view.Edges, 1)
	assert.Equal(t, "A", view.Edges[0].SourceID.String())
}

func TestSearchNodes_EmptyQueryRejected(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	_, err := svc.SearchNodes(g, "   ", 10)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestNeighbors_RanksByWeightAndTruncates(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	nodes := []*entities.GraphNode{
		mustNode(t, "A", "Alpha", entities.PointTypeConcept, 0.9),
		mustNode(t, "B", "Beta", entities.PointTypeConcept, 0.7),
		mustNode(t, "C", "Gamma", entities.PointTypeConcept, 0.5),
	}
	edges := []*entities.GraphEdge{
		mustEdge(t, "A", "B", 0.9),
		mustEdge(t, "A", "C", 0.3),
	}
	g, err := aggregates.NewGraph("corpus-q", nodes, edges)
	require.NoError(t, err)

	view, err := svc.Neighbors(g, "A", 1)

	require.NoError(t, err)
	require.Len(t, view.Nodes, 1)
	assert.Equal(t, "B", view.Nodes[0].ID().String())
	require.Len(t, view.Edges, 1)
	assert.InDelta(t, 0.9, view.Edges[0].Weight, 1e-9)
}

func TestNeighbors_UnknownNodeReturnsEmpty(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	g := chainGraph(t)

	view, err := svc.Neighbors(g, "Z", 5)

	require.NoError(t, err)
	assert.Empty(t, view.Nodes)
	assert.Empty(t, view.Edges)
}

func TestNeighbors_IsolatedNodeReturnsEmpty(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	nodes := []*entities.GraphNode{
		mustNode(t, "solo", "Loner", entities.PointTypeConcept, 0.5),
	}
	g, err := aggregates.NewGraph("corpus-q", nodes, nil)
	require.NoError(t, err)

	view, err := svc.Neighbors(g, "solo", 5)

	require.NoError(t, err)
	assert.Empty(t, view.Nodes)
}

func TestSimilarity_IdenticalNodes(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	a := mustNode(t, "A", "Alpha", entities.PointTypeConcept, 0.9)

	assert.Equal(t, 1.0, svc.Similarity(a, a))
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	a := mustNode(t, "A", "Alpha", entities.PointTypeConcept, 0.9, "Ch1", "Ch2")
	b := mustNode(t, "B", "Beta", entities.PointTypeConcept, 0.4, "Ch1")
	c := mustNode(t, "C", "Gamma", entities.PointTypeAPI, 0.4)

	pairs := [][2]*entities.GraphNode{{a, b}, {a, c}, {b, c}}
	for _, p := range pairs {
		ab := svc.Similarity(p[0], p[1])
		ba := svc.Similarity(p[1], p[0])
		assert.Equal(t, ab, ba)
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	}
}

func TestSimilarity_ComponentBlend(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	a := mustNode(t, "A", "Alpha", entities.PointTypeConcept, 0.8, "Ch1", "Ch2")
	b := mustNode(t, "B", "Beta", entities.PointTypeConcept, 0.6, "Ch1")

	// Same type: 0.3. Chapter overlap 1/2: 0.4*0.5. Importance
	// proximity: 0.3*(1-0.2).
	expected := 0.3 + 0.4*0.5 + 0.3*0.8
	assert.InDelta(t, expected, svc.Similarity(a, b), 1e-9)
}

func TestSimilarity_EmptyChapterPathsContributeNothing(t *testing.T) {
	svc := NewQueryService(zap.NewNop(), nil)
	a := mustNode(t, "A", "Alpha", entities.PointTypeConcept, 0.5)
	b := mustNode(t, "B", "Beta", entities.PointTypeConcept, 0.5)

	assert.InDelta(t, 0.3+0.3, svc.Similarity(a, b), 1e-9)
}
