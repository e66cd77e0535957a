package aggregates

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"kgraph/domain/core/entities"
	"kgraph/domain/core/valueobjects"
	pkgerrors "kgraph/pkg/errors"
)

// GraphID represents a unique graph identifier
type GraphID string

// NewGraphID creates a new random GraphID
func NewGraphID() GraphID {
	return GraphID(uuid.New().String())
}

// String returns the string representation
func (id GraphID) String() string {
	return string(id)
}

// Graph is the aggregate root for a built knowledge graph. A graph is
// immutable after construction: every rebuild produces a new value
// with a new identifier, and queries never mutate it.
type Graph struct {
	id        GraphID
	corpusID  string
	nodes     []*entities.GraphNode
	nodeIndex map[valueobjects.NodeID]*entities.GraphNode
	edges     []*entities.GraphEdge
	incident  map[valueobjects.NodeID][]*entities.GraphEdge
	createdAt time.Time
	updatedAt time.Time
}

// NewGraph assembles a graph from built nodes and edges, enforcing
// the structural invariants: unique node ids, and both endpoints of
// every edge present in the node set.
func NewGraph(corpusID string, nodes []*entities.GraphNode, edges []*entities.GraphEdge) (*Graph, error) {
	now := time.Now()
	return assemble(NewGraphID(), corpusID, nodes, edges, now, now)
}

// ReconstructGraph recreates a graph from stored data, preserving its
// original identifier and timestamps. The same invariants apply: a
// snapshot that violates them is corrupt, not loadable.
func ReconstructGraph(
	id GraphID,
	corpusID string,
	nodes []*entities.GraphNode,
	edges []*entities.GraphEdge,
	createdAt, updatedAt time.Time,
) (*Graph, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("graph ID required for reconstruction")
	}
	return assemble(id, corpusID, nodes, edges, createdAt, updatedAt)
}

func assemble(
	id GraphID,
	corpusID string,
	nodes []*entities.GraphNode,
	edges []*entities.GraphEdge,
	createdAt, updatedAt time.Time,
) (*Graph, error) {
	if corpusID == "" {
		return nil, pkgerrors.NewValidationError("corpus ID required")
	}

	index := make(map[valueobjects.NodeID]*entities.GraphNode, len(nodes))
	ordered := make([]*entities.GraphNode, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			return nil, pkgerrors.NewValidationError("graph node cannot be nil")
		}
		if _, exists := index[node.ID()]; exists {
			return nil, pkgerrors.NewConflictError(
				fmt.Sprintf("duplicate node ID %q", node.ID().String()))
		}
		index[node.ID()] = node
		ordered = append(ordered, node)
	}

	incident := make(map[valueobjects.NodeID][]*entities.GraphEdge)
	kept := make([]*entities.GraphEdge, 0, len(edges))
	for _, edge := range edges {
		if edge == nil {
			return nil, pkgerrors.NewValidationError("graph edge cannot be nil")
		}
		if _, ok := index[edge.SourceID]; !ok {
			return nil, pkgerrors.NewValidationError(
				fmt.Sprintf("edge %s references unknown source node %q", edge.ID, edge.SourceID.String()))
		}
		if _, ok := index[edge.TargetID]; !ok {
			return nil, pkgerrors.NewValidationError(
				fmt.Sprintf("edge %s references unknown target node %q", edge.ID, edge.TargetID.String()))
		}
		kept = append(kept, edge)
		incident[edge.SourceID] = append(incident[edge.SourceID], edge)
		if !edge.TargetID.Equals(edge.SourceID) {
			incident[edge.TargetID] = append(incident[edge.TargetID], edge)
		}
	}

	return &Graph{
		id:        id,
		corpusID:  corpusID,
		nodes:     ordered,
		nodeIndex: index,
		edges:     kept,
		incident:  incident,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the graph's unique identifier
func (g *Graph) ID() GraphID {
	return g.id
}

// CorpusID returns the corpus this graph was built from
func (g *Graph) CorpusID() string {
	return g.corpusID
}

// Nodes returns the graph's nodes in insertion order.
// The slice is a copy; the nodes themselves are immutable.
func (g *Graph) Nodes() []*entities.GraphNode {
	nodes := make([]*entities.GraphNode, len(g.nodes))
	copy(nodes, g.nodes)
	return nodes
}

// Edges returns the graph's edges.
// The slice is a copy to maintain encapsulation.
func (g *Graph) Edges() []*entities.GraphEdge {
	edges := make([]*entities.GraphEdge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// NodeByID retrieves a node by ID
func (g *Graph) NodeByID(id valueobjects.NodeID) (*entities.GraphNode, bool) {
	node, ok := g.nodeIndex[id]
	return node, ok
}

// HasNode checks if a node exists in the graph
func (g *Graph) HasNode(id valueobjects.NodeID) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// IncidentEdges returns all edges touching the given node, in either
// direction. A self-loop appears once.
func (g *Graph) IncidentEdges(id valueobjects.NodeID) []*entities.GraphEdge {
	edges := make([]*entities.GraphEdge, len(g.incident[id]))
	copy(edges, g.incident[id])
	return edges
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// CreatedAt returns when the graph was built
func (g *Graph) CreatedAt() time.Time {
	return g.createdAt
}

// UpdatedAt returns when the graph was last written
func (g *Graph) UpdatedAt() time.Time {
	return g.updatedAt
}

// Validate re-checks the structural invariants. Construction already
// enforces them; snapshot loading paths can run this as a second
// check.
func (g *Graph) Validate() error {
	seen := make(map[valueobjects.NodeID]bool, len(g.nodes))
	for _, node := range g.nodes {
		if seen[node.ID()] {
			return pkgerrors.NewConflictError(
				fmt.Sprintf("duplicate node ID %q", node.ID().String()))
		}
		seen[node.ID()] = true
	}
	for _, edge := range g.edges {
		if !seen[edge.SourceID] {
			return pkgerrors.NewValidationError("edge references non-existent source node")
		}
		if !seen[edge.TargetID] {
			return pkgerrors.NewValidationError("edge references non-existent target node")
		}
	}
	return nil
}
