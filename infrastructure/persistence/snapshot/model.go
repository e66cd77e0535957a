package snapshot

import (
	"time"

	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
	"kgraph/domain/core/valueobjects"
	"kgraph/domain/versioning"
	"kgraph/pkg/errors"
)

// snapshotVersion is bumped when the on-disk shape changes in a way
// old readers cannot handle.
const snapshotVersion = 1

// GraphSnapshot is the serialized form of a graph. The same shape is
// written as JSON by the file store and marshaled to attribute values
// by the DynamoDB store.
type GraphSnapshot struct {
	Version   int            `json:"version" dynamodbav:"Version"`
	GraphID   string         `json:"graph_id" dynamodbav:"GraphID"`
	CorpusID  string         `json:"corpus_id" dynamodbav:"CorpusID"`
	Checksum  string         `json:"checksum,omitempty" dynamodbav:"Checksum,omitempty"`
	Nodes     []NodeSnapshot `json:"nodes" dynamodbav:"Nodes"`
	Edges     []EdgeSnapshot `json:"edges" dynamodbav:"Edges"`
	CreatedAt time.Time      `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt time.Time      `json:"updated_at" dynamodbav:"UpdatedAt"`
}

// NodeSnapshot is the serialized form of a graph node
type NodeSnapshot struct {
	ID          string        `json:"id" dynamodbav:"ID"`
	Title       string        `json:"title" dynamodbav:"Title"`
	Type        string        `json:"type" dynamodbav:"Type"`
	Importance  float64       `json:"importance" dynamodbav:"Importance"`
	ChapterPath []string      `json:"chapter_path,omitempty" dynamodbav:"ChapterPath,omitempty"`
	Definition  string        `json:"definition,omitempty" dynamodbav:"Definition,omitempty"`
	Size        float64       `json:"size" dynamodbav:"Size"`
	Color       string        `json:"color" dynamodbav:"Color"`
	Position    *PositionSnap `json:"position,omitempty" dynamodbav:"Position,omitempty"`
}

// PositionSnap is the serialized node position
type PositionSnap struct {
	X float64 `json:"x" dynamodbav:"X"`
	Y float64 `json:"y" dynamodbav:"Y"`
}

// EdgeSnapshot is the serialized form of a graph edge
type EdgeSnapshot struct {
	ID          string  `json:"id" dynamodbav:"ID"`
	SourceID    string  `json:"source_id" dynamodbav:"SourceID"`
	TargetID    string  `json:"target_id" dynamodbav:"TargetID"`
	Type        string  `json:"type" dynamodbav:"Type"`
	Weight      float64 `json:"weight" dynamodbav:"Weight"`
	Description string  `json:"description,omitempty" dynamodbav:"Description,omitempty"`
}

// FromGraph converts a graph aggregate into its snapshot form
func FromGraph(graph *aggregates.Graph) *GraphSnapshot {
	nodes := graph.Nodes()
	edges := graph.Edges()

	snap := &GraphSnapshot{
		Version:   snapshotVersion,
		GraphID:   graph.ID().String(),
		CorpusID:  graph.CorpusID(),
		Nodes:     make([]NodeSnapshot, 0, len(nodes)),
		Edges:     make([]EdgeSnapshot, 0, len(edges)),
		CreatedAt: graph.CreatedAt(),
		UpdatedAt: graph.UpdatedAt(),
	}

	for _, n := range nodes {
		snap.Nodes = append(snap.Nodes, FromNode(n))
	}
	for _, e := range edges {
		snap.Edges = append(snap.Edges, FromEdge(e))
	}
	snap.Checksum = versioning.Checksum(graph)

	return snap
}

// FromNode converts a single node into its snapshot form
func FromNode(n *entities.GraphNode) NodeSnapshot {
	visual := n.Visual()
	ns := NodeSnapshot{
		ID:          n.ID().String(),
		Title:       n.Title(),
		Type:        string(n.Type()),
		Importance:  n.Importance(),
		ChapterPath: n.ChapterPath(),
		Definition:  n.Source().Definition,
		Size:        visual.Size,
		Color:       visual.Color,
	}
	if visual.Position != nil {
		ns.Position = &PositionSnap{X: visual.Position.X, Y: visual.Position.Y}
	}
	return ns
}

// FromEdge converts a single edge into its snapshot form
func FromEdge(e *entities.GraphEdge) EdgeSnapshot {
	return EdgeSnapshot{
		ID:          e.ID,
		SourceID:    e.SourceID.String(),
		TargetID:    e.TargetID.String(),
		Type:        e.Type.String(),
		Weight:      e.Weight,
		Description: e.Description,
	}
}

// ToGraph rebuilds a graph aggregate from its snapshot form
func (s *GraphSnapshot) ToGraph() (*aggregates.Graph, error) {
	if s.Version > snapshotVersion {
		return nil, errors.NewPersistenceError("decode snapshot",
			errors.NewValidationError("snapshot version is newer than this binary supports"))
	}

	nodes := make([]*entities.GraphNode, 0, len(s.Nodes))
	for _, ns := range s.Nodes {
		visual := entities.NodeVisual{Size: ns.Size, Color: ns.Color}
		if ns.Position != nil {
			pos := valueobjects.NewPosition(ns.Position.X, ns.Position.Y)
			visual.Position = &pos
		}
		node, err := entities.ReconstructGraphNode(
			ns.ID, ns.Title, entities.PointType(ns.Type), ns.Importance, ns.ChapterPath, ns.Definition, visual)
		if err != nil {
			return nil, errors.Wrap(err, "invalid node in snapshot")
		}
		nodes = append(nodes, node)
	}

	edges := make([]*entities.GraphEdge, 0, len(s.Edges))
	for _, es := range s.Edges {
		edge, err := reconstructEdge(es)
		if err != nil {
			return nil, errors.Wrap(err, "invalid edge in snapshot")
		}
		edges = append(edges, edge)
	}

	graph, err := aggregates.ReconstructGraph(
		aggregates.GraphID(s.GraphID), s.CorpusID, nodes, edges, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if !versioning.Verify(graph, s.Checksum) {
		return nil, errors.NewPersistenceError("decode snapshot",
			errors.NewValidationError("snapshot checksum mismatch"))
	}
	return graph, nil
}

func reconstructEdge(es EdgeSnapshot) (*entities.GraphEdge, error) {
	source, err := valueobjects.NewNodeID(es.SourceID)
	if err != nil {
		return nil, err
	}
	target, err := valueobjects.NewNodeID(es.TargetID)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructGraphEdge(
		es.ID, source, target, valueobjects.ParseRelationType(es.Type), es.Weight, es.Description)
}
