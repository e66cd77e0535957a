package entities

import (
	"kgraph/domain/core/valueobjects"
	pkgerrors "kgraph/pkg/errors"
)

// NodeVisual holds visualization metadata for a node. Display size is
// derived from importance, color from the point type; the position is
// only present when layout calculation was requested at build time.
type NodeVisual struct {
	Size     float64
	Color    string
	Position *valueobjects.Position
}

// typeColors is the fixed mapping from point type to display color
var typeColors = map[PointType]string{
	PointTypeConcept:      "#4A90E2",
	PointTypeChapter:      "#7ED321",
	PointTypeProcess:      "#F5A623",
	PointTypeAPI:          "#BD10E0",
	PointTypeBestPractice: "#50E3C2",
}

// defaultNodeColor is used for point types outside the fixed mapping
const defaultNodeColor = "#9B9B9B"

// ColorForType returns the display color for a point type
func ColorForType(t PointType) string {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return defaultNodeColor
}

// SizeForImportance derives a display size from an importance score
func SizeForImportance(importance float64) float64 {
	return 0.5 + importance*1.5
}

// GraphNode is the graph representation of a knowledge point. Nodes
// are created once during a build and never mutated afterward; every
// node is backed 1:1 by the knowledge point it was built from.
type GraphNode struct {
	id          valueobjects.NodeID
	title       string
	pointType   PointType
	importance  float64
	chapterPath []string
	visual      NodeVisual
	source      KnowledgePoint
}

// NewGraphNode creates a node from a knowledge point
func NewGraphNode(point KnowledgePoint, visual NodeVisual) (*GraphNode, error) {
	id, err := valueobjects.NewNodeID(point.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("knowledge point ID cannot be empty")
	}
	if point.Importance < 0 || point.Importance > 1 {
		return nil, pkgerrors.NewValidationError("importance must be in [0,1]")
	}

	// Copy the chapter path so the node never aliases caller memory
	path := make([]string, len(point.ChapterPath))
	copy(path, point.ChapterPath)

	return &GraphNode{
		id:          id,
		title:       point.Title,
		pointType:   point.Type,
		importance:  point.Importance,
		chapterPath: path,
		visual:      visual,
		source:      point,
	}, nil
}

// ReconstructGraphNode recreates a node from stored data
func ReconstructGraphNode(
	id string,
	title string,
	pointType PointType,
	importance float64,
	chapterPath []string,
	definition string,
	visual NodeVisual,
) (*GraphNode, error) {
	return NewGraphNode(KnowledgePoint{
		ID:          id,
		Title:       title,
		Type:        pointType,
		Importance:  importance,
		ChapterPath: chapterPath,
		Definition:  definition,
	}, visual)
}

// ID returns the node's unique identifier
func (n *GraphNode) ID() valueobjects.NodeID {
	return n.id
}

// Title returns the node's title
func (n *GraphNode) Title() string {
	return n.title
}

// Type returns the node's point type
func (n *GraphNode) Type() PointType {
	return n.pointType
}

// Importance returns the node's importance score
func (n *GraphNode) Importance() float64 {
	return n.importance
}

// ChapterPath returns a copy of the node's chapter path
func (n *GraphNode) ChapterPath() []string {
	path := make([]string, len(n.chapterPath))
	copy(path, n.chapterPath)
	return path
}

// ChapterDepth returns the length of the chapter path
func (n *GraphNode) ChapterDepth() int {
	return len(n.chapterPath)
}

// Visual returns the node's visualization metadata
func (n *GraphNode) Visual() NodeVisual {
	return n.visual
}

// Source returns the originating knowledge point, for downstream
// consumers that need the full extracted content. Read-only.
func (n *GraphNode) Source() KnowledgePoint {
	return n.source
}
