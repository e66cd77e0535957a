package entities

import (
	"github.com/google/uuid"

	"kgraph/domain/core/valueobjects"
	pkgerrors "kgraph/pkg/errors"
)

// Edge weight bounds. Candidate weights from the inference
// collaborator are clamped into this range on construction.
const (
	MinEdgeWeight = 0.3
	MaxEdgeWeight = 1.0
)

// GraphEdge represents a typed, weighted, directed relationship
// between two nodes of the same graph.
type GraphEdge struct {
	ID          string
	SourceID    valueobjects.NodeID
	TargetID    valueobjects.NodeID
	Type        valueobjects.RelationType
	Weight      float64
	Description string
}

// NewGraphEdge creates an edge with a generated identifier. Endpoint
// existence is validated at the graph level, not here.
func NewGraphEdge(
	sourceID, targetID valueobjects.NodeID,
	relType valueobjects.RelationType,
	weight float64,
	description string,
) (*GraphEdge, error) {
	if sourceID.IsZero() || targetID.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	if !relType.IsValid() {
		relType = valueobjects.RelationRelated
	}

	return &GraphEdge{
		ID:          uuid.New().String(),
		SourceID:    sourceID,
		TargetID:    targetID,
		Type:        relType,
		Weight:      ClampEdgeWeight(weight),
		Description: description,
	}, nil
}

// ReconstructGraphEdge recreates an edge from stored data, keeping
// its original identifier.
func ReconstructGraphEdge(
	id string,
	sourceID, targetID valueobjects.NodeID,
	relType valueobjects.RelationType,
	weight float64,
	description string,
) (*GraphEdge, error) {
	edge, err := NewGraphEdge(sourceID, targetID, relType, weight, description)
	if err != nil {
		return nil, err
	}
	if id != "" {
		edge.ID = id
	}
	return edge, nil
}

// ClampEdgeWeight clamps a weight into [MinEdgeWeight, MaxEdgeWeight]
func ClampEdgeWeight(w float64) float64 {
	if w < MinEdgeWeight {
		return MinEdgeWeight
	}
	if w > MaxEdgeWeight {
		return MaxEdgeWeight
	}
	return w
}

// Incident reports whether the edge touches the given node
func (e *GraphEdge) Incident(id valueobjects.NodeID) bool {
	return e.SourceID.Equals(id) || e.TargetID.Equals(id)
}

// Other returns the endpoint opposite to the given node. For a
// self-loop it returns the node itself.
func (e *GraphEdge) Other(id valueobjects.NodeID) valueobjects.NodeID {
	if e.SourceID.Equals(id) {
		return e.TargetID
	}
	return e.SourceID
}
