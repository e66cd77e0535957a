package services

import (
	"sort"

	"go.uber.org/zap"

	"kgraph/domain/core/entities"
	"kgraph/domain/core/valueobjects"
)

// Layout spacing constants for the deterministic grid layout.
const (
	layoutColumnWidth = 220.0
	layoutRowHeight   = 120.0
	layoutRowWidth    = 8
)

// NodeBuilder turns raw knowledge points into graph nodes, applying
// filtering, capping, and visual attribute assignment.
type NodeBuilder struct {
	logger *zap.Logger
}

// NewNodeBuilder creates a node builder
func NewNodeBuilder(logger *zap.Logger) *NodeBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NodeBuilder{logger: logger}
}

// BuildNodes applies the option pipeline to the input points and
// returns the resulting nodes. Order of surviving points is preserved
// except where the MaxNodes cap reorders by importance.
func (b *NodeBuilder) BuildNodes(points []entities.KnowledgePoint, opts BuildOptions) []*entities.GraphNode {
	filtered := make([]entities.KnowledgePoint, 0, len(points))
	for _, p := range points {
		if p.Importance < opts.MinImportance {
			continue
		}
		if !opts.IncludeChapterNodes && p.Type == entities.PointTypeChapter {
			continue
		}
		filtered = append(filtered, p)
	}

	if opts.MaxNodes > 0 && len(filtered) > opts.MaxNodes {
		// Stable sort keeps input order among equal importances, so
		// the cap is deterministic for a given input.
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Importance > filtered[j].Importance
		})
		dropped := len(filtered) - opts.MaxNodes
		filtered = filtered[:opts.MaxNodes]
		b.logger.Debug("node cap applied",
			zap.Int("kept", len(filtered)),
			zap.Int("dropped", dropped))
	}

	nodes := make([]*entities.GraphNode, 0, len(filtered))
	for i, p := range filtered {
		visual := entities.NodeVisual{
			Size:  entities.SizeForImportance(p.Importance),
			Color: entities.ColorForType(p.Type),
		}
		if opts.CalculateNodePositions {
			pos := layoutPosition(p, i)
			visual.Position = &pos
		}
		node, err := entities.NewGraphNode(p, visual)
		if err != nil {
			b.logger.Warn("skipping invalid knowledge point",
				zap.String("point_id", p.ID),
				zap.Error(err))
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// layoutPosition places nodes on a grid where x grows with chapter
// depth and y cycles through rows, keeping siblings visually close.
func layoutPosition(p entities.KnowledgePoint, index int) valueobjects.Position {
	depth := len(p.ChapterPath)
	x := float64(depth) * layoutColumnWidth
	y := float64(index%layoutRowWidth)*layoutRowHeight + float64(index/layoutRowWidth)*layoutRowHeight*0.25
	return valueobjects.NewPosition(x, y)
}
