package services

// BuildOptions configures a graph build. Zero values are not useful
// defaults for every field, so callers should start from
// DefaultBuildOptions and override.
type BuildOptions struct {
	// IncludeChapterNodes controls whether chapter-type knowledge
	// points become nodes.
	IncludeChapterNodes bool `json:"include_chapter_nodes"`

	// MinImportance excludes points below this importance before
	// building.
	MinImportance float64 `json:"min_importance" validate:"gte=0,lte=1"`

	// MaxNodes caps the graph size; when exceeded after filtering,
	// the top-N points by importance are kept.
	MaxNodes int `json:"max_nodes" validate:"gte=0"`

	// CalculateNodePositions controls whether a layout position is
	// computed per node for visualization.
	CalculateNodePositions bool `json:"calculate_node_positions"`

	// AddDefaultRelations is a reserved toggle carried for the
	// calling layer; it does not gate enrichment behavior.
	AddDefaultRelations bool `json:"add_default_relations"`
}

// DefaultBuildOptions returns the standard build configuration
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		IncludeChapterNodes:    true,
		MinImportance:          0.0,
		MaxNodes:               1000,
		CalculateNodePositions: true,
		AddDefaultRelations:    true,
	}
}
