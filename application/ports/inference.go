package ports

import "context"

// NodeSummary is the slice of a node sent to the relationship
// inference collaborator: enough to reason about relationships,
// nothing more.
type NodeSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	ChapterPath []string `json:"chapter_path"`
	Definition  string   `json:"definition,omitempty"`
}

// RelationshipCandidate is a raw relationship proposed by the
// collaborator. Everything here is untrusted until validated against
// the graph's node set: ids may be hallucinated, the type string is
// free-form, and the weight may be out of range.
type RelationshipCandidate struct {
	SourceID    string  `json:"source_id"`
	TargetID    string  `json:"target_id"`
	Type        string  `json:"type"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// RelationshipInferrer is the external relationship-inference
// collaborator. Implementations may call a remote model; any failure
// is a batch failure for the caller.
type RelationshipInferrer interface {
	Infer(ctx context.Context, batch []NodeSummary) ([]RelationshipCandidate, error)
}
