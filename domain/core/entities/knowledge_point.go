package entities

// PointType classifies a knowledge point
type PointType string

const (
	PointTypeConcept      PointType = "concept"
	PointTypeChapter      PointType = "chapter"
	PointTypeProcess      PointType = "process"
	PointTypeAPI          PointType = "api"
	PointTypeBestPractice PointType = "best-practice"
)

// KnowledgePoint is an atomic unit of learnable content extracted from
// source material by the upstream extraction pipeline. It is read-only
// input to the graph engine and is never mutated here.
type KnowledgePoint struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        PointType `json:"type"`
	Importance  float64   `json:"importance"`
	ChapterPath []string  `json:"chapter_path"`
	Definition  string    `json:"definition,omitempty"`
}
