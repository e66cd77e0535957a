package ports

import (
	"context"

	"kgraph/domain/core/aggregates"
)

// GraphStore persists built graphs keyed by corpus identifier.
// Snapshots are whole-graph: Save overwrites any prior snapshot for
// the same corpus, and a failed write must leave the previous
// snapshot intact. Load returns a not-found error (pkg/errors
// NOT_FOUND) when no snapshot exists, which callers must distinguish
// from an I/O failure.
type GraphStore interface {
	Save(ctx context.Context, graph *aggregates.Graph) error
	Load(ctx context.Context, corpusID string) (*aggregates.Graph, error)
	Exists(ctx context.Context, corpusID string) (bool, error)
	Delete(ctx context.Context, corpusID string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
}
