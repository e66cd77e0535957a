package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kgraph/application/ports"
	"kgraph/domain/core/entities"
	"kgraph/domain/core/valueobjects"
	"kgraph/pkg/errors"
	"kgraph/pkg/observability"
)

const (
	// DefaultBatchSize is the number of nodes sent to the inferrer
	// per request.
	DefaultBatchSize = 20

	// DefaultBatchConcurrency bounds concurrent inference requests.
	DefaultBatchConcurrency = 4
)

// EnrichmentCoordinator fans node batches out to a relationship
// inferrer and validates, normalizes, and merges the candidates it
// returns into graph edges.
type EnrichmentCoordinator struct {
	inferrer    ports.RelationshipInferrer
	batchSize   int
	concurrency int
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewEnrichmentCoordinator creates a coordinator. batchSize and
// concurrency fall back to defaults when non-positive.
func NewEnrichmentCoordinator(
	inferrer ports.RelationshipInferrer,
	batchSize int,
	concurrency int,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *EnrichmentCoordinator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichmentCoordinator{
		inferrer:    inferrer,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// EnrichEdges infers relationship edges for the given nodes. Batches
// run concurrently under a shared context; the first failing batch
// cancels the rest and fails the whole enrichment. The merged edge
// order follows batch order, so the result is deterministic for a
// given inferrer output.
func (c *EnrichmentCoordinator) EnrichEdges(ctx context.Context, nodes []*entities.GraphNode) ([]*entities.GraphEdge, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	known := make(map[string]*entities.GraphNode, len(nodes))
	for _, n := range nodes {
		known[n.ID().String()] = n
	}

	batches := splitBatches(nodes, c.batchSize)
	results := make([][]*entities.GraphEdge, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, batch := range batches {
		g.Go(func() error {
			edges, err := c.enrichBatch(gctx, batch, known)
			if err != nil {
				return err
			}
			results[i] = edges
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []*entities.GraphEdge
	for _, edges := range results {
		merged = append(merged, edges...)
	}
	return merged, nil
}

// enrichBatch runs one inference call and converts its candidates to
// validated edges.
func (c *EnrichmentCoordinator) enrichBatch(ctx context.Context, batch []*entities.GraphNode, known map[string]*entities.GraphNode) ([]*entities.GraphEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelledError("enrichment cancelled before batch start")
	}

	summaries := make([]ports.NodeSummary, len(batch))
	for i, n := range batch {
		summaries[i] = ports.NodeSummary{
			ID:          n.ID().String(),
			Title:       n.Title(),
			Type:        string(n.Type()),
			ChapterPath: n.ChapterPath(),
			Definition:  n.Source().Definition,
		}
	}

	candidates, err := c.inferrer.Infer(ctx, summaries)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordBatch(false)
		}
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError("enrichment cancelled during inference").WithCause(err)
		}
		return nil, errors.NewEnrichmentError(fmt.Sprintf("inference failed for batch of %d nodes", len(batch))).WithCause(err)
	}

	edges := c.validateCandidates(batch, candidates, known)
	if c.metrics != nil {
		c.metrics.RecordBatch(len(edges) > 0)
		c.metrics.RecordCandidates(len(edges), len(candidates)-len(edges))
	}
	if len(edges) == 0 {
		ids := make([]string, len(batch))
		for i, n := range batch {
			ids[i] = n.ID().String()
		}
		return nil, errors.NewEnrichmentError(
			fmt.Sprintf("batch yielded no usable relationships from %d candidates", len(candidates)),
		).WithDetails(map[string]any{
			"batch_nodes":    ids,
			"raw_candidates": len(candidates),
		})
	}

	return edges, nil
}

// validateCandidates drops candidates that reference unknown nodes or
// form self-loops, clamps weights into [0, 1], and builds edges.
// Dropped candidates are logged, not fatal; the zero-edge check is the
// caller's concern.
func (c *EnrichmentCoordinator) validateCandidates(batch []*entities.GraphNode, candidates []ports.RelationshipCandidate, known map[string]*entities.GraphNode) []*entities.GraphEdge {
	edges := make([]*entities.GraphEdge, 0, len(candidates))
	for _, cand := range candidates {
		if cand.SourceID == cand.TargetID {
			c.dropCandidate(cand, "self loop")
			continue
		}
		if _, ok := known[cand.SourceID]; !ok {
			c.dropCandidate(cand, "unknown source node")
			continue
		}
		if _, ok := known[cand.TargetID]; !ok {
			c.dropCandidate(cand, "unknown target node")
			continue
		}

		weight := cand.Weight
		if weight < 0 {
			weight = 0
		}
		if weight > 1 {
			weight = 1
		}

		sourceID, err := valueobjects.NewNodeID(cand.SourceID)
		if err != nil {
			c.dropCandidate(cand, "invalid source id")
			continue
		}
		targetID, err := valueobjects.NewNodeID(cand.TargetID)
		if err != nil {
			c.dropCandidate(cand, "invalid target id")
			continue
		}

		edge, err := entities.NewGraphEdge(sourceID, targetID, valueobjects.ParseRelationType(cand.Type), weight, cand.Description)
		if err != nil {
			c.dropCandidate(cand, err.Error())
			continue
		}
		edges = append(edges, edge)
	}
	return edges
}

func (c *EnrichmentCoordinator) dropCandidate(cand ports.RelationshipCandidate, reason string) {
	c.logger.Warn("dropping relationship candidate",
		zap.String("source", cand.SourceID),
		zap.String("target", cand.TargetID),
		zap.String("type", cand.Type),
		zap.String("reason", reason))
}

// splitBatches partitions nodes into contiguous batches preserving
// input order.
func splitBatches(nodes []*entities.GraphNode, size int) [][]*entities.GraphNode {
	var batches [][]*entities.GraphNode
	for start := 0; start < len(nodes); start += size {
		end := start + size
		if end > len(nodes) {
			end = len(nodes)
		}
		batches = append(batches, nodes[start:end])
	}
	return batches
}
