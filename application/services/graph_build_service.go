package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
	"kgraph/pkg/errors"
	"kgraph/pkg/observability"
)

// Build modes reported to metrics and logs.
const (
	BuildModePlain    = "plain"
	BuildModeEnriched = "enriched"
)

// GraphBuildService assembles graphs from knowledge points. Plain
// builds are synchronous and edgeless; enriched builds add inferred
// relationship edges via the coordinator.
type GraphBuildService struct {
	nodeBuilder *NodeBuilder
	coordinator *EnrichmentCoordinator
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewGraphBuildService creates a graph build service
func NewGraphBuildService(
	nodeBuilder *NodeBuilder,
	coordinator *EnrichmentCoordinator,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *GraphBuildService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphBuildService{
		nodeBuilder: nodeBuilder,
		coordinator: coordinator,
		logger:      logger,
		metrics:     metrics,
	}
}

// Build produces a graph with nodes only. It never calls out to the
// inferrer and so cannot fail on external causes.
func (s *GraphBuildService) Build(corpusID string, points []entities.KnowledgePoint, opts BuildOptions) (*aggregates.Graph, error) {
	start := time.Now()

	graph, err := s.buildPlain(corpusID, points, opts)
	s.recordBuild(BuildModePlain, err, start)
	return graph, err
}

// BuildWithEnrichment produces a graph whose edges come from the
// relationship inferrer. Any batch failure fails the whole build; when
// fallbackToPlain is set, an enrichment failure (but not a caller
// cancellation) degrades to an edgeless graph instead.
func (s *GraphBuildService) BuildWithEnrichment(ctx context.Context, corpusID string, points []entities.KnowledgePoint, opts BuildOptions, fallbackToPlain bool) (*aggregates.Graph, error) {
	start := time.Now()

	if s.coordinator == nil {
		err := errors.NewInternalError("no relationship inferrer configured")
		s.recordBuild(BuildModeEnriched, err, start)
		return nil, err
	}
	if corpusID == "" {
		err := errors.NewValidationError("corpus id cannot be empty")
		s.recordBuild(BuildModeEnriched, err, start)
		return nil, err
	}

	nodes := s.nodeBuilder.BuildNodes(points, opts)
	edges, err := s.coordinator.EnrichEdges(ctx, nodes)
	if err != nil {
		if fallbackToPlain && !errors.IsCancelled(err) {
			s.logger.Warn("enrichment failed, falling back to plain build",
				zap.String("corpus_id", corpusID),
				zap.Error(err))
			graph, perr := aggregates.NewGraph(corpusID, nodes, nil)
			s.recordBuild(BuildModeEnriched, perr, start)
			return graph, perr
		}
		s.recordBuild(BuildModeEnriched, err, start)
		return nil, err
	}

	graph, err := aggregates.NewGraph(corpusID, nodes, edges)
	if err != nil {
		s.recordBuild(BuildModeEnriched, err, start)
		return nil, err
	}

	s.logger.Info("built enriched graph",
		zap.String("corpus_id", corpusID),
		zap.Int("nodes", graph.NodeCount()),
		zap.Int("edges", graph.EdgeCount()))
	s.recordBuild(BuildModeEnriched, nil, start)
	return graph, nil
}

func (s *GraphBuildService) buildPlain(corpusID string, points []entities.KnowledgePoint, opts BuildOptions) (*aggregates.Graph, error) {
	if corpusID == "" {
		return nil, errors.NewValidationError("corpus id cannot be empty")
	}

	nodes := s.nodeBuilder.BuildNodes(points, opts)
	graph, err := aggregates.NewGraph(corpusID, nodes, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("built plain graph",
		zap.String("corpus_id", corpusID),
		zap.Int("nodes", graph.NodeCount()))
	return graph, nil
}

func (s *GraphBuildService) recordBuild(mode string, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	status := observability.BuildStatusSuccess
	switch {
	case errors.IsCancelled(err):
		status = observability.BuildStatusCancelled
	case err != nil:
		status = observability.BuildStatusFailed
	}
	s.metrics.RecordBuild(mode, status, time.Since(start))
}
