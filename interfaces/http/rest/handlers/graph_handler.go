package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/application/services"
	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
	"kgraph/infrastructure/persistence/snapshot"
	"kgraph/pkg/common"
	"kgraph/pkg/errors"
	"kgraph/pkg/utils"
)

// maxBuildBodyBytes bounds build request bodies; corpora are large
// but not unbounded.
const maxBuildBodyBytes = 16 << 20

// GraphHandler serves graph build and snapshot lifecycle endpoints
type GraphHandler struct {
	builder *services.GraphBuildService
	store   ports.GraphStore
	logger  *zap.Logger
}

// NewGraphHandler creates a graph handler
func NewGraphHandler(builder *services.GraphBuildService, store ports.GraphStore, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		builder: builder,
		store:   store,
		logger:  logger,
	}
}

// BuildGraphRequest is the payload for POST /graphs
type BuildGraphRequest struct {
	CorpusID string              `json:"corpus_id" validate:"required"`
	Points   []KnowledgePointDTO `json:"points" validate:"required,min=1,dive"`
	Options  *BuildOptionsDTO    `json:"options,omitempty"`
	Enrich   bool                `json:"enrich"`
	Fallback bool                `json:"fallback_to_plain"`
}

// KnowledgePointDTO is the wire form of a knowledge point
type KnowledgePointDTO struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Type        string   `json:"type" validate:"required,oneof=concept chapter process api best-practice"`
	Importance  float64  `json:"importance" validate:"gte=0,lte=1"`
	ChapterPath []string `json:"chapter_path,omitempty"`
	Definition  string   `json:"definition,omitempty"`
}

// BuildOptionsDTO is the wire form of build options
type BuildOptionsDTO struct {
	IncludeChapterNodes    *bool    `json:"include_chapter_nodes,omitempty"`
	MinImportance          *float64 `json:"min_importance,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxNodes               *int     `json:"max_nodes,omitempty" validate:"omitempty,gte=0"`
	CalculateNodePositions *bool    `json:"calculate_node_positions,omitempty"`
}

// BuildGraphResponse summarizes a completed build
type BuildGraphResponse struct {
	GraphID   string `json:"graph_id"`
	CorpusID  string `json:"corpus_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	Enriched  bool   `json:"enriched"`
}

// BuildGraph handles POST /graphs: build a graph from knowledge
// points and persist its snapshot.
func (h *GraphHandler) BuildGraph(w http.ResponseWriter, r *http.Request) {
	var req BuildGraphRequest
	if err := common.ParseJSONBody(r, &req, maxBuildBodyBytes); err != nil {
		common.RespondAppError(w, errors.NewValidationError("malformed request body").WithCause(err))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	points := make([]entities.KnowledgePoint, len(req.Points))
	for i, p := range req.Points {
		points[i] = entities.KnowledgePoint{
			ID:          p.ID,
			Title:       p.Title,
			Type:        entities.PointType(p.Type),
			Importance:  p.Importance,
			ChapterPath: p.ChapterPath,
			Definition:  p.Definition,
		}
	}

	opts := services.DefaultBuildOptions()
	if req.Options != nil {
		if req.Options.IncludeChapterNodes != nil {
			opts.IncludeChapterNodes = *req.Options.IncludeChapterNodes
		}
		if req.Options.MinImportance != nil {
			opts.MinImportance = *req.Options.MinImportance
		}
		if req.Options.MaxNodes != nil {
			opts.MaxNodes = *req.Options.MaxNodes
		}
		if req.Options.CalculateNodePositions != nil {
			opts.CalculateNodePositions = *req.Options.CalculateNodePositions
		}
	}

	var graph *aggregates.Graph
	var err error
	if req.Enrich {
		graph, err = h.builder.BuildWithEnrichment(r.Context(), req.CorpusID, points, opts, req.Fallback)
	} else {
		graph, err = h.builder.Build(req.CorpusID, points, opts)
	}
	if err != nil {
		h.logger.Error("graph build failed",
			zap.String("corpus_id", req.CorpusID),
			zap.Bool("enrich", req.Enrich),
			zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	if err := h.store.Save(r.Context(), graph); err != nil {
		h.logger.Error("snapshot save failed",
			zap.String("corpus_id", req.CorpusID),
			zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, BuildGraphResponse{
		GraphID:   graph.ID().String(),
		CorpusID:  graph.CorpusID(),
		NodeCount: graph.NodeCount(),
		EdgeCount: graph.EdgeCount(),
		Enriched:  req.Enrich && graph.EdgeCount() > 0,
	})
}

// GetGraph handles GET /graphs/{corpusID}: load a stored snapshot
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	corpusID := chi.URLParam(r, "corpusID")
	if corpusID == "" {
		common.RespondAppError(w, errors.NewValidationError("corpus id is required"))
		return
	}

	graph, err := h.store.Load(r.Context(), corpusID)
	if err != nil {
		if !errors.IsNotFound(err) {
			h.logger.Error("snapshot load failed",
				zap.String("corpus_id", corpusID),
				zap.Error(err))
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, snapshot.FromGraph(graph))
}

// DeleteGraph handles DELETE /graphs/{corpusID}
func (h *GraphHandler) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	corpusID := chi.URLParam(r, "corpusID")
	if corpusID == "" {
		common.RespondAppError(w, errors.NewValidationError("corpus id is required"))
		return
	}

	removed, err := h.store.Delete(r.Context(), corpusID)
	if err != nil {
		h.logger.Error("snapshot delete failed",
			zap.String("corpus_id", corpusID),
			zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	if !removed {
		common.RespondAppError(w, errors.NewNotFoundError("graph for corpus "+corpusID))
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]any{"deleted": corpusID})
}

// ListGraphs handles GET /graphs: list stored corpus keys
func (h *GraphHandler) ListGraphs(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListKeys(r.Context())
	if err != nil {
		h.logger.Error("snapshot list failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]any{"graphs": keys, "count": len(keys)})
}
