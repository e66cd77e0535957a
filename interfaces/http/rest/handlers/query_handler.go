package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/application/queries"
	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
	"kgraph/domain/core/valueobjects"
	"kgraph/infrastructure/config"
	"kgraph/infrastructure/persistence/snapshot"
	"kgraph/pkg/common"
	"kgraph/pkg/errors"
)

// LimitsProvider exposes the request limits in effect. Implemented by
// the hot-reloading limits watcher; the static fallback returns
// defaults.
type LimitsProvider interface {
	Current() config.Limits
}

// StaticLimits is a LimitsProvider with fixed limits
type StaticLimits struct {
	Limits config.Limits
}

// Current returns the fixed limits
func (s StaticLimits) Current() config.Limits {
	return s.Limits
}

// QueryHandler serves read-only graph query endpoints. Each request
// loads the corpus snapshot and runs a pure query over it.
type QueryHandler struct {
	store   ports.GraphStore
	queries *queries.QueryService
	limits  LimitsProvider
	logger  *zap.Logger
}

// NewQueryHandler creates a query handler
func NewQueryHandler(store ports.GraphStore, qs *queries.QueryService, limits LimitsProvider, logger *zap.Logger) *QueryHandler {
	if limits == nil {
		limits = StaticLimits{Limits: config.DefaultLimits()}
	}
	return &QueryHandler{
		store:   store,
		queries: qs,
		limits:  limits,
		logger:  logger,
	}
}

// GraphViewResponse is the wire form of a query result slice
type GraphViewResponse struct {
	Nodes      []snapshot.NodeSnapshot `json:"nodes"`
	Edges      []snapshot.EdgeSnapshot `json:"edges"`
	TotalNodes int                     `json:"total_nodes"`
	TotalEdges int                     `json:"total_edges"`
}

func viewResponse(view *queries.GraphView) GraphViewResponse {
	resp := GraphViewResponse{
		Nodes:      make([]snapshot.NodeSnapshot, 0, len(view.Nodes)),
		Edges:      make([]snapshot.EdgeSnapshot, 0, len(view.Edges)),
		TotalNodes: view.TotalNodes,
		TotalEdges: view.TotalEdges,
	}
	for _, n := range view.Nodes {
		resp.Nodes = append(resp.Nodes, snapshot.FromNode(n))
	}
	for _, e := range view.Edges {
		resp.Edges = append(resp.Edges, snapshot.FromEdge(e))
	}
	return resp
}

// Subgraph handles GET /graphs/{corpusID}/subgraph?root=&depth=
func (h *QueryHandler) Subgraph(w http.ResponseWriter, r *http.Request) {
	graph, ok := h.loadGraph(w, r)
	if !ok {
		return
	}

	root := r.URL.Query().Get("root")
	if root == "" {
		common.RespondAppError(w, errors.NewValidationError("root query parameter is required"))
		return
	}
	depth, err := intParam(r, "depth", 1)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if max := h.limits.Current().MaxSubgraphDepth; depth > max {
		depth = max
	}

	sub, err := h.queries.Subgraph(graph, root, depth)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, snapshot.FromGraph(sub))
}

// Search handles GET /graphs/{corpusID}/search?q=&limit=
func (h *QueryHandler) Search(w http.ResponseWriter, r *http.Request) {
	graph, ok := h.loadGraph(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if max := h.limits.Current().MaxSearchResults; limit > max {
		limit = max
	}

	view, err := h.queries.SearchNodes(graph, query, limit)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, viewResponse(view))
}

// Neighbors handles GET /graphs/{corpusID}/neighbors?node=&limit=
func (h *QueryHandler) Neighbors(w http.ResponseWriter, r *http.Request) {
	graph, ok := h.loadGraph(w, r)
	if !ok {
		return
	}

	node := r.URL.Query().Get("node")
	if node == "" {
		common.RespondAppError(w, errors.NewValidationError("node query parameter is required"))
		return
	}
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if max := h.limits.Current().MaxNeighbors; limit > max {
		limit = max
	}

	view, err := h.queries.Neighbors(graph, node, limit)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, viewResponse(view))
}

// SimilarityResponse is the wire form of a similarity score
type SimilarityResponse struct {
	NodeA string  `json:"node_a"`
	NodeB string  `json:"node_b"`
	Score float64 `json:"score"`
}

// Similarity handles GET /graphs/{corpusID}/similarity?a=&b=
func (h *QueryHandler) Similarity(w http.ResponseWriter, r *http.Request) {
	graph, ok := h.loadGraph(w, r)
	if !ok {
		return
	}

	aID := r.URL.Query().Get("a")
	bID := r.URL.Query().Get("b")
	if aID == "" || bID == "" {
		common.RespondAppError(w, errors.NewValidationError("a and b query parameters are required"))
		return
	}

	nodeA, ok := h.nodeByID(w, graph, aID)
	if !ok {
		return
	}
	nodeB, ok := h.nodeByID(w, graph, bID)
	if !ok {
		return
	}

	common.RespondJSON(w, http.StatusOK, SimilarityResponse{
		NodeA: aID,
		NodeB: bID,
		Score: h.queries.Similarity(nodeA, nodeB),
	})
}

func (h *QueryHandler) loadGraph(w http.ResponseWriter, r *http.Request) (*aggregates.Graph, bool) {
	corpusID := chi.URLParam(r, "corpusID")
	if corpusID == "" {
		common.RespondAppError(w, errors.NewValidationError("corpus id is required"))
		return nil, false
	}

	graph, err := h.store.Load(r.Context(), corpusID)
	if err != nil {
		if !errors.IsNotFound(err) {
			h.logger.Error("snapshot load failed",
				zap.String("corpus_id", corpusID),
				zap.Error(err))
		}
		common.RespondAppError(w, err)
		return nil, false
	}
	return graph, true
}

func (h *QueryHandler) nodeByID(w http.ResponseWriter, graph *aggregates.Graph, raw string) (*entities.GraphNode, bool) {
	id, err := valueobjects.NewNodeID(raw)
	if err != nil {
		common.RespondAppError(w, err)
		return nil, false
	}
	n, found := graph.NodeByID(id)
	if !found {
		common.RespondAppError(w, errors.NewNotFoundError("node "+raw))
		return nil, false
	}
	return n, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(name + " must be an integer")
	}
	return v, nil
}
