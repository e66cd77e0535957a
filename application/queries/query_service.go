package queries

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
	"kgraph/domain/core/valueobjects"
	"kgraph/pkg/errors"
	"kgraph/pkg/observability"
)

// GraphView is a read-only slice of a graph returned by search and
// neighbor queries.
type GraphView struct {
	Nodes      []*entities.GraphNode `json:"nodes"`
	Edges      []*entities.GraphEdge `json:"edges"`
	TotalNodes int                   `json:"total_nodes"`
	TotalEdges int                   `json:"total_edges"`
}

// Similarity heuristic weights. The score is a hand-tuned blend, not
// an embedding distance.
const (
	similarityTypeWeight       = 0.3
	similarityChapterWeight    = 0.4
	similarityImportanceWeight = 0.3
)

// QueryService answers read-only questions about a graph. All
// operations are pure over the graph they receive; unknown ids yield
// empty results rather than errors, matching the lookup-miss-tolerant
// style of the search operations.
type QueryService struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewQueryService creates a query service
func NewQueryService(logger *zap.Logger, metrics *observability.Metrics) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{logger: logger, metrics: metrics}
}

// Subgraph returns a new graph containing every node reachable from
// root within depth hops, edges treated as undirected, plus every edge
// whose both endpoints made it into that node set. An unknown root
// yields an empty graph.
func (s *QueryService) Subgraph(graph *aggregates.Graph, rootID string, depth int) (*aggregates.Graph, error) {
	defer s.record("subgraph", time.Now())

	root, err := valueobjects.NewNodeID(rootID)
	if err != nil {
		return nil, err
	}
	if depth < 0 {
		return nil, errors.NewValidationError("depth cannot be negative")
	}

	if !graph.HasNode(root) {
		return aggregates.NewGraph(graph.CorpusID(), nil, nil)
	}

	type frontierEntry struct {
		id    valueobjects.NodeID
		depth int
	}

	visited := map[valueobjects.NodeID]int{root: 0}
	queue := []frontierEntry{{id: root, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= depth {
			continue
		}
		for _, edge := range graph.IncidentEdges(current.id) {
			next := edge.Other(current.id)
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = current.depth + 1
			queue = append(queue, frontierEntry{id: next, depth: current.depth + 1})
		}
	}

	nodes := make([]*entities.GraphNode, 0, len(visited))
	for _, n := range graph.Nodes() {
		if _, ok := visited[n.ID()]; ok {
			nodes = append(nodes, n)
		}
	}

	// Endpoint membership is the final authority on edge inclusion,
	// regardless of the order traversal reached the endpoints.
	var edges []*entities.GraphEdge
	for _, e := range graph.Edges() {
		if _, ok := visited[e.SourceID]; !ok {
			continue
		}
		if _, ok := visited[e.TargetID]; !ok {
			continue
		}
		edges = append(edges, e)
	}

	return aggregates.NewGraph(graph.CorpusID(), nodes, edges)
}

// SearchNodes matches query case-insensitively against node titles and
// chapter path entries, ranks matches by importance descending, and
// truncates to maxResults. Edges with at least one matched endpoint
// are included and are not subject to the result cap.
func (s *QueryService) SearchNodes(graph *aggregates.Graph, query string, maxResults int) (*GraphView, error) {
	defer s.record("search", time.Now())

	if strings.TrimSpace(query) == "" {
		return nil, errors.NewValidationError("search query cannot be empty")
	}
	if maxResults <= 0 {
		return nil, errors.NewValidationError("max results must be positive")
	}

	needle := strings.ToLower(query)
	var matched []*entities.GraphNode
	for _, n := range graph.Nodes() {
		if nodeMatches(n, needle) {
			matched = append(matched, n)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Importance() > matched[j].Importance()
	})
	if len(matched) > maxResults {
		matched = matched[:maxResults]
	}

	inResult := make(map[valueobjects.NodeID]struct{}, len(matched))
	for _, n := range matched {
		inResult[n.ID()] = struct{}{}
	}

	var edges []*entities.GraphEdge
	for _, e := range graph.Edges() {
		_, srcIn := inResult[e.SourceID]
		_, dstIn := inResult[e.TargetID]
		if srcIn || dstIn {
			edges = append(edges, e)
		}
	}

	return &GraphView{
		Nodes:      matched,
		Edges:      edges,
		TotalNodes: len(matched),
		TotalEdges: len(edges),
	}, nil
}

// Neighbors returns the strongest maxNeighbors edges incident to the
// given node, plus the distinct neighbor nodes they reach. An unknown
// node or one with no edges yields an empty view.
func (s *QueryService) Neighbors(graph *aggregates.Graph, nodeID string, maxNeighbors int) (*GraphView, error) {
	defer s.record("neighbors", time.Now())

	id, err := valueobjects.NewNodeID(nodeID)
	if err != nil {
		return nil, err
	}
	if maxNeighbors <= 0 {
		return nil, errors.NewValidationError("max neighbors must be positive")
	}

	incident := graph.IncidentEdges(id)
	sort.SliceStable(incident, func(i, j int) bool {
		return incident[i].Weight > incident[j].Weight
	})
	if len(incident) > maxNeighbors {
		incident = incident[:maxNeighbors]
	}

	seen := make(map[valueobjects.NodeID]struct{}, len(incident))
	var nodes []*entities.GraphNode
	for _, e := range incident {
		other := e.Other(id)
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		if n, ok := graph.NodeByID(other); ok {
			nodes = append(nodes, n)
		}
	}

	return &GraphView{
		Nodes:      nodes,
		Edges:      incident,
		TotalNodes: len(nodes),
		TotalEdges: len(incident),
	}, nil
}

// Similarity scores two nodes in [0, 1] from type match, chapter path
// overlap, and importance proximity. The score is symmetric and a
// node compared with itself scores 1.
func (s *QueryService) Similarity(a, b *entities.GraphNode) float64 {
	if a.ID().Equals(b.ID()) {
		return 1.0
	}

	score := 0.0
	if a.Type() == b.Type() {
		score += similarityTypeWeight
	}
	score += similarityChapterWeight * chapterOverlap(a.ChapterPath(), b.ChapterPath())

	diff := a.Importance() - b.Importance()
	if diff < 0 {
		diff = -diff
	}
	score += similarityImportanceWeight * (1 - diff)

	if score > 1 {
		score = 1
	}
	return score
}

// chapterOverlap counts distinct entries present in both paths over
// the longer path's length. Two empty paths overlap not at all.
func chapterOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, entry := range a {
		setA[entry] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	common := 0
	for _, entry := range b {
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		if _, ok := setA[entry]; ok {
			common++
		}
	}

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(common) / float64(longer)
}

func nodeMatches(n *entities.GraphNode, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title()), needle) {
		return true
	}
	for _, entry := range n.ChapterPath() {
		if strings.Contains(strings.ToLower(entry), needle) {
			return true
		}
	}
	return false
}

func (s *QueryService) record(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordQuery(op, time.Since(start))
	}
}
