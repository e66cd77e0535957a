package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"kgraph/domain/core/aggregates"
)

// Checksum computes a content hash over a graph's nodes and edges.
// Node and edge order does not affect the result, so a snapshot
// round-trip or a rebuild with identical content hashes the same.
// Graph and edge identifiers are excluded since they are regenerated
// per build.
func Checksum(graph *aggregates.Graph) string {
	lines := make([]string, 0, graph.NodeCount()+graph.EdgeCount())

	for _, n := range graph.Nodes() {
		lines = append(lines, fmt.Sprintf("n|%s|%s|%.6f|%s",
			n.ID().String(),
			n.Type(),
			n.Importance(),
			strings.Join(n.ChapterPath(), "/"),
		))
	}
	for _, e := range graph.Edges() {
		lines = append(lines, fmt.Sprintf("e|%s|%s|%s|%.6f",
			e.SourceID.String(),
			e.TargetID.String(),
			e.Type,
			e.Weight,
		))
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the graph's content matches the expected
// checksum. An empty expected checksum always verifies; older
// snapshots carry none.
func Verify(graph *aggregates.Graph, expected string) bool {
	if expected == "" {
		return true
	}
	return Checksum(graph) == expected
}
