// Package geomatch scores query geometries (polylines, circles) against the
// host road graph's edges.
package geomatch

import "overlay/internal/graph"

// MatchResult is one candidate edge and its match score in [0, 1].
type MatchResult struct {
	EdgeID graph.EdgeID
	Score  float64
}
