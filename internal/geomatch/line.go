package geomatch

import (
	"sort"

	"github.com/paulmach/orb"

	"overlay/internal/graph"
)

// Feed-specific distance caps and minimum accepted scores.
const (
	EdsMaxDistanceMeters = 50.0
	EdsThreshold         = 0.6

	SpeedLimitMaxDistanceMeters = 30.0
	SpeedLimitThreshold         = 0.7
)

// MatchLine scores every candidate edge of provider against query and
// returns those scoring at least threshold, sorted descending by score. The
// candidate set comes from the bounding-box prefilter over query's expanded
// bound; cache avoids re-fetching/re-bounding each edge's polyline on
// repeated calls.
func MatchLine(provider graph.Provider, cache *Cache, queryLine orb.LineString, dMaxMeters, threshold float64) []MatchResult {
	queryBox := boundOf(queryLine).expanded()

	var results []MatchResult

	provider.EnumerateEdges(func(id graph.EdgeID) bool {
		from, to, ok := provider.EdgeEndpoints(id)
		if !ok || !queryBox.isCandidate(from, to) {
			return true
		}

		candidateLine, _, _, ok := cache.Get(provider, id)
		if !ok {
			return true
		}

		score := lineMatchScore(queryLine, candidateLine, dMaxMeters)
		if score >= threshold {
			results = append(results, MatchResult{EdgeID: id, Score: score})
		}

		return true
	})

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}

		return results[i].EdgeID < results[j].EdgeID
	})

	return results
}
