package geomatch

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"overlay/internal/graph"
)

// CircleVertices is the number of points used to approximate a custom area's
// circle as a geodesic polygon.
const CircleVertices = 32

// Circle is a query geometry: a center point and a radius in meters.
type Circle struct {
	Center       orb.Point
	RadiusMeters float64
}

// approximate returns the CircleVertices-point closed polygon that
// approximates c as a geodesic circle, using an equirectangular
// approximation centered on c.Center (adequate at custom-area radii, which
// are on the order of hundreds of meters).
func (c Circle) approximate() orb.Ring {
	ring := make(orb.Ring, CircleVertices+1)

	latRad := c.Center[1] * math.Pi / 180
	metersPerDegLat := 111_320.0
	metersPerDegLon := 111_320.0 * math.Cos(latRad)
	if metersPerDegLon <= 0 {
		metersPerDegLon = 1e-9
	}

	for i := 0; i < CircleVertices; i++ {
		theta := 2 * math.Pi * float64(i) / float64(CircleVertices)
		dLat := (c.RadiusMeters * math.Sin(theta)) / metersPerDegLat
		dLon := (c.RadiusMeters * math.Cos(theta)) / metersPerDegLon
		ring[i] = orb.Point{c.Center[0] + dLon, c.Center[1] + dLat}
	}
	ring[CircleVertices] = ring[0]

	return ring
}

// bound returns the circle's bounding box in degrees, used for the edge
// prefilter.
func (c Circle) bound() bbox {
	return boundOf(orb.LineString(c.approximate()))
}

// MatchCircle scores every candidate edge of provider against circle and
// returns those with a positive score, sorted descending. Custom-area matching has
// no minimum-score gate; any non-zero score, i.e. a non-empty intersection,
// is kept.
func MatchCircle(provider graph.Provider, cache *Cache, circle Circle) []MatchResult {
	queryBox := circle.bound().expanded()

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

		score := circleMatchScore(circle, candidateLine)
		if score > 0 {
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

// circleMatchScore returns max(0, (radius - minDistance) / radius), where
// minDistance is the closest approach in meters between circle's center and
// any segment of line. A line passing through the center scores 1; a line
// entirely outside the circle scores 0.
func circleMatchScore(circle Circle, line orb.LineString) float64 {
	if circle.RadiusMeters <= 0 {
		return 0
	}

	minDistanceDeg := pointToLineDistance(circle.Center, line)
	minDistanceMeters := minDistanceDeg * degreesToMeters

	score := (circle.RadiusMeters - minDistanceMeters) / circle.RadiusMeters

	return math.Max(0, score)
}
