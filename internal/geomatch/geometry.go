package geomatch

import (
	"math"

	"github.com/paulmach/orb"
)

const degreesToMeters = 111_000.0

// pointSegmentDistance returns the shortest distance, in degrees, from p to
// the segment (a, b).
func pointSegmentDistance(p, a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]

	if dx == 0 && dy == 0 {
		return distance(p, a)
	}

	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	proj := orb.Point{a[0] + t*dx, a[1] + t*dy}

	return distance(p, proj)
}

func distance(p, q orb.Point) float64 {
	dx := p[0] - q[0]
	dy := p[1] - q[1]

	return math.Sqrt(dx*dx + dy*dy)
}

// pointToLineDistance returns the shortest distance, in degrees, from p to
// any segment of line.
func pointToLineDistance(p orb.Point, line orb.LineString) float64 {
	best := math.MaxFloat64
	for i := 1; i < len(line); i++ {
		d := pointSegmentDistance(p, line[i-1], line[i])
		if d < best {
			best = d
		}
	}

	return best
}

// directedHausdorff returns the max, over every point of a, of the minimum
// distance (in degrees) from that point to b.
func directedHausdorff(a, b orb.LineString) float64 {
	var worst float64
	for _, p := range a {
		d := pointToLineDistance(p, b)
		if d > worst {
			worst = d
		}
	}

	return worst
}

// symmetricDistance is the symmetric (two-sided) Hausdorff distance between
// two polylines, in degrees.
func symmetricDistance(a, b orb.LineString) float64 {
	return math.Max(directedHausdorff(a, b), directedHausdorff(b, a))
}

// lineLengthDeg sums consecutive-point Euclidean distances in degree space.
func lineLengthDeg(line orb.LineString) float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += distance(line[i-1], line[i])
	}

	return total
}

// directionCos returns the absolute cosine of the angle between the
// start->end vectors of a and b - undirected, so either traversal direction
// of a road segment scores the same. Returns the neutral 0.5 if either
// polyline has fewer than 2 points.
func directionCos(a, b orb.LineString) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0.5
	}

	ax := a[len(a)-1][0] - a[0][0]
	ay := a[len(a)-1][1] - a[0][1]
	bx := b[len(b)-1][0] - b[0][0]
	by := b[len(b)-1][1] - b[0][1]

	magA := math.Sqrt(ax*ax + ay*ay)
	magB := math.Sqrt(bx*bx + by*by)
	if magA == 0 || magB == 0 {
		return 0.5
	}

	cos := (ax*bx + ay*by) / (magA * magB)

	return math.Abs(cos)
}

// lineMatchScore computes the match score for a query/candidate polyline
// pair: 0.4 distance + 0.3 length ratio + 0.3 direction, with the distance
// term capped at dMaxMeters.
func lineMatchScore(query, candidate orb.LineString, dMaxMeters float64) float64 {
	hausdorffDeg := symmetricDistance(query, candidate)
	distanceM := hausdorffDeg * degreesToMeters
	distanceScore := math.Max(0, 1-distanceM/dMaxMeters)

	queryLen := lineLengthDeg(query)
	candidateLen := lineLengthDeg(candidate)
	lengthRatio := 0.0
	if queryLen > 0 || candidateLen > 0 {
		lengthRatio = math.Min(queryLen, candidateLen) / math.Max(queryLen, candidateLen)
	}

	direction := directionCos(query, candidate)

	return 0.4*distanceScore + 0.3*lengthRatio + 0.3*direction
}
