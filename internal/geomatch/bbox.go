package geomatch

import (
	"math"

	"github.com/paulmach/orb"
)

// bbox is an axis-aligned lon/lat bounding box in degrees. The matcher keeps
// its own tiny bbox type rather than reaching for orb.Bound's padding
// helpers, because the expansion rule here (max of a fixed degree amount and
// a percentage of extent) is spec-defined and has no library equivalent.
type bbox struct {
	minLon, minLat, maxLon, maxLat float64
}

func boundOf(line orb.LineString) bbox {
	b := bbox{minLon: math.MaxFloat64, minLat: math.MaxFloat64, maxLon: -math.MaxFloat64, maxLat: -math.MaxFloat64}
	for _, p := range line {
		b = b.extend(p)
	}

	return b
}

func (b bbox) extend(p orb.Point) bbox {
	lon, lat := p[0], p[1]
	if lon < b.minLon {
		b.minLon = lon
	}
	if lon > b.maxLon {
		b.maxLon = lon
	}
	if lat < b.minLat {
		b.minLat = lat
	}
	if lat > b.maxLat {
		b.maxLat = lat
	}

	return b
}

// expanded pads the box by the larger of a fixed 0.001 degree amount and 10%
// of the box's own extent, per the line-match prefilter rule.
func (b bbox) expanded() bbox {
	const minPadDeg = 0.001
	const extentFraction = 0.10

	lonExtent := b.maxLon - b.minLon
	latExtent := b.maxLat - b.minLat

	lonPad := math.Max(minPadDeg, lonExtent*extentFraction)
	latPad := math.Max(minPadDeg, latExtent*extentFraction)

	return bbox{
		minLon: b.minLon - lonPad,
		maxLon: b.maxLon + lonPad,
		minLat: b.minLat - latPad,
		maxLat: b.maxLat + latPad,
	}
}

func (b bbox) contains(p orb.Point) bool {
	return p[0] >= b.minLon && p[0] <= b.maxLon && p[1] >= b.minLat && p[1] <= b.maxLat
}

// straddles reports whether the segment (from, to) spans the box in both lat
// and lon - its endpoint interval overlaps the box's interval on each axis -
// the second half of the candidate-edge prefilter rule. This admits edges
// that cross the box with both endpoints outside it, e.g. a long east-west
// road passing through a small query box.
func (b bbox) straddles(from, to orb.Point) bool {
	lonLo := math.Min(from[0], to[0])
	lonHi := math.Max(from[0], to[0])
	latLo := math.Min(from[1], to[1])
	latHi := math.Max(from[1], to[1])

	overlapsLon := lonLo <= b.maxLon && lonHi >= b.minLon
	overlapsLat := latLo <= b.maxLat && latHi >= b.minLat

	return overlapsLon && overlapsLat
}

// isCandidate implements the line-match prefilter: an edge is a candidate if
// either endpoint lies in the expanded box, or the edge straddles the box in
// both lat and lon.
func (b bbox) isCandidate(from, to orb.Point) bool {
	return b.contains(from) || b.contains(to) || b.straddles(from, to)
}
