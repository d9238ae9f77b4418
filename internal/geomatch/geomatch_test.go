package geomatch

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overlay/internal/graph"
)

// fakeProvider is a minimal in-memory graph.Provider for geomatch tests.
type fakeProvider struct {
	lines  map[graph.EdgeID]orb.LineString
	speeds map[graph.EdgeID]float64
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		lines:  make(map[graph.EdgeID]orb.LineString),
		speeds: make(map[graph.EdgeID]float64),
	}
}

func (f *fakeProvider) add(id graph.EdgeID, line orb.LineString) {
	f.lines[id] = line
	f.speeds[id] = 50
}

func (f *fakeProvider) EdgeCount() int { return len(f.lines) }

func (f *fakeProvider) EnumerateEdges(yield func(graph.EdgeID) bool) {
	for id := range f.lines {
		if !yield(id) {
			return
		}
	}
}

func (f *fakeProvider) EdgePolyline(id graph.EdgeID) (orb.LineString, bool) {
	line, ok := f.lines[id]
	return line, ok
}

func (f *fakeProvider) EdgeEndpoints(id graph.EdgeID) (orb.Point, orb.Point, bool) {
	line, ok := f.lines[id]
	if !ok || len(line) < 2 {
		return orb.Point{}, orb.Point{}, false
	}
	return line[0], line[len(line)-1], true
}

func (f *fakeProvider) BaselineSpeedKmH(id graph.EdgeID) (float64, bool) {
	speed, ok := f.speeds[id]
	return speed, ok
}

var _ graph.Provider = (*fakeProvider)(nil)

func TestMatchLine_IdenticalPolylineScoresOne(t *testing.T) {
	p := newFakeProvider()
	line := orb.LineString{{35.0, 32.0}, {35.01, 32.01}, {35.02, 32.02}}
	p.add(1, line)

	results := MatchLine(p, NewCache(0), line, EdsMaxDistanceMeters, EdsThreshold)

	require.Len(t, results, 1)
	assert.Equal(t, graph.EdgeID(1), results[0].EdgeID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestMatchLine_ReversedPolylineScoresSame(t *testing.T) {
	p := newFakeProvider()
	line := orb.LineString{{35.0, 32.0}, {35.01, 32.01}, {35.02, 32.02}}
	p.add(1, line)

	reversed := orb.LineString{{35.02, 32.02}, {35.01, 32.01}, {35.0, 32.0}}

	forward := MatchLine(p, NewCache(0), line, EdsMaxDistanceMeters, EdsThreshold)
	backward := MatchLine(p, NewCache(0), reversed, EdsMaxDistanceMeters, EdsThreshold)

	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	assert.InDelta(t, forward[0].Score, backward[0].Score, 1e-6)
}

func TestMatchLine_FarAwayEdgeExcludedByThreshold(t *testing.T) {
	p := newFakeProvider()
	p.add(1, orb.LineString{{35.0, 32.0}, {35.01, 32.01}})
	p.add(2, orb.LineString{{50.0, 10.0}, {50.01, 10.01}})

	query := orb.LineString{{35.0, 32.0}, {35.01, 32.01}}
	results := MatchLine(p, NewCache(0), query, EdsMaxDistanceMeters, EdsThreshold)

	require.Len(t, results, 1)
	assert.Equal(t, graph.EdgeID(1), results[0].EdgeID)
}

func TestMatchLine_SortedDescendingByScore(t *testing.T) {
	p := newFakeProvider()
	query := orb.LineString{{35.0, 32.0}, {35.01, 32.01}}
	p.add(1, query)
	p.add(2, orb.LineString{{35.0, 32.0001}, {35.01, 32.0101}})

	results := MatchLine(p, NewCache(0), query, EdsMaxDistanceMeters, EdsThreshold)

	require.GreaterOrEqual(t, len(results), 1)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestMatchCircle_EdgeThroughCenterScoresOne(t *testing.T) {
	p := newFakeProvider()
	p.add(1, orb.LineString{{35.0, 32.0}, {35.02, 32.0}})

	circle := Circle{Center: orb.Point{35.01, 32.0}, RadiusMeters: 200}
	results := MatchCircle(p, NewCache(0), circle)

	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestMatchCircle_NoThresholdKeepsAnyPositiveScore(t *testing.T) {
	p := newFakeProvider()
	// edge grazes the edge of the circle: should still produce a small
	// positive score and be kept, since custom-area matching has no
	// minimum-score gate.
	p.add(1, orb.LineString{{35.0, 32.0}, {35.02, 32.0}})

	circle := Circle{Center: orb.Point{35.01, 32.00179}, RadiusMeters: 200}
	results := MatchCircle(p, NewCache(0), circle)

	require.Len(t, results, 1)
	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestMatchCircle_OutsideRadiusExcluded(t *testing.T) {
	p := newFakeProvider()
	p.add(1, orb.LineString{{50.0, 10.0}, {50.02, 10.0}})

	circle := Circle{Center: orb.Point{35.01, 32.0}, RadiusMeters: 200}
	results := MatchCircle(p, NewCache(0), circle)

	assert.Empty(t, results)
}

func TestMatchCircle_ZeroRadiusMatchesNothing(t *testing.T) {
	p := newFakeProvider()
	p.add(1, orb.LineString{{35.0, 32.0}, {35.02, 32.0}})

	circle := Circle{Center: orb.Point{35.01, 32.0}, RadiusMeters: 0}
	results := MatchCircle(p, NewCache(0), circle)

	assert.Empty(t, results)
}

func TestCache_GetIsAtMostOncePerEdge(t *testing.T) {
	p := newFakeProvider()
	p.add(1, orb.LineString{{35.0, 32.0}, {35.01, 32.01}})

	cache := NewCache(0)

	line1, box1, expanded1, ok1 := cache.Get(p, 1)
	require.True(t, ok1)

	line2, box2, expanded2, ok2 := cache.Get(p, 1)
	require.True(t, ok2)

	assert.Equal(t, line1, line2)
	assert.Equal(t, box1, box2)
	assert.Equal(t, expanded1, expanded2)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_GetMissingEdge(t *testing.T) {
	p := newFakeProvider()
	cache := NewCache(0)

	_, _, _, ok := cache.Get(p, 99)
	assert.False(t, ok)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	p := newFakeProvider()
	p.add(1, orb.LineString{{35.0, 32.0}, {35.01, 32.01}})
	p.add(2, orb.LineString{{36.0, 33.0}, {36.01, 33.01}})
	p.add(3, orb.LineString{{37.0, 34.0}, {37.01, 34.01}})

	cache := NewCache(2)

	cache.Get(p, 1)
	cache.Get(p, 2)
	cache.Get(p, 3) // evicts 1, the least recently used

	assert.Equal(t, 2, cache.Len())

	_, cached := cache.entries[1]
	assert.False(t, cached, "edge 1 is the least recently used and is evicted")

	_, found := p.lines[1]
	assert.True(t, found, "provider still has edge 1, only the cache entry is evicted")
}

func TestCache_Clear(t *testing.T) {
	p := newFakeProvider()
	p.add(1, orb.LineString{{35.0, 32.0}, {35.01, 32.01}})

	cache := NewCache(0)
	cache.Get(p, 1)
	require.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestBbox_ExpandedPadsByFractionOrMinimum(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 1}}
	b := boundOf(line).expanded()

	assert.Less(t, b.minLon, 0.0)
	assert.Greater(t, b.maxLon, 1.0)
}

func TestBbox_IsCandidateForStraddlingEdge(t *testing.T) {
	b := bbox{minLon: 1, minLat: 1, maxLon: 2, maxLat: 2}

	assert.True(t, b.isCandidate(orb.Point{0, 0}, orb.Point{3, 3}))
	assert.True(t, b.isCandidate(orb.Point{1.5, 1.5}, orb.Point{5, 5}))
	assert.False(t, b.isCandidate(orb.Point{10, 10}, orb.Point{11, 11}))
}

func TestDirectionCos_NeutralForDegenerateLine(t *testing.T) {
	point := orb.LineString{{0, 0}}
	line := orb.LineString{{0, 0}, {1, 1}}

	assert.Equal(t, 0.5, directionCos(point, line))
}

func TestLineMatchScore_OrthogonalLinesScoreLowOnDirection(t *testing.T) {
	query := orb.LineString{{0, 0}, {0.01, 0}}
	candidate := orb.LineString{{0, 0}, {0, 0.01}}

	score := lineMatchScore(query, candidate, 50)
	assert.Less(t, score, 0.71) // direction term contributes ~0 here
}
