package memgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"overlay/internal/graph"
)

// BaseWeighting is a distance-over-speed weighting for the demo Graph,
// standing in for the host's real base weighting (contraction hierarchies,
// landmarks, ...). It has no turn costs.
type BaseWeighting struct {
	g *Graph
}

// NewBaseWeighting wraps g in a minimal distance/speed weighting.
func NewBaseWeighting(g *Graph) *BaseWeighting {
	return &BaseWeighting{g: g}
}

var _ graph.Weighting = (*BaseWeighting)(nil)

func (w *BaseWeighting) EdgeWeight(id graph.EdgeID, _ bool) float64 {
	rec, ok := w.record(id)
	if !ok {
		return 0
	}

	return lengthMeters(rec.Polyline) / speedMetersPerSecond(rec.SpeedKmH)
}

func (w *BaseWeighting) EdgeMillis(id graph.EdgeID, reverse bool) int64 {
	return int64(w.EdgeWeight(id, reverse) * 1000)
}

func (w *BaseWeighting) TurnWeight(_, _, _ graph.EdgeID) float64 { return 0 }
func (w *BaseWeighting) TurnMillis(_, _, _ graph.EdgeID) int64   { return 0 }
func (w *BaseWeighting) HasTurnCosts() bool                      { return false }

func (w *BaseWeighting) MinWeightPerDistance() float64 {
	// Fastest plausible road class sets the admissible lower bound.
	const maxPlausibleSpeedKmH = 120.0

	return 1.0 / speedMetersPerSecond(maxPlausibleSpeedKmH)
}

func (w *BaseWeighting) record(id graph.EdgeID) (Record, bool) {
	if !w.g.valid(id) {
		return Record{}, false
	}

	return w.g.edges[id], true
}

func speedMetersPerSecond(kmh float64) float64 {
	if kmh <= 0 {
		kmh = 30
	}

	return kmh * 1000 / 3600
}

func lengthMeters(line orb.LineString) float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += geo.Distance(line[i-1], line[i])
	}

	return total
}
