// Package weighting wraps a host graph.Weighting, multiplying edge weights
// by an avoidance multiplier and a speed-limit multiplier derived from the
// live overlay index, while delegating every other operation unchanged to
// the base.
package weighting

import (
	"overlay/internal/feed"
	"overlay/internal/graph"
	"overlay/internal/overlayindex"
)

// AvoidanceMultiplier is the uniform penalty applied to any edge flagged by
// EDS or Custom Area avoidance. EDS and Custom Area hits never stack: an
// edge hit by both still receives this multiplier exactly once.
const AvoidanceMultiplier = 10.0

// Flags selects which overlays a wrapped weighting applies.
type Flags struct {
	AvoidEds         bool
	AvoidCustomAreas bool
	SpeedLimitClass  feed.VehicleClass // feed.VehicleClassNone disables the speed-limit overlay
}

// Overlay wraps a base graph.Weighting with the avoidance and speed-limit
// multipliers. It holds no mutable state: the index pointer and flags are
// fixed at construction and unchanged for the lifetime of the value, so a
// single Overlay may be shared across concurrent requests sharing the same
// flags.
type Overlay struct {
	base     graph.Weighting
	provider graph.Provider
	index    *overlayindex.Index
	flags    Flags
}

// New builds an Overlay wrapping base, reading overlay hits from index and
// validating edge ids against provider's edge count.
func New(base graph.Weighting, provider graph.Provider, index *overlayindex.Index, flags Flags) *Overlay {
	return &Overlay{base: base, provider: provider, index: index, flags: flags}
}

var _ graph.Weighting = (*Overlay)(nil)

// EdgeWeight computes base.EdgeWeight(id, reverse) multiplied by the
// avoidance and speed-limit multipliers. An out-of-range id returns the base
// weight unchanged.
func (o *Overlay) EdgeWeight(id graph.EdgeID, reverse bool) float64 {
	base := o.base.EdgeWeight(id, reverse)
	if !o.validEdge(id) {
		return base
	}

	w := base
	w *= o.avoidanceMultiplier(id)
	w *= o.speedLimitMultiplier(id)

	return w
}

func (o *Overlay) EdgeMillis(id graph.EdgeID, reverse bool) int64 {
	return o.base.EdgeMillis(id, reverse)
}

func (o *Overlay) TurnWeight(from, via, to graph.EdgeID) float64 {
	return o.base.TurnWeight(from, via, to)
}

func (o *Overlay) TurnMillis(from, via, to graph.EdgeID) int64 {
	return o.base.TurnMillis(from, via, to)
}

func (o *Overlay) HasTurnCosts() bool {
	return o.base.HasTurnCosts()
}

// MinWeightPerDistance delegates unchanged. The speed-limit bonus can scale
// an edge weight down to 0.85 of its base weight, and the value returned here
// does not account for that reduction.
func (o *Overlay) MinWeightPerDistance() float64 {
	return o.base.MinWeightPerDistance()
}

func (o *Overlay) validEdge(id graph.EdgeID) bool {
	return id >= 0 && int(id) < o.provider.EdgeCount()
}

// avoidanceMultiplier returns 1 if neither flag is set, or if neither table
// has a hit; AvoidanceMultiplier if either flag is set and the corresponding
// table (or both) has a hit. EDS and Custom Area hits never stack.
func (o *Overlay) avoidanceMultiplier(id graph.EdgeID) float64 {
	if !o.flags.AvoidEds && !o.flags.AvoidCustomAreas {
		return 1.0
	}

	edsHit := o.flags.AvoidEds && o.index.IsEdsHit(id)
	areaHit := o.flags.AvoidCustomAreas && o.index.IsCustomAreaHit(id)

	if edsHit || areaHit {
		return AvoidanceMultiplier
	}

	return 1.0
}

// speedLimitMultiplier biases the edge cost by how far the corridor-imposed
// limit sits above or below the graph's baseline speed. Avoidance takes
// precedence: an edge already being avoided on this request never also
// receives a speed-limit multiplier.
func (o *Overlay) speedLimitMultiplier(id graph.EdgeID) float64 {
	if o.flags.SpeedLimitClass == feed.VehicleClassNone {
		return 1.0
	}

	if o.avoidanceMultiplier(id) != 1.0 {
		return 1.0
	}

	vAPI, ok := o.index.SpeedLimitFor(id, o.flags.SpeedLimitClass)
	if !ok {
		return 1.0
	}

	vOSM := o.baselineSpeed(id)
	delta := vAPI - int(vOSM)
	if delta < 0 {
		delta = -delta
	}

	bonus := float64(vAPI) >= vOSM

	return speedLimitDeltaMultiplier(delta, bonus)
}

func (o *Overlay) baselineSpeed(id graph.EdgeID) float64 {
	kmh, ok := o.provider.BaselineSpeedKmH(id)
	if !ok || kmh <= 0 {
		return o.flags.SpeedLimitClass.DefaultSpeedKmH()
	}

	return kmh
}

// speedLimitDeltaMultiplier returns the tiered multiplier for a given
// absolute delta (km/h) and whether the corridor limit is a bonus (>= base)
// or a penalty (< base). Both sides are capped to keep route quality
// reasonable.
func speedLimitDeltaMultiplier(delta int, bonus bool) float64 {
	switch {
	case delta <= 5:
		if bonus {
			return 0.97
		}
		return 1.03
	case delta <= 15:
		if bonus {
			return 0.95
		}
		return 1.08
	case delta <= 30:
		if bonus {
			return 0.92
		}
		return 1.15
	case delta <= 50:
		if bonus {
			return 0.88
		}
		return 1.25
	default:
		if bonus {
			return 0.85
		}
		return 1.35
	}
}
