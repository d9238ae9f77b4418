// Package graph defines the contracts the overlay pipeline consumes from,
// and exposes back to, the host routing engine. Nothing in this package
// builds a road graph or runs a shortest-path search; those are external
// collaborators (see the host requirements this module was written against).
package graph

import "github.com/paulmach/orb"

// Profile identifies the travel mode a routing request was made for.
// Speed-limit overlays only make sense for motor-vehicle profiles.
type Profile int

const (
	ProfileCar Profile = iota
	ProfilePedestrian
	ProfileBicycle
)

// ParseProfile maps a host-supplied profile string onto a Profile, defaulting
// to ProfileCar for anything unrecognized.
func ParseProfile(s string) Profile {
	switch s {
	case "foot", "pedestrian", "walk":
		return ProfilePedestrian
	case "bike", "bicycle", "cycle":
		return ProfileBicycle
	default:
		return ProfileCar
	}
}

// IsMotorVehicle reports whether speed-limit corridors apply to this profile.
func (p Profile) IsMotorVehicle() bool {
	return p == ProfileCar
}

// EdgeID is a dense, non-negative integer edge identifier, stable and
// immutable for the lifetime of the host process.
type EdgeID int

// Provider is the subset of the host road graph the overlay pipeline reads.
// Edge ids and geometries are assumed immutable for the life of the process.
type Provider interface {
	// EdgeCount returns the number of edges, for bounds checks.
	EdgeCount() int

	// EnumerateEdges yields every valid edge id in [0, EdgeCount()).
	EnumerateEdges(yield func(EdgeID) bool)

	// EdgePolyline returns the edge geometry as a WGS-84 line string
	// (lon, lat order, matching orb.Point) with at least two points.
	EdgePolyline(id EdgeID) (orb.LineString, bool)

	// EdgeEndpoints returns the edge's first and last point, for the
	// bounding-box prefilter; cheaper than materializing the full polyline.
	EdgeEndpoints(id EdgeID) (from, to orb.Point, ok bool)

	// BaselineSpeedKmH returns the graph's baseline traversal speed for id.
	BaselineSpeedKmH(id EdgeID) (float64, bool)
}

// Weighting is the cost abstraction the base router exposes and the overlay
// wraps: five cost operations plus HasTurnCosts. reverse indicates travel against the edge's stored
// direction.
type Weighting interface {
	EdgeWeight(id EdgeID, reverse bool) float64
	EdgeMillis(id EdgeID, reverse bool) int64
	TurnWeight(from, via, to EdgeID) float64
	TurnMillis(from, via, to EdgeID) int64
	HasTurnCosts() bool
	MinWeightPerDistance() float64
}

// HintBag is a per-request bag of routing-algorithm hints: booleans and ints
// by string key, plus putters the binder uses to instruct the router.
type HintBag interface {
	Bool(key string, def bool) bool
	Int(key string, def int) int

	SetBool(key string, v bool)
	SetInt(key string, v int)

	// Clone returns an independent copy so the binder never mutates the
	// caller's bag in place.
	Clone() HintBag
}
