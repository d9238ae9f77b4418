// Package binder implements the request binder: it reads per-request hint
// flags, decides whether router speedups must be disabled, selects
// alternative-route search parameters, and produces the overlay flags the
// weighting wrapper is constructed with.
package binder

import (
	"overlay/internal/feed"
	"overlay/internal/graph"
	"overlay/internal/weighting"
)

// Hint keys read from and written to the request's graph.HintBag.
const (
	HintAvoidEdsRoads      = "avoid_eds_roads"
	HintAvoidCustomAreas   = "avoid_custom_areas"
	HintCarTypeID          = "car_type_id"
	HintEnableSpeedLimits  = "enable_speed_limits"
	HintTrafficAware       = "traffic_aware"
	HintDisableSpeedups    = "disable_speedups"
	HintMaxPaths           = "max_paths"
	HintMaxWeightFactorPPM = "max_weight_factor_ppm" // fixed-point, parts per million, to keep HintBag integer-only
	HintMaxShareFactorPPM  = "max_share_factor_ppm"
	HintMaxExplorationPPM  = "max_exploration_factor_ppm"
)

const ppmScale = 1_000_000

// RouteParams is the alternative-route search parameter set selected for a
// request.
type RouteParams struct {
	MaxPaths             int
	MaxWeightFactor      float64
	MaxShareFactor       float64
	MaxExplorationFactor float64
}

var (
	paramsBothAvoidance  = RouteParams{MaxPaths: 3, MaxWeightFactor: 1.5, MaxShareFactor: 0.7, MaxExplorationFactor: 1.3}
	paramsCustomAreaOnly = RouteParams{MaxPaths: 3, MaxWeightFactor: 2.0, MaxShareFactor: 0.5, MaxExplorationFactor: 1.5}
	paramsEdsOnly        = RouteParams{MaxPaths: 3, MaxWeightFactor: 1.3, MaxShareFactor: 0.7, MaxExplorationFactor: 1.2}
	paramsNoAvoidance    = RouteParams{MaxPaths: 3, MaxWeightFactor: 1.4, MaxShareFactor: 0.6, MaxExplorationFactor: 1.3}
)

// Decision is the result of binding one request: the overlay flags to wrap
// the base weighting with, the alternative-route parameters, and whether
// router speedups must be disabled for this request.
type Decision struct {
	Flags           weighting.Flags
	RouteParams     RouteParams
	DisableSpeedups bool
	OverlayActive   bool
}

// Bind reads request flags from in and returns both the binding Decision
// and a new HintBag (via Clone, then mutation) carrying the resolved
// parameters back for the host router to read; the caller's bag is never
// mutated in place.
func Bind(in graph.HintBag, profile graph.Profile) (Decision, graph.HintBag) {
	out := in.Clone()

	trafficAware := in.Bool(HintTrafficAware, true)

	avoidEds := trafficAware && in.Bool(HintAvoidEdsRoads, false)
	avoidCustomAreas := trafficAware && in.Bool(HintAvoidCustomAreas, false)

	carTypeID := in.Int(HintCarTypeID, 0)
	enableSpeedLimits := trafficAware && in.Bool(HintEnableSpeedLimits, true)

	// Pedestrian and bicycle profiles bypass speed-limit overlays entirely:
	// those corridors describe motor-vehicle limits.
	speedLimitClass := feed.VehicleClassNone
	if enableSpeedLimits && carTypeID != 0 && profile.IsMotorVehicle() {
		speedLimitClass = feed.ParseVehicleClass(carTypeID)
	}

	overlayActive := avoidEds || avoidCustomAreas || speedLimitClass != feed.VehicleClassNone

	params := selectRouteParams(avoidEds, avoidCustomAreas)

	out.SetBool(HintDisableSpeedups, overlayActive)
	out.SetInt(HintMaxPaths, params.MaxPaths)
	out.SetInt(HintMaxWeightFactorPPM, int(params.MaxWeightFactor*ppmScale))
	out.SetInt(HintMaxShareFactorPPM, int(params.MaxShareFactor*ppmScale))
	out.SetInt(HintMaxExplorationPPM, int(params.MaxExplorationFactor*ppmScale))

	decision := Decision{
		Flags: weighting.Flags{
			AvoidEds:         avoidEds,
			AvoidCustomAreas: avoidCustomAreas,
			SpeedLimitClass:  speedLimitClass,
		},
		RouteParams:     params,
		DisableSpeedups: overlayActive,
		OverlayActive:   overlayActive,
	}

	return decision, out
}

func selectRouteParams(avoidEds, avoidCustomAreas bool) RouteParams {
	switch {
	case avoidEds && avoidCustomAreas:
		return paramsBothAvoidance
	case avoidCustomAreas:
		return paramsCustomAreaOnly
	case avoidEds:
		return paramsEdsOnly
	default:
		return paramsNoAvoidance
	}
}
