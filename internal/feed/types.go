// Package feed periodically fetches and parses the three external feeds
// (EDS corridors, Custom Areas, per-vehicle speed-limit corridors) and
// exposes an atomic, versioned snapshot of each.
package feed

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Kind identifies one of the three feeds.
type Kind int

const (
	KindEDS Kind = iota
	KindCustomArea
	KindSpeedLimit
)

func (k Kind) String() string {
	switch k {
	case KindEDS:
		return "eds"
	case KindCustomArea:
		return "custom_area"
	case KindSpeedLimit:
		return "speed_limit"
	default:
		return "unknown"
	}
}

// VehicleClass enumerates the speed-limit feed's vehicle classes.
// Unknown class ids map to VehicleClassNone.
type VehicleClass int

const (
	VehicleClassNone VehicleClass = iota
	VehicleClassAuto
	VehicleClassMinibus
	VehicleClassBus
	VehicleClassVan
	VehicleClassTruck
	VehicleClassTractor
)

// ParseVehicleClass maps a raw feed vehicle class id onto a VehicleClass,
// defaulting to VehicleClassNone for anything outside 1..6.
func ParseVehicleClass(id int) VehicleClass {
	switch id {
	case 1:
		return VehicleClassAuto
	case 2:
		return VehicleClassMinibus
	case 3:
		return VehicleClassBus
	case 4:
		return VehicleClassVan
	case 5:
		return VehicleClassTruck
	case 6:
		return VehicleClassTractor
	default:
		return VehicleClassNone
	}
}

// DefaultSpeedKmH is the class-default baseline speed used by the overlay
// weighting when the graph itself has no baseline for an edge.
func (c VehicleClass) DefaultSpeedKmH() float64 {
	switch c {
	case VehicleClassAuto, VehicleClassMinibus, VehicleClassBus:
		return 50
	case VehicleClassVan:
		return 45
	case VehicleClassTruck, VehicleClassTractor:
		return 40
	default:
		return 45
	}
}

// Corridor is one named EDS road-name entry.
type Corridor struct {
	Name     string
	Polyline orb.LineString
}

// EdsSnapshot is the immutable, versioned result of one successful EDS fetch.
type EdsSnapshot struct {
	Version     uuid.UUID
	InstalledAt time.Time
	Corridors   map[string]Corridor // stable road name -> corridor
}

// EmptyEdsSnapshot returns a zero-entry snapshot, used before the first
// successful fetch and as the safe default on total failure.
func EmptyEdsSnapshot() EdsSnapshot {
	return EdsSnapshot{Version: uuid.New(), InstalledAt: time.Time{}, Corridors: map[string]Corridor{}}
}

// Area is one Custom Area circle: center + radius + opaque metadata.
type Area struct {
	ID        string
	CenterLat float64
	CenterLon float64
	RadiusM   float64
	Metadata  map[string]string
}

// CustomAreaSnapshot is the immutable, versioned result of one successful
// Custom Areas fetch.
type CustomAreaSnapshot struct {
	Version     uuid.UUID
	InstalledAt time.Time
	Areas       map[string]Area // area id -> area
}

func EmptyCustomAreaSnapshot() CustomAreaSnapshot {
	return CustomAreaSnapshot{Version: uuid.New(), InstalledAt: time.Time{}, Areas: map[string]Area{}}
}

// SpeedLimitCorridorKey identifies one (vehicle_class, corridor) pair.
type SpeedLimitCorridorKey struct {
	VehicleClass VehicleClass
	CorridorID   string
}

// SpeedLimitCorridor is one (vehicle_class, corridor_id) speed-limit entry.
type SpeedLimitCorridor struct {
	CorridorID    string
	CorridorTitle string
	VehicleClass  VehicleClass
	Polyline      orb.LineString
	SpeedLimitKmH int
}

// SpeedLimitSnapshot is the immutable, versioned result of one successful
// Speed Limits fetch.
type SpeedLimitSnapshot struct {
	Version     uuid.UUID
	InstalledAt time.Time
	Corridors   map[SpeedLimitCorridorKey]SpeedLimitCorridor
}

func EmptySpeedLimitSnapshot() SpeedLimitSnapshot {
	return SpeedLimitSnapshot{Version: uuid.New(), InstalledAt: time.Time{}, Corridors: map[SpeedLimitCorridorKey]SpeedLimitCorridor{}}
}
