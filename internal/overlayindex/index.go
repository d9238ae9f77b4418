// Package overlayindex holds the edge-keyed tables of EDS, Custom Area, and
// per-vehicle-class speed-limit matches, rebuilt from feed snapshots via the
// geometry matcher and published by atomic pointer swap so readers never
// block on a rebuild.
package overlayindex

import (
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"

	"overlay/internal/feed"
	"overlay/internal/geomatch"
	"overlay/internal/graph"
)

// edsTable maps an edge id to its best (highest-score) EDS corridor match.
type edsTable map[graph.EdgeID]edsEntry

type edsEntry struct {
	corridorName string
	score        float64
}

// customAreaTable maps an edge id to its best Custom Area match.
type customAreaTable map[graph.EdgeID]customAreaEntry

type customAreaEntry struct {
	areaID string
	score  float64
}

// speedLimitTable maps an edge id, per vehicle class, to its best
// speed-limit corridor match.
type speedLimitTable map[feed.VehicleClass]map[graph.EdgeID]speedLimitEntry

type speedLimitEntry struct {
	corridorID    string
	speedLimitKmH int
	score         float64
}

// snapshot is one fully-built, immutable generation of all three tables,
// swapped in as a unit so readers never observe a partially rebuilt index.
type snapshot struct {
	eds        edsTable
	customArea customAreaTable
	speedLimit speedLimitTable
}

func emptySnapshot() *snapshot {
	return &snapshot{
		eds:        edsTable{},
		customArea: customAreaTable{},
		speedLimit: speedLimitTable{},
	}
}

// Index holds the live overlay tables plus the polyline cache the matcher
// uses to build them. It is safe for concurrent use: readers call lookup
// methods without locking; Rebuild* methods install a new snapshot
// atomically.
type Index struct {
	current atomic.Pointer[snapshot]
	cache   *geomatch.Cache

	lastUpdateUnixNano atomic.Int64
}

// New builds an empty Index backed by a polyline cache of the given
// capacity (0 = unbounded). The cache is preserved across refreshes and
// only dropped by an explicit ClearCache.
func New(cacheCapacity int) *Index {
	idx := &Index{cache: geomatch.NewCache(cacheCapacity)}
	idx.current.Store(emptySnapshot())

	return idx
}

// RebuildEds replaces the live EDS table by matching every corridor in s
// against provider's edges.
func (idx *Index) RebuildEds(provider graph.Provider, s feed.EdsSnapshot) {
	table := edsTable{}

	for _, corridor := range s.Corridors {
		matches := geomatch.MatchLine(provider, idx.cache, corridor.Polyline, geomatch.EdsMaxDistanceMeters, geomatch.EdsThreshold)
		for _, m := range matches {
			insertEds(table, m.EdgeID, corridor.Name, m.Score)
		}
	}

	idx.swap(func(snap *snapshot) *snapshot {
		next := *snap
		next.eds = table

		return &next
	})
}

// RebuildCustomAreas replaces the live Custom Area table by matching every
// area in s against provider's edges. Custom Area matching has no score
// threshold, so every non-zero-score match is kept.
func (idx *Index) RebuildCustomAreas(provider graph.Provider, s feed.CustomAreaSnapshot) {
	table := customAreaTable{}

	for _, area := range s.Areas {
		circle := geomatch.Circle{Center: orb.Point{area.CenterLon, area.CenterLat}, RadiusMeters: area.RadiusM}
		matches := geomatch.MatchCircle(provider, idx.cache, circle)
		for _, m := range matches {
			insertCustomArea(table, m.EdgeID, area.ID, m.Score)
		}
	}

	idx.swap(func(snap *snapshot) *snapshot {
		next := *snap
		next.customArea = table

		return &next
	})
}

// RebuildSpeedLimits replaces the live speed-limit tables (one per vehicle
// class) by matching every corridor in s against provider's edges.
func (idx *Index) RebuildSpeedLimits(provider graph.Provider, s feed.SpeedLimitSnapshot) {
	table := speedLimitTable{}

	for key, corridor := range s.Corridors {
		matches := geomatch.MatchLine(provider, idx.cache, corridor.Polyline, geomatch.SpeedLimitMaxDistanceMeters, geomatch.SpeedLimitThreshold)
		perClass, ok := table[key.VehicleClass]
		if !ok {
			perClass = map[graph.EdgeID]speedLimitEntry{}
			table[key.VehicleClass] = perClass
		}

		for _, m := range matches {
			insertSpeedLimit(perClass, m.EdgeID, corridor.CorridorID, corridor.SpeedLimitKmH, m.Score)
		}
	}

	idx.swap(func(snap *snapshot) *snapshot {
		next := *snap
		next.speedLimit = table

		return &next
	})
}

func (idx *Index) swap(mutate func(*snapshot) *snapshot) {
	for {
		old := idx.current.Load()
		next := mutate(old)

		if idx.current.CompareAndSwap(old, next) {
			idx.lastUpdateUnixNano.Store(time.Now().UnixNano())

			return
		}
	}
}

// IsEdsHit reports whether edge has an EDS match in the live table.
func (idx *Index) IsEdsHit(id graph.EdgeID) bool {
	_, ok := idx.current.Load().eds[id]

	return ok
}

// IsCustomAreaHit reports whether edge has a Custom Area match in the live
// table.
func (idx *Index) IsCustomAreaHit(id graph.EdgeID) bool {
	_, ok := idx.current.Load().customArea[id]

	return ok
}

// SpeedLimitFor returns the corridor-imposed speed limit for (edge, class),
// if one exists in the live table.
func (idx *Index) SpeedLimitFor(id graph.EdgeID, class feed.VehicleClass) (kmh int, ok bool) {
	perClass, found := idx.current.Load().speedLimit[class]
	if !found {
		return 0, false
	}

	entry, found := perClass[id]
	if !found {
		return 0, false
	}

	return entry.speedLimitKmH, true
}

// LastUpdate returns the time of the most recent table swap, regardless of
// feed kind.
func (idx *Index) LastUpdate() time.Time {
	nanos := idx.lastUpdateUnixNano.Load()
	if nanos == 0 {
		return time.Time{}
	}

	return time.Unix(0, nanos)
}

// Stats returns coarse per-tier edge counts for the observability endpoint:
// heavy (EDS or Custom Area hit), moderate (speed-limit hit only), light
// (neither), plus the total distinct edge count seen across all tables.
type Stats struct {
	Total        int
	Heavy        int
	Moderate     int
	Light        int
	LastUpdateMs int64
}

func (idx *Index) Stats() Stats {
	snap := idx.current.Load()

	seen := map[graph.EdgeID]bool{}
	heavy := map[graph.EdgeID]bool{}
	moderate := map[graph.EdgeID]bool{}

	for id := range snap.eds {
		seen[id] = true
		heavy[id] = true
	}
	for id := range snap.customArea {
		seen[id] = true
		heavy[id] = true
	}
	for _, perClass := range snap.speedLimit {
		for id := range perClass {
			seen[id] = true
			if !heavy[id] {
				moderate[id] = true
			}
		}
	}

	light := len(seen) - len(heavy) - len(moderate)
	if light < 0 {
		light = 0
	}

	var lastUpdateMs int64
	if lu := idx.LastUpdate(); !lu.IsZero() {
		lastUpdateMs = lu.UnixMilli()
	}

	return Stats{
		Total:        len(seen),
		Heavy:        len(heavy),
		Moderate:     len(moderate),
		Light:        light,
		LastUpdateMs: lastUpdateMs,
	}
}

// ClearCache drops the polyline cache's contents without touching any
// installed table.
func (idx *Index) ClearCache() {
	idx.cache.Clear()
}

// The insert helpers keep the highest-scoring corridor per edge; equal
// scores break ties by corridor id ascending, so a rebuild over the same
// snapshot always produces the same table regardless of map iteration order.

func insertEds(table edsTable, id graph.EdgeID, name string, score float64) {
	existing, ok := table[id]
	if !ok || score > existing.score || (score == existing.score && name < existing.corridorName) {
		table[id] = edsEntry{corridorName: name, score: score}
	}
}

func insertCustomArea(table customAreaTable, id graph.EdgeID, areaID string, score float64) {
	existing, ok := table[id]
	if !ok || score > existing.score || (score == existing.score && areaID < existing.areaID) {
		table[id] = customAreaEntry{areaID: areaID, score: score}
	}
}

func insertSpeedLimit(table map[graph.EdgeID]speedLimitEntry, id graph.EdgeID, corridorID string, kmh int, score float64) {
	existing, ok := table[id]
	if !ok || score > existing.score || (score == existing.score && corridorID < existing.corridorID) {
		table[id] = speedLimitEntry{corridorID: corridorID, speedLimitKmH: kmh, score: score}
	}
}
