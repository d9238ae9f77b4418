// Package overlay is the container object for the whole overlay subsystem:
// it owns the feed client, the overlay index built from it via the geometry
// matcher, and exposes the operations a host router integrates against. Two
// Engine values can coexist in the same process with no shared global state.
package overlay

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"overlay/internal/binder"
	"overlay/internal/feed"
	"overlay/internal/graph"
	"overlay/internal/overlayindex"
	"overlay/internal/weighting"
)

// ErrIndexNotBuilt is the sentinel for an overlay index that has not been
// built for a feed yet. No Engine method returns it: before the first
// successful refresh the tables are empty and lookups report no hits.
var ErrIndexNotBuilt = errors.New("overlay: index not built for this feed yet")

// Config configures the Engine's feed sources and the capacity of the shared
// edge-geometry cache.
type Config struct {
	Feed          feed.Config
	CacheCapacity int // 0 = unbounded
	Logger        *slog.Logger
}

// Engine is the overlay subsystem's single entry point. Construct one with
// New, call Start to begin polling, and wire GetOverlayWeighting into the
// host router's request path.
type Engine struct {
	provider graph.Provider
	client   *feed.Client
	index    *overlayindex.Index
	logger   *slog.Logger

	running atomic.Bool
}

// New builds an Engine over provider (the host road graph) with the given
// Config. The engine does not begin fetching until Start is called.
func New(provider graph.Provider, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		provider: provider,
		client:   feed.NewClient(cfg.Feed, logger),
		index:    overlayindex.New(cfg.CacheCapacity),
		logger:   logger,
	}
}

// Start launches the feed client's pollers and performs an initial index
// build from whatever each poller's first fetch installs.
func (e *Engine) Start(ctx context.Context) {
	e.client.Start(ctx)
	e.rebuildAll()
	e.running.Store(true)
}

// Stop asks the feed client's schedulers to stop, giving in-flight fetches
// their configured grace period.
func (e *Engine) Stop() {
	e.running.Store(false)
	e.client.Stop()
}

// Running reports whether the feed schedulers are active, for the host's
// observability endpoint's feed_running field.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// EdsEntries returns the number of corridors in the current EDS snapshot,
// for the host's observability endpoint's eds_entries field.
func (e *Engine) EdsEntries() int {
	return len(e.client.CurrentEds().Corridors)
}

// Refresh forces an immediate refetch of kind and, on success, rebuilds the
// corresponding overlay table.
func (e *Engine) Refresh(ctx context.Context, kind feed.Kind) error {
	if err := e.client.Refresh(ctx, kind); err != nil {
		return errors.Wrapf(err, "overlay: refresh %s", kind)
	}

	e.rebuildOne(kind)

	return nil
}

func (e *Engine) rebuildAll() {
	e.rebuildOne(feed.KindEDS)
	e.rebuildOne(feed.KindCustomArea)
	e.rebuildOne(feed.KindSpeedLimit)
}

func (e *Engine) rebuildOne(kind feed.Kind) {
	switch kind {
	case feed.KindEDS:
		e.index.RebuildEds(e.provider, e.client.CurrentEds())
	case feed.KindCustomArea:
		e.index.RebuildCustomAreas(e.provider, e.client.CurrentCustomAreas())
	case feed.KindSpeedLimit:
		e.index.RebuildSpeedLimits(e.provider, e.client.CurrentSpeedLimits())
	}
}

// Bind reads per-request flags from hints and returns the resolved binding
// decision plus a new hint bag carrying the router-facing parameters.
// hints is never mutated.
func (e *Engine) Bind(hints graph.HintBag, profile graph.Profile) (binder.Decision, graph.HintBag) {
	return binder.Bind(hints, profile)
}

// GetOverlayWeighting wraps base with the overlay multipliers described by
// flags, reading the live overlay index.
func (e *Engine) GetOverlayWeighting(base graph.Weighting, flags weighting.Flags) graph.Weighting {
	return weighting.New(base, e.provider, e.index, flags)
}

// Stats returns the coarse per-tier edge counters for the observability
// endpoint.
func (e *Engine) Stats() overlayindex.Stats {
	return e.index.Stats()
}

// HasRecentData reports whether every feed's newest install is within its
// staleness window.
func (e *Engine) HasRecentData() bool {
	return e.client.HasRecentData()
}

// LastUpdate returns the most recent install time across all three feeds.
func (e *Engine) LastUpdate() time.Time {
	return e.client.LastUpdate()
}

// ClearCache drops the shared edge-geometry cache's contents. Safe to call
// concurrently with refreshes and routing requests; it only discards
// derived data, never installed snapshots or tables.
func (e *Engine) ClearCache() {
	e.index.ClearCache()
}

// DebugSampleEntry is one edge's overlay state, for the observability
// endpoint's debug mode.
type DebugSampleEntry struct {
	EdgeID        graph.EdgeID
	EdsHit        bool
	CustomAreaHit bool
}

// DebugSample returns up to n edges (in enumeration order) with their
// current EDS/Custom Area hit state, for a host HTTP handler to marshal.
// Marshalling and routing remain the host's responsibility.
func (e *Engine) DebugSample(n int) []DebugSampleEntry {
	if n <= 0 {
		return nil
	}

	out := make([]DebugSampleEntry, 0, n)
	e.provider.EnumerateEdges(func(id graph.EdgeID) bool {
		out = append(out, DebugSampleEntry{
			EdgeID:        id,
			EdsHit:        e.index.IsEdsHit(id),
			CustomAreaHit: e.index.IsCustomAreaHit(id),
		})

		return len(out) < n
	})

	return out
}
