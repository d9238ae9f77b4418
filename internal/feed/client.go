package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Per-feed refresh periods and staleness windows.
const (
	EdsPeriod     = 24 * time.Hour
	EdsStaleAfter = 48 * time.Hour

	CustomAreaPeriod     = 6 * time.Hour
	CustomAreaStaleAfter = 12 * time.Hour

	SpeedLimitPeriod     = 6 * time.Hour
	SpeedLimitStaleAfter = 12 * time.Hour
)

// Config configures the three feed sources the Client polls.
type Config struct {
	EdsURL        string
	CustomAreaURL string
	SpeedLimitURL string
}

// Client runs three independent scheduled pollers, one per feed, each
// exposing its own atomic current snapshot.
type Client struct {
	eds         *Poller[EdsSnapshot]
	customAreas *Poller[CustomAreaSnapshot]
	speedLimits *Poller[SpeedLimitSnapshot]
	logger      *slog.Logger
}

// NewClient builds a Client wired to HTTPS sources per cfg.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		eds: NewPoller(KindEDS.String(), EdsPeriod, FetchTimeout, EdsStaleAfter,
			EmptyEdsSnapshot(), FetchEds(HTTPEdsSource{URL: cfg.EdsURL}, logger), logger),
		customAreas: NewPoller(KindCustomArea.String(), CustomAreaPeriod, FetchTimeout, CustomAreaStaleAfter,
			EmptyCustomAreaSnapshot(), FetchCustomAreas(HTTPCustomAreaSource{URL: cfg.CustomAreaURL}, logger), logger),
		speedLimits: NewPoller(KindSpeedLimit.String(), SpeedLimitPeriod, FetchTimeout, SpeedLimitStaleAfter,
			EmptySpeedLimitSnapshot(), FetchSpeedLimits(HTTPSpeedLimitSource{URL: cfg.SpeedLimitURL}, logger), logger),
		logger: logger,
	}
}

// Start performs each feed's initial fetch synchronously, then launches the
// three scheduler goroutines.
func (c *Client) Start(ctx context.Context) {
	c.eds.Start(ctx)
	c.customAreas.Start(ctx)
	c.speedLimits.Start(ctx)
}

// Stop asks all three schedulers to stop, waiting up to ShutdownGrace for
// each one's in-flight fetch to finish.
func (c *Client) Stop() {
	c.eds.Stop(ShutdownGrace)
	c.customAreas.Stop(ShutdownGrace)
	c.speedLimits.Stop(ShutdownGrace)
}

// CurrentEds returns the most recent EDS snapshot.
func (c *Client) CurrentEds() EdsSnapshot { return c.eds.Current() }

// CurrentCustomAreas returns the most recent Custom Areas snapshot.
func (c *Client) CurrentCustomAreas() CustomAreaSnapshot { return c.customAreas.Current() }

// CurrentSpeedLimits returns the most recent Speed Limits snapshot.
func (c *Client) CurrentSpeedLimits() SpeedLimitSnapshot { return c.speedLimits.Current() }

// Refresh forces an immediate fetch of the named feed.
func (c *Client) Refresh(ctx context.Context, kind Kind) error {
	switch kind {
	case KindEDS:
		return c.eds.Refresh(ctx)
	case KindCustomArea:
		return c.customAreas.Refresh(ctx)
	case KindSpeedLimit:
		return c.speedLimits.Refresh(ctx)
	default:
		return errors.Wrapf(ErrUnknownFeed, "kind=%d", kind)
	}
}

// HasRecentData reports whether every feed's newest install is within its
// staleness window.
func (c *Client) HasRecentData() bool {
	return c.eds.HasRecentData() && c.customAreas.HasRecentData() && c.speedLimits.HasRecentData()
}

// LastUpdate returns the most recent install time across all three feeds.
func (c *Client) LastUpdate() time.Time {
	latest := c.eds.LastUpdate()
	if t := c.customAreas.LastUpdate(); t.After(latest) {
		latest = t
	}
	if t := c.speedLimits.LastUpdate(); t.After(latest) {
		latest = t
	}

	return latest
}
