// Command overlaydemo wires the overlay engine to a CSV-loaded graph and
// runs it until interrupted, logging periodic stats - a minimal host
// integration exercising the engine's public surface.
package main

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"overlay"
	"overlay/config"
	"overlay/internal/feed"
	"overlay/internal/graph"
	"overlay/internal/graph/memgraph"
	"overlay/internal/obslog"
)

func main() {
	fx.New(
		fx.Provide(
			config.New,
			obslog.New,
			newGraphProvider,
			newEngine,
		),
		fx.Invoke(run),
	).Run()
}

func newGraphProvider(cfg *config.Config) (graph.Provider, error) {
	g, err := memgraph.LoadCSV(cfg.Overlay.GraphCSVPath)
	if err != nil {
		return nil, err
	}

	return g, nil
}

func newEngine(provider graph.Provider, cfg *config.Config, logger *slog.Logger) *overlay.Engine {
	return overlay.New(provider, overlay.Config{
		Feed: feed.Config{
			EdsURL:        cfg.Feed.EdsURL,
			CustomAreaURL: cfg.Feed.CustomAreaURL,
			SpeedLimitURL: cfg.Feed.SpeedLimitURL,
		},
		CacheCapacity: cfg.Overlay.CacheCapacity,
		Logger:        logger,
	})
}

func run(lc fx.Lifecycle, engine *overlay.Engine, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			engine.Start(ctx)
			go reportStats(ctx, engine, logger)

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			engine.Stop()

			return nil
		},
	})
}

func reportStats(ctx context.Context, engine *overlay.Engine, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := engine.Stats()
			logger.Info("overlay stats",
				slog.Int("total", stats.Total),
				slog.Int("heavy", stats.Heavy),
				slog.Int("moderate", stats.Moderate),
				slog.Int("light", stats.Light),
				slog.Int64("last_update_ms", stats.LastUpdateMs),
				slog.Bool("has_recent_data", engine.HasRecentData()),
			)
		}
	}
}
