package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// EdsSource fetches the raw EDS feed body. Production wiring is
// HTTPEdsSource; tests supply a stub.
type EdsSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPEdsSource fetches the EDS feed over HTTPS GET.
type HTTPEdsSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPEdsSource) Fetch(ctx context.Context) ([]byte, error) {
	return httpGet(ctx, s.clientOrDefault(), s.URL)
}

func (s HTTPEdsSource) clientOrDefault() *http.Client {
	if s.Client != nil {
		return s.Client
	}

	return defaultHTTPClient()
}

// FetchEds fetches and parses the EDS feed into a new EdsSnapshot. Features
// with a non-LineString geometry or fewer than two coordinates are skipped
// with a warning; the batch otherwise continues.
func FetchEds(source EdsSource, logger *slog.Logger) FetchFunc[EdsSnapshot] {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context) (EdsSnapshot, error) {
		body, err := source.Fetch(ctx)
		if err != nil {
			return EdsSnapshot{}, errors.Wrap(err, "fetch eds feed")
		}

		var docs []*geojson.FeatureCollection
		if err := json.Unmarshal(body, &docs); err != nil {
			return EdsSnapshot{}, errors.Wrap(err, "parse eds feed")
		}

		corridors := make(map[string]Corridor)
		for _, doc := range docs {
			if doc == nil {
				continue
			}
			for _, feature := range doc.Features {
				corridor, ok := parseEdsFeature(feature, logger)
				if !ok {
					continue
				}
				corridors[corridor.Name] = corridor
			}
		}

		return EdsSnapshot{
			Version:     uuid.New(),
			InstalledAt: time.Now(),
			Corridors:   corridors,
		}, nil
	}
}

func parseEdsFeature(feature *geojson.Feature, logger *slog.Logger) (Corridor, bool) {
	if feature == nil {
		return Corridor{}, false
	}

	line, ok := feature.Geometry.(orb.LineString)
	if !ok {
		logger.Warn("skipping eds feature with non-linestring geometry")

		return Corridor{}, false
	}

	if len(line) < 2 {
		logger.Warn("skipping eds feature with fewer than 2 coordinates")

		return Corridor{}, false
	}

	name, ok := feature.Properties["Name"].(string)
	if !ok || name == "" {
		logger.Warn("skipping eds feature with missing properties.Name")

		return Corridor{}, false
	}

	return Corridor{Name: name, Polyline: line}, true
}
