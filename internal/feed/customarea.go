package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CustomAreaSource fetches the raw Custom Areas feed body.
type CustomAreaSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPCustomAreaSource fetches the Custom Areas feed over HTTPS GET.
type HTTPCustomAreaSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPCustomAreaSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = defaultHTTPClient()
	}

	return httpGet(ctx, client, s.URL)
}

type customAreaWire struct {
	ID           string            `json:"id" validate:"required"`
	Location     string            `json:"location" validate:"required"`
	HalfDiameter float64           `json:"half_diameter" validate:"required,gt=0"`
	Metadata     map[string]string `json:"metadata"`
}

type coordBounds struct {
	Lat float64 `validate:"min=-90,max=90"`
	Lon float64 `validate:"min=-180,max=180"`
}

var sharedValidator = validator.New()

// FetchCustomAreas fetches and parses the Custom Areas feed into a new
// CustomAreaSnapshot. Entries with missing required fields, out-of-range
// coordinates, or a non-positive radius are dropped with a warning.
func FetchCustomAreas(source CustomAreaSource, logger *slog.Logger) FetchFunc[CustomAreaSnapshot] {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context) (CustomAreaSnapshot, error) {
		body, err := source.Fetch(ctx)
		if err != nil {
			return CustomAreaSnapshot{}, errors.Wrap(err, "fetch custom areas feed")
		}

		var wireItems []customAreaWire
		if err := json.Unmarshal(body, &wireItems); err != nil {
			return CustomAreaSnapshot{}, errors.Wrap(err, "parse custom areas feed")
		}

		areas := make(map[string]Area)
		for _, item := range wireItems {
			area, ok := parseCustomArea(item, logger)
			if !ok {
				continue
			}
			areas[area.ID] = area
		}

		return CustomAreaSnapshot{
			Version:     uuid.New(),
			InstalledAt: time.Now(),
			Areas:       areas,
		}, nil
	}
}

func parseCustomArea(item customAreaWire, logger *slog.Logger) (Area, bool) {
	if err := sharedValidator.Struct(item); err != nil {
		logger.Warn("skipping custom area with missing/invalid fields", "id", item.ID, "error", err)

		return Area{}, false
	}

	lat, lon, err := parseLocation(item.Location)
	if err != nil {
		logger.Warn("skipping custom area with malformed location", "id", item.ID, "error", err)

		return Area{}, false
	}

	bounds := coordBounds{Lat: lat, Lon: lon}
	if err := sharedValidator.Struct(bounds); err != nil {
		logger.Warn("skipping custom area with out-of-range coordinates", "id", item.ID, "error", err)

		return Area{}, false
	}

	return Area{
		ID:        item.ID,
		CenterLat: lat,
		CenterLon: lon,
		RadiusM:   item.HalfDiameter,
		Metadata:  item.Metadata,
	}, true
}

// parseLocation parses a "lat, lon" string into (lat, lon).
func parseLocation(raw string) (lat, lon float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("expected \"lat, lon\", got %q", raw)
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}

	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}

	return lat, lon, nil
}
