package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// SpeedLimitSource fetches the raw Speed Limits feed body.
type SpeedLimitSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPSpeedLimitSource fetches the Speed Limits feed over HTTPS GET.
type HTTPSpeedLimitSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSpeedLimitSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = defaultHTTPClient()
	}

	return httpGet(ctx, client, s.URL)
}

type speedLimitEnvelope struct {
	Data struct {
		Items []speedLimitItemWire `json:"items"`
	} `json:"data"`
}

type speedLimitItemWire struct {
	ID         string `json:"id" validate:"required"`
	Title      string `json:"title"`
	Linestring struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"linestring"`
	Cars []speedLimitCarWire `json:"cars"`
}

type speedLimitCarWire struct {
	CarID   int    `json:"car_id"`
	CarName string `json:"car_name"`
	Speed   int    `json:"speed" validate:"gt=0"`
}

// FetchSpeedLimits fetches and parses the Speed Limits feed into a new
// SpeedLimitSnapshot. One entry is produced per (item.id, car_id) pair;
// malformed cars or geometries are skipped with a warning and do not abort
// the batch.
func FetchSpeedLimits(source SpeedLimitSource, logger *slog.Logger) FetchFunc[SpeedLimitSnapshot] {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context) (SpeedLimitSnapshot, error) {
		body, err := source.Fetch(ctx)
		if err != nil {
			return SpeedLimitSnapshot{}, errors.Wrap(err, "fetch speed limits feed")
		}

		var envelope speedLimitEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return SpeedLimitSnapshot{}, errors.Wrap(err, "parse speed limits feed")
		}

		corridors := make(map[SpeedLimitCorridorKey]SpeedLimitCorridor)
		for _, item := range envelope.Data.Items {
			line, ok := parseSpeedLimitGeometry(item, logger)
			if !ok {
				continue
			}

			for _, car := range item.Cars {
				entry, ok := parseSpeedLimitCar(item, car, line, logger)
				if !ok {
					continue
				}

				key := SpeedLimitCorridorKey{VehicleClass: entry.VehicleClass, CorridorID: entry.CorridorID}
				corridors[key] = entry
			}
		}

		return SpeedLimitSnapshot{
			Version:     uuid.New(),
			InstalledAt: time.Now(),
			Corridors:   corridors,
		}, nil
	}
}

func parseSpeedLimitGeometry(item speedLimitItemWire, logger *slog.Logger) (orb.LineString, bool) {
	if err := sharedValidator.Struct(item); err != nil {
		logger.Warn("skipping speed limit item with missing id", "error", err)

		return nil, false
	}

	coords := item.Linestring.Coordinates
	if len(coords) < 2 {
		logger.Warn("skipping speed limit item with fewer than 2 coordinates", "id", item.ID)

		return nil, false
	}

	line := make(orb.LineString, 0, len(coords))
	for _, pair := range coords {
		if len(pair) != 2 {
			logger.Warn("skipping speed limit item with malformed coordinate", "id", item.ID)

			return nil, false
		}
		line = append(line, orb.Point{pair[0], pair[1]})
	}

	return line, true
}

func parseSpeedLimitCar(item speedLimitItemWire, car speedLimitCarWire, line orb.LineString, logger *slog.Logger) (SpeedLimitCorridor, bool) {
	if err := sharedValidator.Struct(car); err != nil {
		logger.Warn("skipping speed limit car with non-positive speed", "id", item.ID, "car_id", car.CarID, "error", err)

		return SpeedLimitCorridor{}, false
	}

	return SpeedLimitCorridor{
		CorridorID:    item.ID,
		CorridorTitle: item.Title,
		VehicleClass:  ParseVehicleClass(car.CarID),
		Polyline:      line,
		SpeedLimitKmH: car.Speed,
	}, true
}
