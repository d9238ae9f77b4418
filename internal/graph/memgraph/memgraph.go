// Package memgraph is a minimal in-memory graph.Provider used for tests and
// the demo binary. The whole graph lives in one edges.csv whose rows carry
// the full polyline; the overlay pipeline never needs a separate vertex
// table, only per-edge geometry and baseline speed.
package memgraph

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"overlay/internal/graph"
)

// Record is one road-graph edge as loaded from edges.csv.
type Record struct {
	ID        int64
	Polyline  orb.LineString // WGS-84, lon/lat order, >= 2 points
	SpeedKmH  float64
	RoadClass string
}

// Graph is a slice-backed, read-only graph.Provider.
type Graph struct {
	edges []Record
}

// New builds a Graph directly from records, for tests.
func New(edges []Record) *Graph {
	return &Graph{edges: edges}
}

// LoadCSV loads edges from a CSV file with columns:
//
//	id,speed_kmh,road_class,polyline
//
// polyline is a ';'-separated list of "lon,lat" pairs, matching the order
// orb.Point expects.
func LoadCSV(path string) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	if _, err := reader.Read(); err != nil {
		return nil, errors.WithStack(err)
	}

	var edges []Record
	lineNum := 1

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, errors.WithStack(readErr)
		}
		lineNum++

		if len(record) < 4 {
			return nil, errors.Errorf("invalid edges.csv format at line %d: expected 4 columns, got %d", lineNum, len(record))
		}

		rec, parseErr := parseRecord(record, lineNum)
		if parseErr != nil {
			return nil, parseErr
		}

		edges = append(edges, rec)
	}

	return &Graph{edges: edges}, nil
}

func parseRecord(record []string, lineNum int) (Record, error) {
	id, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "line %d: bad id", lineNum)
	}

	speed, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "line %d: bad speed_kmh", lineNum)
	}

	roadClass := record[2]

	polyline, err := parsePolyline(record[3])
	if err != nil {
		return Record{}, errors.Wrapf(err, "line %d: bad polyline", lineNum)
	}
	if len(polyline) < 2 {
		return Record{}, errors.Errorf("line %d: polyline needs >= 2 points", lineNum)
	}

	return Record{ID: id, Polyline: polyline, SpeedKmH: speed, RoadClass: roadClass}, nil
}

func parsePolyline(raw string) (orb.LineString, error) {
	parts := strings.Split(raw, ";")
	line := make(orb.LineString, 0, len(parts))

	for _, part := range parts {
		coords := strings.Split(part, ",")
		if len(coords) != 2 {
			return nil, errors.Errorf("malformed point %q", part)
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		line = append(line, orb.Point{lon, lat})
	}

	return line, nil
}

var _ graph.Provider = (*Graph)(nil)

func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

func (g *Graph) EnumerateEdges(yield func(graph.EdgeID) bool) {
	for i := range g.edges {
		if !yield(graph.EdgeID(i)) {
			return
		}
	}
}

func (g *Graph) EdgePolyline(id graph.EdgeID) (orb.LineString, bool) {
	if !g.valid(id) {
		return nil, false
	}

	return g.edges[id].Polyline, true
}

func (g *Graph) EdgeEndpoints(id graph.EdgeID) (from, to orb.Point, ok bool) {
	if !g.valid(id) {
		return orb.Point{}, orb.Point{}, false
	}

	line := g.edges[id].Polyline

	return line[0], line[len(line)-1], true
}

func (g *Graph) BaselineSpeedKmH(id graph.EdgeID) (float64, bool) {
	if !g.valid(id) {
		return 0, false
	}

	return g.edges[id].SpeedKmH, true
}

// RoadClass returns the road-class attribute for id, for base weightings
// that consume it; not part of the graph.Provider contract itself.
func (g *Graph) RoadClass(id graph.EdgeID) (string, bool) {
	if !g.valid(id) {
		return "", false
	}

	return g.edges[id].RoadClass, true
}

func (g *Graph) valid(id graph.EdgeID) bool {
	return id >= 0 && int(id) < len(g.edges)
}
