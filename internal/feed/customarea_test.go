package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCustomAreas_ParsesValidEntries(t *testing.T) {
	body := `[
		{"id":"area-1","location":"37.95, 32.53","half_diameter":500},
		{"id":"area-2","location":"38.00, 32.60","half_diameter":250,"metadata":{"reason":"roadworks"}}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetch := FetchCustomAreas(HTTPCustomAreaSource{URL: server.URL}, nil)
	snapshot, err := fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Areas, 2)

	area1 := snapshot.Areas["area-1"]
	assert.InDelta(t, 37.95, area1.CenterLat, 0.0001)
	assert.InDelta(t, 32.53, area1.CenterLon, 0.0001)
	assert.InDelta(t, 500, area1.RadiusM, 0.0001)
}

func TestFetchCustomAreas_RejectsInvalidRadiusAndBounds(t *testing.T) {
	body := `[
		{"id":"bad-radius","location":"37.95, 32.53","half_diameter":0},
		{"id":"bad-lat","location":"123, 32.53","half_diameter":200},
		{"location":"37.95, 32.53","half_diameter":200},
		{"id":"good","location":"37.95, 32.53","half_diameter":200}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetch := FetchCustomAreas(HTTPCustomAreaSource{URL: server.URL}, nil)
	snapshot, err := fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.Areas, 1)
	_, ok := snapshot.Areas["good"]
	assert.True(t, ok)
}

func TestParseLocation(t *testing.T) {
	lat, lon, err := parseLocation("37.95, 32.53")
	require.NoError(t, err)
	assert.InDelta(t, 37.95, lat, 0.0001)
	assert.InDelta(t, 32.53, lon, 0.0001)

	_, _, err = parseLocation("not-a-location")
	assert.Error(t, err)
}
