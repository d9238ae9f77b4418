package overlay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overlay/internal/feed"
	"overlay/internal/graph"
	"overlay/internal/graph/memgraph"
)

func fixedBodyServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func testProvider() *memgraph.Graph {
	return memgraph.New([]memgraph.Record{
		{ID: 0, Polyline: orb.LineString{{32.52, 37.98}, {32.53, 37.99}}, SpeedKmH: 50, RoadClass: "primary"},
	})
}

func TestEngine_StartBuildsIndexFromInitialFetch(t *testing.T) {
	edsServer := fixedBodyServer(t, `[
		{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"Name":"Main St"},
			 "geometry":{"type":"LineString","coordinates":[[32.52,37.98],[32.53,37.99]]}}
		]}
	]`)
	areaServer := fixedBodyServer(t, `[]`)
	speedServer := fixedBodyServer(t, `{"data":{"items":[]}}`)

	provider := testProvider()
	engine := New(provider, Config{Feed: feed.Config{
		EdsURL:        edsServer.URL,
		CustomAreaURL: areaServer.URL,
		SpeedLimitURL: speedServer.URL,
	}})

	engine.Start(context.Background())
	defer engine.Stop()

	assert.True(t, engine.index.IsEdsHit(0))
	stats := engine.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Heavy)
}

func TestEngine_BindAndWeightingEndToEnd(t *testing.T) {
	edsServer := fixedBodyServer(t, `[
		{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"Name":"Main St"},
			 "geometry":{"type":"LineString","coordinates":[[32.52,37.98],[32.53,37.99]]}}
		]}
	]`)
	areaServer := fixedBodyServer(t, `[]`)
	speedServer := fixedBodyServer(t, `{"data":{"items":[]}}`)

	provider := testProvider()
	engine := New(provider, Config{Feed: feed.Config{
		EdsURL:        edsServer.URL,
		CustomAreaURL: areaServer.URL,
		SpeedLimitURL: speedServer.URL,
	}})

	engine.Start(context.Background())
	defer engine.Stop()

	hints := graph.NewMapHintBag()
	hints.SetBool("avoid_eds_roads", true)

	decision, _ := engine.Bind(hints, graph.ProfileCar)
	require.True(t, decision.Flags.AvoidEds)

	base := fakeBaseWeighting{}
	wrapped := engine.GetOverlayWeighting(base, decision.Flags)

	assert.Equal(t, 1000.0, wrapped.EdgeWeight(0, false))
}

func TestEngine_HasRecentDataFalseBeforeStart(t *testing.T) {
	provider := testProvider()
	engine := New(provider, Config{})

	assert.False(t, engine.HasRecentData())
}

func TestEngine_RunningAndEdsEntries(t *testing.T) {
	edsServer := fixedBodyServer(t, `[
		{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"Name":"Main St"},
			 "geometry":{"type":"LineString","coordinates":[[32.52,37.98],[32.53,37.99]]}}
		]}
	]`)
	areaServer := fixedBodyServer(t, `[]`)
	speedServer := fixedBodyServer(t, `{"data":{"items":[]}}`)

	engine := New(testProvider(), Config{Feed: feed.Config{
		EdsURL:        edsServer.URL,
		CustomAreaURL: areaServer.URL,
		SpeedLimitURL: speedServer.URL,
	}})

	assert.False(t, engine.Running())
	assert.Equal(t, 0, engine.EdsEntries())

	engine.Start(context.Background())
	assert.True(t, engine.Running())
	assert.Equal(t, 1, engine.EdsEntries())

	engine.Stop()
	assert.False(t, engine.Running())
}

func TestEngine_DebugSampleRespectsLimit(t *testing.T) {
	provider := memgraph.New([]memgraph.Record{
		{ID: 0, Polyline: orb.LineString{{0, 0}, {1, 1}}, SpeedKmH: 50},
		{ID: 1, Polyline: orb.LineString{{2, 2}, {3, 3}}, SpeedKmH: 50},
		{ID: 2, Polyline: orb.LineString{{4, 4}, {5, 5}}, SpeedKmH: 50},
	})
	engine := New(provider, Config{})

	sample := engine.DebugSample(2)
	assert.Len(t, sample, 2)
}

type fakeBaseWeighting struct{}

func (fakeBaseWeighting) EdgeWeight(id graph.EdgeID, reverse bool) float64 { return 100.0 }
func (fakeBaseWeighting) EdgeMillis(id graph.EdgeID, reverse bool) int64   { return 1000 }
func (fakeBaseWeighting) TurnWeight(from, via, to graph.EdgeID) float64    { return 0 }
func (fakeBaseWeighting) TurnMillis(from, via, to graph.EdgeID) int64      { return 0 }
func (fakeBaseWeighting) HasTurnCosts() bool                               { return false }
func (fakeBaseWeighting) MinWeightPerDistance() float64                    { return 0.03 }

var _ graph.Weighting = fakeBaseWeighting{}
