package memgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseWeighting_EdgeWeight(t *testing.T) {
	g := New([]Record{
		{ID: 0, Polyline: testLine(32.52, 37.98, 32.53, 37.99), SpeedKmH: 50},
	})
	w := NewBaseWeighting(g)

	weight := w.EdgeWeight(0, false)
	assert.Greater(t, weight, 0.0)

	assert.Equal(t, weight, w.EdgeWeight(0, true), "undirected demo weighting is symmetric")
	assert.Equal(t, int64(weight*1000), w.EdgeMillis(0, false))
}

func TestBaseWeighting_InvalidEdge(t *testing.T) {
	g := New(nil)
	w := NewBaseWeighting(g)

	assert.Equal(t, 0.0, w.EdgeWeight(0, false))
}

func TestBaseWeighting_NoTurnCosts(t *testing.T) {
	g := New([]Record{{ID: 0, Polyline: testLine(0, 0, 1, 1), SpeedKmH: 50}})
	w := NewBaseWeighting(g)

	assert.False(t, w.HasTurnCosts())
	assert.Equal(t, 0.0, w.TurnWeight(0, 0, 0))
	assert.Equal(t, int64(0), w.TurnMillis(0, 0, 0))
	assert.Greater(t, w.MinWeightPerDistance(), 0.0)
}
