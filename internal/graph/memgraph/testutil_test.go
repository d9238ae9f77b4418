package memgraph

import "github.com/paulmach/orb"

func testLine(lon1, lat1, lon2, lat2 float64) orb.LineString {
	return orb.LineString{{lon1, lat1}, {lon2, lat2}}
}
