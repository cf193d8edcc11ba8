package graph

import (
	"math"

	"github.com/tidwall/rtree"

	"github.com/azybler/mapmatch/pkg/geo"
)

const metersPerDegreeLat = 111_320.0

// squareEnvelope converts a center point and a radius in meters to an
// axis-aligned degree envelope. Square, not circular, per the Scan
// contract — callers needing a circle filter the results themselves.
func squareEnvelope(lat, lon, distMeters float64) (min, max [2]float64) {
	dLat := distMeters / metersPerDegreeLat
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	dLon := distMeters / (metersPerDegreeLat * cosLat)
	return [2]float64{lon - dLon, lat - dLat}, [2]float64{lon + dLon, lat + dLat}
}

// ScanNodes returns nodes inside the axis-aligned square envelope of
// radius distMeters around (lat, lon).
func (g *Graph) ScanNodes(lat, lon, distMeters float64) []Node {
	min, max := squareEnvelope(lat, lon, distMeters)
	var out []Node
	g.nodeTree.Search(min, max, func(_, _ [2]float64, idx uint32) bool {
		out = append(out, g.NodeAt(idx))
		return true
	})
	return out
}

// ScanEdges returns edges whose endpoint-envelope intersects the
// axis-aligned square envelope of radius distMeters around (lat, lon).
func (g *Graph) ScanEdges(lat, lon, distMeters float64) []Edge {
	min, max := squareEnvelope(lat, lon, distMeters)
	var out []Edge
	g.edgeTree.Search(min, max, func(_, _ [2]float64, idx uint32) bool {
		out = append(out, g.edges[idx])
		return true
	})
	return out
}

// ScanNode returns the single nearest node to (lat, lon) by Haversine
// distance, which may be arbitrarily far. The node R-tree is walked in
// box-distance order via Nearby; box distance is measured in degrees, so
// the walk keeps refining until even the smallest metric distance the
// next entry could have exceeds the best match found so far.
func (g *Graph) ScanNode(lat, lon float64) (Node, bool) {
	if g.NumNodes() == 0 {
		return Node{}, false
	}
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	target := [2]float64{lon, lat}

	var best Node
	bestDist := math.Inf(1)
	found := false
	g.nodeTree.Nearby(
		rtree.BoxDist[float64, uint32](target, target, nil),
		func(_, _ [2]float64, idx uint32, dist float64) bool {
			if found && dist*metersPerDegreeLat*cosLat > bestDist {
				return false
			}
			n := g.NodeAt(idx)
			if d := geo.Haversine(lat, lon, n.Lat, n.Lon); d < bestDist {
				best, bestDist = n, d
			}
			found = true
			return true
		},
	)
	return best, found
}

// ProjectedEdge is one result of ScanNodesProjected: the foot of the
// perpendicular from the query point onto edge's line, clamped to the
// segment, paired with the edge it was projected onto.
type ProjectedEdge struct {
	Lat, Lon float64
	Ratio    float64 // 0 = at edge.Source, 1 = at edge.Target
	Edge     Edge
	EdgeIdx  uint32
}

// ScanNodesProjected returns, for every edge whose endpoint-envelope
// intersects the axis-aligned square envelope of radius distMeters around
// (lat, lon), the projection of (lat, lon) onto that edge's line segment.
func (g *Graph) ScanNodesProjected(lat, lon, distMeters float64) []ProjectedEdge {
	min, max := squareEnvelope(lat, lon, distMeters)
	var out []ProjectedEdge
	g.edgeTree.Search(min, max, func(_, _ [2]float64, idx uint32) bool {
		edge := g.edges[idx]
		ui, uok := g.index[edge.Source]
		vi, vok := g.index[edge.Target]
		if !uok || !vok {
			return true
		}
		_, ratio := geo.PointToSegmentDist(lat, lon, g.lat[ui], g.lon[ui], g.lat[vi], g.lon[vi])
		pLat, pLon := geo.PointAtRatio(g.lat[ui], g.lon[ui], g.lat[vi], g.lon[vi], ratio)
		out = append(out, ProjectedEdge{Lat: pLat, Lon: pLon, Ratio: ratio, Edge: edge, EdgeIdx: idx})
		return true
	})
	return out
}
