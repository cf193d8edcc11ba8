package transition

import (
	"github.com/azybler/mapmatch/pkg/costing"
	"github.com/azybler/mapmatch/pkg/geo"
	"github.com/azybler/mapmatch/pkg/graph"
)

// tripFromNodes materializes a costing.Trip from a sequence of map node
// ids, looking up each node's coordinates in g. Nodes that have since
// vanished from the graph are skipped rather than failing the whole trip.
func tripFromNodes(g *graph.Graph, nodes []graph.NodeID) costing.Trip {
	positions := make([][2]float64, 0, len(nodes))
	for _, id := range nodes {
		n, ok := g.NodeByID(id)
		if !ok {
			continue
		}
		positions = append(positions, [2]float64{n.Lat, n.Lon})
	}
	return costing.NewTrip(positions)
}

// haversineLayerOrigins returns the Haversine distance between two
// layers' observed origin points.
func haversineLayerOrigins(aLat, aLon, bLat, bLon float64) float64 {
	return geo.Haversine(aLat, aLon, bLat, bLon)
}
