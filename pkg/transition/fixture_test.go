package transition

import (
	"testing"

	"github.com/paulmach/osm"

	"github.com/azybler/mapmatch/pkg/costing"
	"github.com/azybler/mapmatch/pkg/graph"
	"github.com/azybler/mapmatch/pkg/osmsrc"
)

// lineGraph builds a small directed graph along a single meridian
// (longitude 103.000), spaced ~111m apart: 10 -> 20 -> 30 -> 40 -> 50, each
// direction only forward, matching pkg/graph's own test fixtures.
func lineGraph(t *testing.T) *graph.Graph {
	t.Helper()
	result := &osmsrc.ParseResult{
		Edges: []osmsrc.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, BaseNodeID: 10, Weight: 1},
			{FromNodeID: 20, ToNodeID: 30, BaseNodeID: 20, Weight: 1},
			{FromNodeID: 30, ToNodeID: 40, BaseNodeID: 30, Weight: 1},
			{FromNodeID: 40, ToNodeID: 50, BaseNodeID: 40, Weight: 1},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.000, 20: 1.001, 30: 1.002, 40: 1.003, 50: 1.004},
		NodeLon: map[osm.NodeID]float64{10: 103.000, 20: 103.000, 30: 103.000, 40: 103.000, 50: 103.000},
	}
	g := graph.Build(result)
	g.BuildIndices()
	return g
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(lineGraph(t))
}

func defaultStrategies() costing.Strategies {
	return costing.DefaultStrategies()
}
