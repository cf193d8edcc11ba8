package graph

import (
	"testing"

	"github.com/paulmach/osm"

	"github.com/azybler/mapmatch/pkg/osmsrc"
)

func lineGraph(t *testing.T) *Graph {
	t.Helper()
	// 10 -> 20 -> 30 -> 40, plus a costlier direct 10 -> 40 shortcut.
	result := &osmsrc.ParseResult{
		Edges: []osmsrc.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, BaseNodeID: 10, Weight: 1},
			{FromNodeID: 20, ToNodeID: 30, BaseNodeID: 20, Weight: 1},
			{FromNodeID: 30, ToNodeID: 40, BaseNodeID: 30, Weight: 1},
			{FromNodeID: 10, ToNodeID: 40, BaseNodeID: 40, Weight: 10},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.000, 20: 1.001, 30: 1.002, 40: 1.003},
		NodeLon: map[osm.NodeID]float64{10: 103.000, 20: 103.000, 30: 103.000, 40: 103.000},
	}
	g := Build(result)
	g.BuildIndices()
	return g
}

func TestRouteNodesPicksCheapestPath(t *testing.T) {
	g := lineGraph(t)

	cost, nodes, err := g.RouteNodes(NodeID(10), NodeID(40))
	if err != nil {
		t.Fatalf("RouteNodes: %v", err)
	}
	if cost != 3 {
		t.Errorf("cost = %d, want 3 (via 20,30 not the weight-10 shortcut)", cost)
	}
	if len(nodes) != 4 {
		t.Fatalf("path length = %d, want 4", len(nodes))
	}
	if nodes[0].ID != NodeID(10) || nodes[len(nodes)-1].ID != NodeID(40) {
		t.Errorf("path endpoints = %v..%v, want 10..40", nodes[0].ID, nodes[len(nodes)-1].ID)
	}
}

func TestRouteNodesNoRoute(t *testing.T) {
	g := lineGraph(t)
	_, _, err := g.RouteNodes(NodeID(40), NodeID(10))
	if err != ErrNoRoute {
		t.Errorf("err = %v, want ErrNoRoute", err)
	}
}

func TestRoutePointsSnaps(t *testing.T) {
	g := lineGraph(t)
	cost, nodes, err := g.RoutePoints(1.0001, 103.0001, 1.0029, 103.0001)
	if err != nil {
		t.Fatalf("RoutePoints: %v", err)
	}
	if cost != 3 {
		t.Errorf("cost = %d, want 3", cost)
	}
	if len(nodes) != 4 {
		t.Errorf("path length = %d, want 4", len(nodes))
	}
}

func TestScanNodesProjectedBounded(t *testing.T) {
	g := lineGraph(t)
	projected := g.ScanNodesProjected(1.0005, 103.0001, 1000)
	if len(projected) == 0 {
		t.Fatal("expected at least one projected edge")
	}
	for _, p := range projected {
		if p.Ratio < 0 || p.Ratio > 1 {
			t.Errorf("ratio %f out of [0,1]", p.Ratio)
		}
	}
}

func TestScanNodeFindsNearest(t *testing.T) {
	g := lineGraph(t)
	n, ok := g.ScanNode(1.000, 103.000)
	if !ok {
		t.Fatal("expected a nearest node")
	}
	if n.ID != NodeID(10) {
		t.Errorf("nearest = %v, want 10", n.ID)
	}
}

func TestScanNodeNearestBeatsDiagonalNeighbor(t *testing.T) {
	// Node 1 sits ~600m due east of the query point; node 2 sits on the
	// diagonal at ~(450m, 450m), i.e. ~636m away but inside any square
	// window that excludes node 1. The true nearest is node 1.
	result := &osmsrc.ParseResult{
		Edges: []osmsrc.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, BaseNodeID: 1, Weight: 1},
		},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.0040470},
		NodeLon: map[osm.NodeID]float64{1: 103.0053967, 2: 103.0040477},
	}
	g := Build(result)
	g.BuildIndices()

	n, ok := g.ScanNode(1.000, 103.000)
	if !ok {
		t.Fatal("expected a nearest node")
	}
	if n.ID != NodeID(1) {
		t.Errorf("nearest = %v, want 1 (closer by Haversine than the diagonal node)", n.ID)
	}
}
