package graph

import (
	"testing"

	"github.com/paulmach/osm"

	"github.com/azybler/mapmatch/pkg/osmsrc"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	for i := range uint32(5) {
		if uf.Find(i) != i {
			t.Errorf("Find(%d) = %d, want %d", i, uf.Find(i), i)
		}
	}

	uf.Union(0, 1)
	if uf.Find(0) != uf.Find(1) {
		t.Error("0 and 1 should be in same set")
	}

	uf.Union(2, 3)
	if uf.Find(2) != uf.Find(3) {
		t.Error("2 and 3 should be in same set")
	}

	if uf.Find(0) == uf.Find(2) {
		t.Error("0 and 2 should be in different sets")
	}

	uf.Union(1, 3)
	if uf.Find(0) != uf.Find(3) {
		t.Error("0 and 3 should now be in same set")
	}
}

func twoComponentResult() *osmsrc.ParseResult {
	return &osmsrc.ParseResult{
		Edges: []osmsrc.RawEdge{
			// Component 1: 10 <-> 20 <-> 30
			{FromNodeID: 10, ToNodeID: 20, BaseNodeID: 10, Weight: 1},
			{FromNodeID: 20, ToNodeID: 10, BaseNodeID: 10, Weight: 1},
			{FromNodeID: 20, ToNodeID: 30, BaseNodeID: 20, Weight: 2},
			{FromNodeID: 30, ToNodeID: 20, BaseNodeID: 20, Weight: 2},
			// Component 2: 40 <-> 50
			{FromNodeID: 40, ToNodeID: 50, BaseNodeID: 40, Weight: 3},
			{FromNodeID: 50, ToNodeID: 40, BaseNodeID: 40, Weight: 3},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 2.0, 50: 2.1},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 104.0, 50: 104.1},
	}
}

func TestLargestComponent(t *testing.T) {
	g := Build(twoComponentResult())
	nodes := LargestComponent(g)

	if len(nodes) != 3 {
		t.Fatalf("LargestComponent has %d nodes, want 3", len(nodes))
	}
}

func TestFilterToComponent(t *testing.T) {
	result := &osmsrc.ParseResult{
		Edges: []osmsrc.RawEdge{
			// Component 1: triangle
			{FromNodeID: 10, ToNodeID: 20, BaseNodeID: 10, Weight: 1},
			{FromNodeID: 20, ToNodeID: 30, BaseNodeID: 20, Weight: 2},
			{FromNodeID: 30, ToNodeID: 10, BaseNodeID: 30, Weight: 3},
			// Component 2: isolated pair
			{FromNodeID: 40, ToNodeID: 50, BaseNodeID: 40, Weight: 4},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 2.0, 50: 2.1},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 104.0, 50: 104.1},
	}

	g := Build(result)
	nodes := LargestComponent(g)
	filtered := FilterToComponent(g, nodes)

	if filtered.NumNodes() != 3 {
		t.Fatalf("filtered NumNodes = %d, want 3", filtered.NumNodes())
	}
	if filtered.NumEdges() != 3 {
		t.Fatalf("filtered NumEdges = %d, want 3", filtered.NumEdges())
	}

	for i := uint32(1); i <= filtered.NumNodes(); i++ {
		if filtered.firstOut[i] < filtered.firstOut[i-1] {
			t.Errorf("firstOut not monotonic at %d", i)
		}
	}
	if filtered.firstOut[filtered.NumNodes()] != filtered.NumEdges() {
		t.Error("firstOut[NumNodes] != NumEdges")
	}

	var total uint32
	for e := uint32(0); e < filtered.NumEdges(); e++ {
		total += filtered.EdgeAt(e).Weight
	}
	if total != 6 {
		t.Errorf("total weight = %d, want 6", total)
	}

	// The isolated pair's metadata must not leak into the filtered graph.
	if _, ok := filtered.Metadata(NodeID(40)); ok {
		t.Error("metadata for dropped component base id should not survive filtering")
	}
}

func TestFilterToComponentEmptyGraph(t *testing.T) {
	g := &Graph{index: map[NodeID]uint32{}, metadata: map[NodeID]EdgeMetadata{}}
	nodes := LargestComponent(g)
	if nodes != nil {
		t.Errorf("expected nil for empty graph, got %v", nodes)
	}

	filtered := FilterToComponent(g, nil)
	if filtered.NumNodes() != 0 || filtered.NumEdges() != 0 {
		t.Errorf("expected empty graph, got %d nodes, %d edges", filtered.NumNodes(), filtered.NumEdges())
	}
}
