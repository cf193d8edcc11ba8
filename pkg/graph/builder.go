package graph

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/paulmach/osm"
	"github.com/tidwall/rtree"

	"github.com/azybler/mapmatch/pkg/osmsrc"
)

// Build compacts a ParseResult into a CSR Graph with a populated metadata
// map, but without spatial indices — callers needing Scan should use Load,
// or call BuildIndices themselves after further filtering (e.g. largest
// connected component extraction).
func Build(result *osmsrc.ParseResult) *Graph {
	edges := result.Edges
	if len(edges) == 0 {
		return &Graph{index: map[NodeID]uint32{}, metadata: map[NodeID]EdgeMetadata{}}
	}

	// Step 1: retain only nodes referenced by at least one edge, building
	// the hash index during the retention pass.
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	for i := range edges {
		addNode(edges[i].FromNodeID)
		addNode(edges[i].ToNodeID)
	}
	numNodes := uint32(len(nodeIDs))

	// Step 2: remap edges to compact indices, carrying the EdgeID/metadata.
	type compactEdge struct {
		from, to uint32
		e        Edge
	}
	compact := make([]compactEdge, len(edges))
	metadata := make(map[NodeID]EdgeMetadata, len(edges))
	for i, re := range edges {
		base := NodeID(re.BaseNodeID)
		dir := Forward
		if re.Direction == osmsrc.Backward {
			dir = Backward
		}
		compact[i] = compactEdge{
			from: nodeSet[re.FromNodeID],
			to:   nodeSet[re.ToNodeID],
			e: Edge{
				Source: NodeID(re.FromNodeID),
				Target: NodeID(re.ToNodeID),
				Weight: re.Weight,
				ID:     EdgeID{BaseID: base, Dir: dir},
			},
		}
		metadata[base] = EdgeMetadata{
			LaneCount:  re.Meta.LaneCount,
			SpeedLimit: re.Meta.SpeedLimit,
			Access:     re.Meta.Access,
			RoadClass:  re.Meta.RoadClass,
		}
	}

	// Step 3: sort by source so the CSR row pointers can be built by a
	// single counting pass.
	sort.Slice(compact, func(i, j int) bool {
		if compact[i].from != compact[j].from {
			return compact[i].from < compact[j].from
		}
		return compact[i].to < compact[j].to
	})

	numEdges := uint32(len(compact))
	firstOut := make([]uint32, numNodes+1)
	outEdges := make([]Edge, numEdges)
	for i, ce := range compact {
		outEdges[i] = ce.e
		firstOut[ce.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	nodeIDOut := make([]NodeID, numNodes)
	lat := make([]float64, numNodes)
	lon := make([]float64, numNodes)
	index := make(map[NodeID]uint32, numNodes)
	for id, idx := range nodeSet {
		nid := NodeID(id)
		nodeIDOut[idx] = nid
		lat[idx] = result.NodeLat[id]
		lon[idx] = result.NodeLon[id]
		index[nid] = idx
	}

	return &Graph{
		nodeID:   nodeIDOut,
		index:    index,
		lat:      lat,
		lon:      lon,
		firstOut: firstOut,
		edges:    outEdges,
		metadata: metadata,
	}
}

// BuildIndices bulk-loads the node and edge R-trees from a finalized
// Graph's CSR arrays. Called once, after any connected-component
// filtering, so the trees never need to support delete/rebalance. Exposed
// so callers assembling a Graph outside of Load (tests, fixtures) can
// still populate the spatial indices Scan* depends on.
func (g *Graph) BuildIndices() {
	g.nodeTree = rtree.RTreeG[uint32]{}
	g.edgeTree = rtree.RTreeG[uint32]{}

	for idx := uint32(0); idx < g.NumNodes(); idx++ {
		pt := [2]float64{g.lon[idx], g.lat[idx]}
		g.nodeTree.Insert(pt, pt, idx)
	}

	for e := uint32(0); e < g.NumEdges(); e++ {
		edge := g.edges[e]
		ui, uok := g.index[edge.Source]
		vi, vok := g.index[edge.Target]
		if !uok || !vok {
			continue
		}
		min, max := edgeEnvelope(g.lat[ui], g.lon[ui], g.lat[vi], g.lon[vi])
		g.edgeTree.Insert(min, max, e)
	}
}

func edgeEnvelope(uLat, uLon, vLat, vLon float64) (min, max [2]float64) {
	minLon, maxLon := uLon, vLon
	if minLon > maxLon {
		minLon, maxLon = maxLon, minLon
	}
	minLat, maxLat := uLat, vLat
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	return [2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}
}

// Load builds a complete RoutingGraph from an OSM PBF file: parse, compact
// into CSR, restrict to the largest connected component, and bulk-load the
// spatial indices.
func Load(ctx context.Context, path string, opts ...osmsrc.ParseOptions) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graph load: %w", err)
	}
	defer f.Close()

	log.Printf("Parsing %s...", path)
	result, err := osmsrc.Parse(ctx, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("graph load: parse: %w", err)
	}

	g := Build(result)
	log.Printf("Built graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	component := LargestComponent(g)
	if uint32(len(component)) != g.NumNodes() {
		log.Printf("Restricting to largest connected component: %d/%d nodes", len(component), g.NumNodes())
		g = FilterToComponent(g, component)
	}

	g.BuildIndices()
	log.Printf("Spatial indices built: %d node entries, %d edge entries", g.NumNodes(), g.NumEdges())

	return g, nil
}
