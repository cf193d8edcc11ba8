package graph

// UnionFind implements a disjoint-set data structure with path halving
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{parent: parent, rank: make([]byte, n), size: size}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the CSR node indices belonging to the largest
// weakly connected component (treating the directed multigraph as
// undirected). Run before bulk-loading the spatial indices so that a
// bounded Dijkstra never silently fails just because its root sits in a
// disconnected sliver of the extract.
func LargestComponent(g *Graph) []uint32 {
	n := g.NumNodes()
	if n == 0 {
		return nil
	}

	uf := NewUnionFind(n)
	for u := uint32(0); u < n; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v, ok := g.index[g.edges[e].Target]
			if !ok {
				continue
			}
			uf.Union(u, v)
		}
	}

	bestRoot, bestSize := uint32(0), uint32(0)
	for i := uint32(0); i < n; i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot, bestSize = root, uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < n; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// FilterToComponent creates a new Graph containing only the specified CSR
// node indices and the edges between them, preserving EdgeIds/metadata.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	if len(nodes) == 0 {
		return &Graph{index: map[NodeID]uint32{}, metadata: map[NodeID]EdgeMetadata{}}
	}

	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}
	numNodes := uint32(len(nodes))

	type kept struct {
		from, to uint32
		e        Edge
	}
	var edges []kept
	keptBases := make(map[NodeID]bool)

	for _, oldU := range nodes {
		start, end := g.EdgesFrom(oldU)
		for e := start; e < end; e++ {
			edge := g.edges[e]
			oldV, ok := g.index[edge.Target]
			if !ok {
				continue
			}
			if newV, ok := oldToNew[oldV]; ok {
				edges = append(edges, kept{from: oldToNew[oldU], to: newV, e: edge})
				keptBases[edge.ID.BaseID] = true
			}
		}
	}

	numEdges := uint32(len(edges))
	firstOut := make([]uint32, numNodes+1)
	outEdges := make([]Edge, numEdges)
	for _, ke := range edges {
		firstOut[ke.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	pos := make([]uint32, numNodes)
	copy(pos, firstOut[:numNodes])
	for _, ke := range edges {
		outEdges[pos[ke.from]] = ke.e
		pos[ke.from]++
	}

	nodeID := make([]NodeID, numNodes)
	lat := make([]float64, numNodes)
	lon := make([]float64, numNodes)
	index := make(map[NodeID]uint32, numNodes)
	for newIdx, oldIdx := range nodes {
		old := g.NodeAt(oldIdx)
		nodeID[newIdx] = old.ID
		lat[newIdx] = old.Lat
		lon[newIdx] = old.Lon
		index[old.ID] = uint32(newIdx)
	}

	metadata := make(map[NodeID]EdgeMetadata, len(keptBases))
	for base := range keptBases {
		if m, ok := g.metadata[base]; ok {
			metadata[base] = m
		}
	}

	return &Graph{
		nodeID:   nodeID,
		index:    index,
		lat:      lat,
		lon:      lon,
		firstOut: firstOut,
		edges:    outEdges,
		metadata: metadata,
	}
}
