package graph

import (
	"errors"
	"math"
)

// ErrNoRoute is returned when no path exists between the requested nodes.
var ErrNoRoute = errors.New("no route found")

// ErrPointTooFar is returned when a query point cannot be snapped to any
// node, i.e. the graph is empty.
var ErrPointTooFar = errors.New("point too far from any road")

// minHeap is a concrete-typed binary min-heap over (node index, cost),
// avoiding interface-boxing overhead in the route_points/route_nodes
// Dijkstra — the same shape as the upper-bounded Dijkstra used by the
// transition solver's caches.
type minHeap struct {
	items []heapItem
}

type heapItem struct {
	node uint32
	cost uint64
}

func (h *minHeap) push(node uint32, cost uint64) {
	h.items = append(h.items, heapItem{node, cost})
	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].cost >= h.items[parent].cost {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) pop() heapItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	i := 0
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.items[left].cost < h.items[smallest].cost {
			smallest = left
		}
		if right < n && h.items[right].cost < h.items[smallest].cost {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
	return top
}

func (h *minHeap) len() int { return len(h.items) }

// RoutePoints runs plain A* (zero heuristic, i.e. Dijkstra) between the
// nodes nearest to start and end, with each Edge.Weight as its cost, and
// returns the total cost and the sequence of Nodes visited.
func (g *Graph) RoutePoints(startLat, startLon, endLat, endLon float64) (uint64, []Node, error) {
	startNode, ok := g.ScanNode(startLat, startLon)
	if !ok {
		return 0, nil, ErrPointTooFar
	}
	endNode, ok := g.ScanNode(endLat, endLon)
	if !ok {
		return 0, nil, ErrPointTooFar
	}
	startIdx, _ := g.index[startNode.ID]
	endIdx, _ := g.index[endNode.ID]
	return g.routeIndices(startIdx, endIdx)
}

// RouteNodes runs plain A* between two NodeIds already present in the
// graph, skipping the snap step.
func (g *Graph) RouteNodes(start, end NodeID) (uint64, []Node, error) {
	startIdx, ok := g.index[start]
	if !ok {
		return 0, nil, ErrNoRoute
	}
	endIdx, ok := g.index[end]
	if !ok {
		return 0, nil, ErrNoRoute
	}
	return g.routeIndices(startIdx, endIdx)
}

func (g *Graph) routeIndices(startIdx, endIdx uint32) (uint64, []Node, error) {
	n := g.NumNodes()
	dist := make([]uint64, n)
	pred := make([]int64, n)
	for i := range dist {
		dist[i] = math.MaxUint64
		pred[i] = -1
	}
	dist[startIdx] = 0

	var h minHeap
	h.push(startIdx, 0)

	for h.len() > 0 {
		top := h.pop()
		if top.cost > dist[top.node] {
			continue
		}
		if top.node == endIdx {
			break
		}
		start, end := g.EdgesFrom(top.node)
		for e := start; e < end; e++ {
			edge := g.edges[e]
			vi, ok := g.index[edge.Target]
			if !ok {
				continue
			}
			nd := top.cost + uint64(edge.Weight)
			if nd < dist[vi] {
				dist[vi] = nd
				pred[vi] = int64(top.node)
				h.push(vi, nd)
			}
		}
	}

	if dist[endIdx] == math.MaxUint64 {
		return 0, nil, ErrNoRoute
	}

	var path []uint32
	for cur := int64(endIdx); cur != -1; cur = pred[cur] {
		path = append(path, uint32(cur))
	}
	// Reverse into start->end order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	nodes := make([]Node, len(path))
	for i, idx := range path {
		nodes[i] = g.NodeAt(idx)
	}
	return dist[endIdx], nodes, nil
}
