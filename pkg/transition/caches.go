package transition

import (
	"sync"

	"github.com/azybler/mapmatch/pkg/geo"
	"github.com/azybler/mapmatch/pkg/graph"
)

// successor is one outgoing hop from a node, as computed by
// SuccessorsCache: the target node, the direction-aware edge traversed,
// and the accumulated (weight, distance) cost of that single hop.
type successor struct {
	node graph.NodeID
	edge graph.EdgeID
	cost WeightAndDistance
}

// SuccessorsCache is a read-through cache, keyed by NodeID, of a node's
// outgoing edges with weighted distances. Shared across solves on
// the same RoutingGraph through a single pointer held by the Engine.
type SuccessorsCache struct {
	g *graph.Graph

	mu    sync.Mutex
	cache map[graph.NodeID][]successor
}

// NewSuccessorsCache returns an empty cache over g.
func NewSuccessorsCache(g *graph.Graph) *SuccessorsCache {
	return &SuccessorsCache{g: g, cache: make(map[graph.NodeID][]successor)}
}

// Query returns n's successors, computing and storing them on first
// access. A second call for the same key never recomputes.
func (c *SuccessorsCache) Query(n graph.NodeID) []successor {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[n]; ok {
		return cached
	}

	computed := c.calculate(n)
	c.cache[n] = computed
	return computed
}

func (c *SuccessorsCache) calculate(n graph.NodeID) []successor {
	idx, ok := c.g.Index(n)
	if !ok {
		return nil
	}
	source := c.g.NodeAt(idx)

	start, end := c.g.EdgesFrom(idx)
	out := make([]successor, 0, end-start)
	for e := start; e < end; e++ {
		edge := c.g.EdgeAt(e)

		var distanceCm uint32
		if edge.Target != n {
			target, ok := c.g.NodeByID(edge.Target)
			if !ok {
				continue
			}
			distanceCm = uint32(geo.Haversine(source.Lat, source.Lon, target.Lat, target.Lon) * 100)
		}

		out = append(out, successor{
			node: edge.Target,
			edge: edge.ID,
			cost: WeightAndDistance{Weight: FractionOf(edge.Weight), Distance: distanceCm},
		})
	}
	return out
}

// predicateEntry is one entry of a PredicateCache's reach map: the parent
// of a node on the shortest-path tree rooted at the cache's key, and the
// accumulated cost to reach it.
type predicateEntry struct {
	parent graph.NodeID
	cost   WeightAndDistance
}

// PredicateCache is a read-through cache, keyed by NodeID, of an
// upper-bounded Dijkstra reach: the predecessor map rooted at that node,
// truncated once accumulated distance reaches threshold.
type PredicateCache struct {
	g          *graph.Graph
	successors *SuccessorsCache
	runtime    Runtime
	threshold  uint32 // centimeters

	mu    sync.Mutex
	cache map[graph.NodeID]map[graph.NodeID]predicateEntry
}

// DefaultThresholdCm is the default bounded-Dijkstra reach, 2km in
// centimeters.
const DefaultThresholdCm = 200_000

// NewPredicateCache returns an empty cache over g, sharing successors.
func NewPredicateCache(g *graph.Graph, successors *SuccessorsCache, runtime Runtime) *PredicateCache {
	return &PredicateCache{
		g:          g,
		successors: successors,
		runtime:    runtime,
		threshold:  DefaultThresholdCm,
		cache:      make(map[graph.NodeID]map[graph.NodeID]predicateEntry),
	}
}

// Query returns the predecessor map for n, computing it on first access.
func (c *PredicateCache) Query(n graph.NodeID) map[graph.NodeID]predicateEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[n]; ok {
		return cached
	}

	computed := c.calculate(n)
	c.cache[n] = computed
	return computed
}

// calculate runs a binary-heap Dijkstra from n, filtering successors by
// runtime access and stopping once accumulated distance reaches
// threshold. Every entry in the returned map satisfies
// wd.Distance < threshold.
func (c *PredicateCache) calculate(n graph.NodeID) map[graph.NodeID]predicateEntry {
	result := make(map[graph.NodeID]predicateEntry)

	h := &dijkstraHeap{}
	h.push(dijkstraItem{node: n, parent: graph.NullNodeID, cost: WeightAndDistance{}})

	visited := make(map[graph.NodeID]bool)

	for h.Len() > 0 {
		item := h.pop()
		if visited[item.node] {
			continue
		}
		visited[item.node] = true

		if item.cost.Distance >= c.threshold {
			continue
		}

		if item.node != n {
			result[item.node] = predicateEntry{parent: item.parent, cost: item.cost}
		}

		for _, succ := range c.successors.Query(item.node) {
			if meta, ok := c.g.Metadata(succ.edge.BaseID); ok {
				if !c.runtime.Allowed(meta, graph.Direction(succ.edge.Dir)) {
					continue
				}
			}
			if visited[succ.node] {
				continue
			}
			newCost := item.cost.Add(succ.cost)
			h.push(dijkstraItem{node: succ.node, parent: item.node, cost: newCost})
		}
	}

	return result
}

// dijkstraItem is one entry in the bounded Dijkstra's binary heap.
type dijkstraItem struct {
	node   graph.NodeID
	parent graph.NodeID
	cost   WeightAndDistance
}

// dijkstraHeap is a concrete-typed binary min-heap ordered by
// WeightAndDistance.Less, avoiding interface-boxing overhead in the hot
// predicate-cache expansion path.
type dijkstraHeap struct {
	items []dijkstraItem
}

func (h *dijkstraHeap) Len() int { return len(h.items) }

func (h *dijkstraHeap) push(it dijkstraItem) {
	h.items = append(h.items, it)
	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].cost.Less(h.items[parent].cost) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *dijkstraHeap) pop() dijkstraItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]

	i := 0
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.items[left].cost.Less(h.items[smallest].cost) {
			smallest = left
		}
		if right < n && h.items[right].cost.Less(h.items[smallest].cost) {
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
