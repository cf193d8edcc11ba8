package transition

import (
	"container/heap"

	"github.com/azybler/mapmatch/pkg/costing"
	"github.com/azybler/mapmatch/pkg/graph"
)

// SolveContext bundles everything a solve needs to cost a candidate-graph
// edge: the routing graph itself, the layers (for origin/width lookups),
// the candidate graph, the cost strategies, and the caches used to
// reconstruct a path between two map nodes.
type SolveContext struct {
	Graph      *graph.Graph
	Layers     []Layer
	Candidates *CandidateGraph
	Costing    costing.Strategies
	Successors *SuccessorsCache
	Predicate  *PredicateCache
}

// SelectiveForwardSolver runs an upper-bounded-Dijkstra-backed A* over the
// candidate DAG: a zero heuristic makes it equivalent to Dijkstra,
// but reach() is computed lazily per expansion rather than materialized
// up front, since the real cost of an edge depends on the live-computed
// transition strategy, not a stored weight.
type SelectiveForwardSolver struct {
	ctx *SolveContext

	// reachableHash records, for each (source, target) pair expanded
	// during the search, the Reachable describing how target was
	// reached — consulted after astar returns to rebuild the full
	// interpolated path.
	reachableHash map[[2]CandidateID]Reachable
}

// NewSelectiveForwardSolver returns a solver bound to ctx.
func NewSelectiveForwardSolver(ctx *SolveContext) *SelectiveForwardSolver {
	return &SelectiveForwardSolver{
		ctx:           ctx,
		reachableHash: make(map[[2]CandidateID]Reachable),
	}
}

// pathBuilder walks parents from source back to target, collecting
// [source, ..., target] and returning it reversed into [target, ...,
// source] order (the forward path from the Dijkstra root), or nil if
// target is never found.
func pathBuilder(source, target graph.NodeID, parents map[graph.NodeID]predicateEntry) []graph.NodeID {
	rev := []graph.NodeID{source}
	next := source
	for {
		// The Dijkstra root itself carries no parent entry, so the target
		// check must come before the lookup.
		if next == target {
			for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
				rev[i], rev[j] = rev[j], rev[i]
			}
			return rev
		}
		entry, ok := parents[next]
		if !ok {
			return nil
		}
		rev = append(rev, entry.parent)
		next = entry.parent
	}
}

// reachable derives, for a source candidate, which of targets are
// reachable, and by which map path, using the bounded Dijkstra predicate
// map rooted at source's edge target node.
func (s *SelectiveForwardSolver) reachable(source CandidateID, targets []CandidateID) []Reachable {
	sourceCandidate, ok := s.ctx.Candidates.Candidate(source)
	if !ok {
		return nil
	}

	predicateMap := s.ctx.Predicate.Query(sourceCandidate.Edge.Target)

	out := make([]Reachable, 0, len(targets))
	for _, target := range targets {
		candidate, ok := s.ctx.Candidates.Candidate(target)
		if !ok {
			continue
		}

		if candidate.Edge.ID == sourceCandidate.Edge.ID {
			commonSource := candidate.Edge.Source == sourceCandidate.Edge.Source
			commonTarget := candidate.Edge.Target == sourceCandidate.Edge.Target
			trackingForward := commonSource && commonTarget

			sourcePct, sok := sourceCandidate.Percentage(s.ctx.Graph)
			targetPct, tok := candidate.Percentage(s.ctx.Graph)
			if sok && tok && trackingForward && sourcePct <= targetPct {
				out = append(out, NewReachable(source, target, nil).DistanceOnly())
				continue
			}
			// Same edge id but moving backwards along it, or a different
			// node pair sharing that id: fall through to routing.
		}

		pathNodes := pathBuilder(candidate.Edge.Source, sourceCandidate.Edge.Target, predicateMap)
		if pathNodes == nil {
			continue
		}

		path := make([]graph.Edge, 0, len(pathNodes)-1)
		complete := true
		for i := 0; i+1 < len(pathNodes); i++ {
			edge, ok := s.ctx.Graph.EdgeBetween(pathNodes[i], pathNodes[i+1])
			if !ok {
				complete = false
				break
			}
			path = append(path, edge)
		}
		if !complete {
			continue
		}

		out = append(out, NewReachable(source, target, path))
	}
	return out
}

// reach returns the successors of source, paired with the live-computed
// CandidateEdge cost of stepping to each. Two fast paths skip costing
// entirely: the start node costs nothing to leave, and an end successor
// short-circuits the rest of the expansion.
func (s *SelectiveForwardSolver) reach(start, end, source CandidateID) []weightedSuccessor {
	successors := s.ctx.Candidates.Successors(source)

	if source == start {
		out := make([]weightedSuccessor, len(successors))
		for i, c := range successors {
			out[i] = weightedSuccessor{target: c, cost: 0}
		}
		return out
	}

	for _, c := range successors {
		if c == end {
			return []weightedSuccessor{{target: end, cost: 0}}
		}
	}

	reached := s.reachable(source, successors)

	out := make([]weightedSuccessor, 0, len(reached))
	for _, r := range reached {
		sourceLayer, targetLayer := -1, -1
		if sc, ok := s.ctx.Candidates.Candidate(r.Source); ok {
			sourceLayer = sc.Location.LayerID
		}
		if tc, ok := s.ctx.Candidates.Candidate(r.Target); ok {
			targetLayer = tc.Location.LayerID
		}

		var layerWidth float64
		if sourceLayer >= 0 && sourceLayer < len(s.ctx.Layers) && targetLayer >= 0 && targetLayer < len(s.ctx.Layers) {
			sl := s.ctx.Layers[sourceLayer]
			tl := s.ctx.Layers[targetLayer]
			layerWidth = haversineLayerOrigins(sl.OriginLat, sl.OriginLon, tl.OriginLat, tl.OriginLon)
		}

		pathNodes := r.PathNodes()
		trip := tripFromNodes(s.ctx.Graph, pathNodes)

		targetCandidate, _ := s.ctx.Candidates.Candidate(r.Target)
		sourceCandidate, _ := s.ctx.Candidates.Candidate(r.Source)

		transitionCost := s.ctx.Costing.TransitionCost(costing.TransitionContext{
			OptimalPath: trip,
			SourceLat:   sourceCandidate.Lat,
			SourceLon:   sourceCandidate.Lon,
			TargetLat:   targetCandidate.Lat,
			TargetLon:   targetCandidate.Lon,
			LayerWidth:  layerWidth,
			Resolution:  r.Resolution,
		})
		emissionCost := s.ctx.Candidates.Emission(r.Target)

		transitionWeighted := uint32(float64(transitionCost) * 0.6)
		emissionWeighted := uint32(float64(emissionCost) * 0.4)
		cost := saturatingAdd(emissionWeighted, transitionWeighted)

		s.reachableHash[r.Hash()] = r
		out = append(out, weightedSuccessor{target: r.Target, cost: cost})
	}
	return out
}

func saturatingAdd(a, b uint32) uint32 {
	sum := uint64(a) + uint64(b)
	if sum > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(sum)
}

type weightedSuccessor struct {
	target CandidateID
	cost   uint32
}

// Solve runs attach-ends, weave, then an A* search with zero heuristic
// from start to end over the live-costed candidate DAG, returning the
// CollapsedPath on success.
func (s *SelectiveForwardSolver) Solve() (*CollapsedPath, error) {
	start, end, err := s.ctx.Candidates.AttachEnds(s.ctx.Layers)
	if err != nil {
		return nil, err
	}
	s.ctx.Candidates.Weave(s.ctx.Layers)

	path, totalCost, err := s.astar(start, end)
	if err != nil {
		return nil, err
	}

	reached := make([]Reachable, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		if r, ok := s.reachableHash[[2]CandidateID{path[i], path[i+1]}]; ok {
			reached = append(reached, r)
		}
	}

	return &CollapsedPath{
		Cost:         totalCost,
		Route:        path,
		Interpolated: reached,
		Candidates:   s.ctx.Candidates,
	}, nil
}

type astarItem struct {
	node     CandidateID
	priority uint64 // g-score; heuristic is always zero
	index    int
}

type astarHeap []*astarItem

func (h astarHeap) Len() int           { return len(h) }
func (h astarHeap) Less(i, j int) bool { return h[i].priority < h[j].priority }
func (h astarHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *astarHeap) Push(x interface{}) {
	item := x.(*astarItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *astarHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// astar performs a Dijkstra-equivalent search (zero heuristic) over the
// candidate DAG from start to end, calling reach() to expand each node
// lazily rather than precomputing the full edge set.
func (s *SelectiveForwardSolver) astar(start, end CandidateID) ([]CandidateID, uint32, error) {
	gScore := map[CandidateID]uint64{start: 0}
	cameFrom := map[CandidateID]CandidateID{}
	visited := map[CandidateID]bool{}

	h := &astarHeap{}
	heap.Init(h)
	heap.Push(h, &astarItem{node: start, priority: 0})

	for h.Len() > 0 {
		item := heap.Pop(h).(*astarItem)
		current := item.node
		if visited[current] {
			continue
		}
		visited[current] = true

		if current == end {
			return s.reconstruct(cameFrom, end), uint32(gScore[end]), nil
		}

		for _, succ := range s.reach(start, end, current) {
			if visited[succ.target] {
				continue
			}
			tentative := gScore[current] + uint64(succ.cost)
			if existing, ok := gScore[succ.target]; !ok || tentative < existing {
				gScore[succ.target] = tentative
				cameFrom[succ.target] = current
				heap.Push(h, &astarItem{node: succ.target, priority: tentative})
			}
		}
	}

	return nil, 0, &CollapseFailure{Reason: ErrNoPathFound}
}

func (s *SelectiveForwardSolver) reconstruct(cameFrom map[CandidateID]CandidateID, end CandidateID) []CandidateID {
	path := []CandidateID{end}
	cur := end
	for {
		parent, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, parent)
		cur = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
