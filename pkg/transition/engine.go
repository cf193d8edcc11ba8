package transition

import (
	"context"
	"errors"
	"fmt"

	"github.com/azybler/mapmatch/pkg/costing"
	"github.com/azybler/mapmatch/pkg/graph"
)

// Engine is the external surface described in the core's interface
// contract: load a routing graph, then match/snap/route against it. It
// wraps the lower-level RoutingGraph with the costing strategies and
// read-through caches a solve needs, without pkg/graph ever importing
// back into pkg/transition.
type Engine struct {
	graph   *graph.Graph
	costing costing.Strategies
	succ    *SuccessorsCache
}

// LoadEngine builds a RoutingGraph from an OSM PBF file at path and wraps
// it with the default costing strategies.
func LoadEngine(ctx context.Context, path string) (*Engine, error) {
	g, err := graph.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return NewEngine(g), nil
}

// NewEngine wraps an already-built RoutingGraph.
func NewEngine(g *graph.Graph) *Engine {
	return &Engine{
		graph:   g,
		costing: costing.DefaultStrategies(),
		succ:    NewSuccessorsCache(g),
	}
}

// WithStrategies returns a copy of e configured with custom costing
// strategies.
func (e *Engine) WithStrategies(s costing.Strategies) *Engine {
	return &Engine{graph: e.graph, costing: s, succ: e.succ}
}

// Graph exposes the underlying RoutingGraph for direct scan/route calls.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Match runs the full HMM solve over linestring under runtime, producing
// a RoutedPath with both the one-per-observation discretized path and
// the fully interpolated turn-by-turn path.
func (e *Engine) Match(runtime Runtime, linestring []Point) (RoutedPath, error) {
	return e.solve(runtime, linestring, false)
}

// Snap runs the solve constrained to single-edge resolution: like Match,
// but every layer is collapsed to its single lowest-emission candidate
// before solving, so each discretized point sits on its nearest edge. The
// solver still routes between those chosen edges to build the
// interpolated path.
func (e *Engine) Snap(runtime Runtime, linestring []Point) (RoutedPath, error) {
	return e.solve(runtime, linestring, true)
}

func (e *Engine) solve(runtime Runtime, linestring []Point, snapOnly bool) (RoutedPath, error) {
	if len(linestring) < 2 {
		return RoutedPath{}, ErrNoInputPoints
	}

	generator := NewLayerGenerator(e.graph, e.costing)
	layers, candidates := generator.WithPoints(linestring)

	if snapOnly {
		layers = collapseToBest(layers, candidates)
	}

	predicate := NewPredicateCache(e.graph, e.succ, runtime)
	ctx := &SolveContext{
		Graph:      e.graph,
		Layers:     layers,
		Candidates: candidates,
		Costing:    e.costing,
		Successors: e.succ,
		Predicate:  predicate,
	}

	solver := NewSelectiveForwardSolver(ctx)
	collapsed, err := solver.Solve()
	if err != nil {
		var endAttach *EndAttachFailure
		var collapse *CollapseFailure
		if errors.As(err, &endAttach) || errors.As(err, &collapse) {
			return RoutedPath{}, err
		}
		return RoutedPath{}, &CollapseFailure{Reason: err}
	}

	return NewRoutedPath(collapsed, e.graph), nil
}

// collapseToBest replaces every layer's candidate set with just its
// single lowest-emission candidate, implementing the single-edge
// resolution constraint of Snap.
func collapseToBest(layers []Layer, candidates *CandidateGraph) []Layer {
	out := make([]Layer, len(layers))
	for i, layer := range layers {
		if len(layer.Nodes) == 0 {
			out[i] = layer
			continue
		}
		best := layer.Nodes[0]
		bestCost := candidates.Emission(best)
		for _, id := range layer.Nodes[1:] {
			if c := candidates.Emission(id); c < bestCost {
				best, bestCost = id, c
			}
		}
		out[i] = Layer{Nodes: []CandidateID{best}, OriginLat: layer.OriginLat, OriginLon: layer.OriginLon}
	}
	return out
}

// RoutePoints delegates to the RoutingGraph's plain A* between two
// coordinates.
func (e *Engine) RoutePoints(startLat, startLon, endLat, endLon float64) (uint64, []graph.Node, error) {
	return e.graph.RoutePoints(startLat, startLon, endLat, endLon)
}

// ScanNode delegates to the RoutingGraph's nearest-node query.
func (e *Engine) ScanNode(lat, lon float64) (graph.Node, bool) {
	return e.graph.ScanNode(lat, lon)
}

// ScanNodes delegates to the RoutingGraph's radius node query.
func (e *Engine) ScanNodes(lat, lon, distMeters float64) []graph.Node {
	return e.graph.ScanNodes(lat, lon, distMeters)
}

// ScanNodesProjected delegates to the RoutingGraph's edge-projection
// query.
func (e *Engine) ScanNodesProjected(lat, lon, distMeters float64) []graph.ProjectedEdge {
	return e.graph.ScanNodesProjected(lat, lon, distMeters)
}
