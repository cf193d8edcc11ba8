package transition

import (
	"github.com/azybler/mapmatch/pkg/costing"
	"github.com/azybler/mapmatch/pkg/graph"
)

// Reachable records that target is reachable from source through path, a
// sequence of map edges discovered by the bounded Dijkstra reconstruction
// rooted at the source's edge target. Two candidates on the same edge,
// moving forward, bypass the map
// entirely and carry an empty path tagged costing.DistanceOnly.
type Reachable struct {
	Source, Target CandidateID
	Path           []graph.Edge
	Resolution     costing.Resolution
}

// NewReachable returns a Reachable with the standard resolution.
func NewReachable(source, target CandidateID, path []graph.Edge) Reachable {
	return Reachable{Source: source, Target: target, Path: path, Resolution: costing.Standard}
}

// DistanceOnly returns a copy of r tagged for distance-only resolution.
func (r Reachable) DistanceOnly() Reachable {
	r.Resolution = costing.DistanceOnly
	return r
}

// PathNodes flattens r.Path into the sequence of node ids it visits:
// every edge's source, followed by the final edge's target. Empty if the
// path itself is empty.
func (r Reachable) PathNodes() []graph.NodeID {
	if len(r.Path) == 0 {
		return nil
	}
	nodes := make([]graph.NodeID, 0, len(r.Path)+1)
	for _, e := range r.Path {
		nodes = append(nodes, e.Source)
	}
	nodes = append(nodes, r.Path[len(r.Path)-1].Target)
	return nodes
}

// Hash returns the (source, target) pair used to key the solver's
// reachable lookup, mirroring the path reconstructed by the A* search.
func (r Reachable) Hash() [2]CandidateID {
	return [2]CandidateID{r.Source, r.Target}
}
