package transition

import "github.com/azybler/mapmatch/pkg/graph"

// CollapsedPath is the raw output of a solve: the winning sequence of
// candidate ids, its total cost, and the Reachable hops used to cross
// each consecutive pair — kept around so RoutedPath can recover the full
// turn-by-turn map path, not just the one-candidate-per-observation
// summary.
type CollapsedPath struct {
	Cost         uint32
	Route        []CandidateID
	Interpolated []Reachable
	Candidates   *CandidateGraph
}

// PathElement is one point along a path, paired with the map edge it
// sits on and that edge's metadata.
type PathElement struct {
	Point    Point
	Edge     graph.Edge
	Metadata graph.EdgeMetadata
}

// RoutedPath is the final match/snap result: a one-to-one discretized
// path (one element per input observation) alongside the fully
// interpolated path recovering every turn and roadway actually taken.
type RoutedPath struct {
	Cost         uint32
	Discretized  []PathElement
	Interpolated []PathElement
}

// NewRoutedPath assembles a RoutedPath from a solved CollapsedPath,
// looking up edge metadata in g.
func NewRoutedPath(collapsed *CollapsedPath, g *graph.Graph) RoutedPath {
	discretized := make([]PathElement, 0, len(collapsed.Route))
	for _, id := range collapsed.Route {
		candidate, ok := collapsed.Candidates.Candidate(id)
		if !ok {
			continue // synthetic start/end carry no candidate
		}
		meta, _ := g.Metadata(candidate.Edge.ID.BaseID)
		discretized = append(discretized, PathElement{
			Point:    Point{Lat: candidate.Lat, Lon: candidate.Lon},
			Edge:     candidate.Edge,
			Metadata: meta,
		})
	}

	var interpolated []PathElement
	for _, reachable := range collapsed.Interpolated {
		for _, edge := range reachable.Path {
			source, ok := g.NodeByID(edge.Source)
			if !ok {
				continue
			}
			meta, _ := g.Metadata(edge.ID.BaseID)
			interpolated = append(interpolated, PathElement{
				Point:    Point{Lat: source.Lat, Lon: source.Lon},
				Edge:     edge,
				Metadata: meta,
			})
		}
	}

	return RoutedPath{Cost: collapsed.Cost, Discretized: discretized, Interpolated: interpolated}
}
