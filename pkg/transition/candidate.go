package transition

import (
	"github.com/azybler/mapmatch/pkg/geo"
	"github.com/azybler/mapmatch/pkg/graph"
)

// CandidateID indexes into a CandidateGraph's node slice. Two synthetic
// ids — start and end — are added once per solve by AttachEnds.
type CandidateID int32

// CandidateLocation records which layer and which position within that
// layer a Candidate came from — useful for debugging and for looking up
// the layer origins during transition costing.
type CandidateLocation struct {
	LayerID int
	NodeID  int
}

// Candidate is a projected position on a road edge, considered as a
// hypothesis for where an observed point actually lies.
type Candidate struct {
	Edge     graph.Edge
	Lat, Lon float64
	Emission uint32
	Location CandidateLocation
}

// Percentage returns how far along the candidate's edge (by node order,
// source=0, target=1) the candidate's projected position sits, using the
// edge's geographic endpoints from g. Used by the solver's same-edge fast
// path to compare two candidates' order along a shared edge.
func (c Candidate) Percentage(g *graph.Graph) (float64, bool) {
	source, ok := g.NodeByID(c.Edge.Source)
	if !ok {
		return 0, false
	}
	target, ok := g.NodeByID(c.Edge.Target)
	if !ok {
		return 0, false
	}
	_, ratio := geo.PointToSegmentDist(c.Lat, c.Lon, source.Lat, source.Lon, target.Lat, target.Lon)
	return ratio, true
}
