package transition

import (
	"sort"
	"sync"

	"github.com/azybler/mapmatch/pkg/costing"
	"github.com/azybler/mapmatch/pkg/geo"
	"github.com/azybler/mapmatch/pkg/graph"
)

// DefaultSearchDistance is the radius, in meters, LayerGenerator searches
// for candidate edges around each observed point.
const DefaultSearchDistance = 1_000.0

// DefaultFilterDistance is the maximum Haversine distance, in meters, a
// projected candidate may be from its observed point to be retained.
const DefaultFilterDistance = 250.0

// MaxCandidatesPerLayer bounds how many candidates a single layer may
// carry.
const MaxCandidatesPerLayer = 25

// Layer is the set of all candidates generated for one observed point.
type Layer struct {
	Nodes     []CandidateID
	OriginLat float64
	OriginLon float64
}

// Point is an observed (longitude, latitude) pair in WGS84 degrees.
type Point struct {
	Lat, Lon float64
}

// LayerGenerator produces, for each observed point, a layer of candidate
// projections on nearby edges with precomputed emission cost.
type LayerGenerator struct {
	SearchDistance float64
	FilterDistance float64
	Costing        costing.Strategies
	Graph          *graph.Graph
}

// NewLayerGenerator returns a LayerGenerator configured with the default
// search/filter distances.
func NewLayerGenerator(g *graph.Graph, strategies costing.Strategies) *LayerGenerator {
	return &LayerGenerator{
		SearchDistance: DefaultSearchDistance,
		FilterDistance: DefaultFilterDistance,
		Costing:        strategies,
		Graph:          g,
	}
}

type scoredProjection struct {
	proj     graph.ProjectedEdge
	distance float64
}

// WithPoints generates layers and their candidate graph for every input
// point, in input order. Generation of different layers is independent
// and runs in parallel; the only shared mutation (inserting into the
// candidate graph) is serialized by CandidateGraph's own locking.
func (lg *LayerGenerator) WithPoints(points []Point) ([]Layer, *CandidateGraph) {
	candidates := NewCandidateGraph()
	layers := make([]Layer, len(points))

	var wg sync.WaitGroup
	wg.Add(len(points))
	for i, origin := range points {
		go func(layerID int, origin Point) {
			defer wg.Done()
			layers[layerID] = lg.generateLayer(layerID, origin, candidates)
		}(i, origin)
	}
	wg.Wait()

	return layers, candidates
}

func (lg *LayerGenerator) generateLayer(layerID int, origin Point, candidates *CandidateGraph) Layer {
	projected := lg.Graph.ScanNodesProjected(origin.Lat, origin.Lon, lg.SearchDistance)

	scored := make([]scoredProjection, 0, len(projected))
	for _, p := range projected {
		d := geo.Haversine(origin.Lat, origin.Lon, p.Lat, p.Lon)
		if d < lg.FilterDistance {
			scored = append(scored, scoredProjection{proj: p, distance: d})
		}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].distance < scored[j].distance })
	if len(scored) > MaxCandidatesPerLayer {
		scored = scored[:MaxCandidatesPerLayer]
	}

	nodes := make([]CandidateID, 0, len(scored))
	for nodeID, sp := range scored {
		emission := lg.Costing.EmissionCost(costing.EmissionContext{
			SourceLat: origin.Lat, SourceLon: origin.Lon,
			CandidateLat: sp.proj.Lat, CandidateLon: sp.proj.Lon,
			Distance: sp.distance,
		})

		candidate := Candidate{
			Edge:     sp.proj.Edge,
			Lat:      sp.proj.Lat,
			Lon:      sp.proj.Lon,
			Emission: emission,
			Location: CandidateLocation{LayerID: layerID, NodeID: nodeID},
		}
		nodes = append(nodes, candidates.AddCandidate(candidate))
	}

	return Layer{Nodes: nodes, OriginLat: origin.Lat, OriginLon: origin.Lon}
}
