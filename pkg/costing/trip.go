package costing

import (
	"math"

	"github.com/azybler/mapmatch/pkg/geo"
)

// TripNode is a single position along a reconstructed map path, carried
// only for the purpose of computing turn-angle and length metrics — it is
// not the graph's Node type so this package stays independent of pkg/graph.
type TripNode struct {
	Lat, Lon float64
}

// Trip is a sequence of positions along an optimal map path between two
// candidates, used by the default transition strategy to quantify how
// direct or winding that path is.
type Trip []TripNode

// NewTrip builds a Trip from a sequence of (lat, lon) pairs.
func NewTrip(positions [][2]float64) Trip {
	t := make(Trip, len(positions))
	for i, p := range positions {
		t[i] = TripNode{Lat: p[0], Lon: p[1]}
	}
	return t
}

// Headings returns the bearing in degrees between each consecutive pair of
// positions. Pairs closer than one meter are skipped: a bearing cannot be
// calculated for overlapping nodes, and densely digitized OSM geometry
// would otherwise inject spurious due-north entries. Empty for trips of
// fewer than 2 nodes.
func (t Trip) Headings() []float64 {
	if len(t) < 2 {
		return nil
	}
	out := make([]float64, 0, len(t)-1)
	for i := 0; i < len(t)-1; i++ {
		if geo.Haversine(t[i].Lat, t[i].Lon, t[i+1].Lat, t[i+1].Lon) < 1.0 {
			continue
		}
		out = append(out, geo.Bearing(t[i].Lat, t[i].Lon, t[i+1].Lat, t[i+1].Lon))
	}
	return out
}

// DeltaAngle returns, for each consecutive pair of headings, the absolute
// turn angle normalized to [0, 180]. One element shorter than Headings.
func (t Trip) DeltaAngle() []float64 {
	headings := t.Headings()
	if len(headings) < 2 {
		return nil
	}
	out := make([]float64, len(headings)-1)
	for i := 0; i < len(headings)-1; i++ {
		turn := headings[i+1] - headings[i]
		if turn > 180 {
			turn -= 360
		} else if turn < -180 {
			turn += 360
		}
		if turn < 0 {
			turn = -turn
		}
		out[i] = turn
	}
	return out
}

// TotalAngle is the sum of the per-step normalized turn angles — a
// quantifiable heuristic for how "non-direct" the trip is.
func (t Trip) TotalAngle() float64 {
	var sum float64
	for _, d := range t.DeltaAngle() {
		sum += d
	}
	return sum
}

// ImmediateAngle is the total angle amortized over the number of nodes —
// the "average" angular movement per move. Intrinsically weighted by node
// density: denser trips reduce this weighting and vice versa.
func (t Trip) ImmediateAngle() float64 {
	if len(t) == 0 {
		return 0
	}
	return t.TotalAngle() / float64(len(t))
}

// AngularComplexity describes the angle experienced relative to the
// distance travelled, so two trips of different length can be compared on
// how much turning each exhibited. Returns 0 if any single turn reaches a
// near-U-turn (>=179 degrees) — such a path should not be taken, but is
// not excluded in case it is the only option.
func (t Trip) AngularComplexity(distance float64) float64 {
	const uTurn = 179.0
	const distBetweenZigZag = 100.0
	const zigZag = 180.0

	numZigZags := distance / distBetweenZigZag
	if numZigZags < 1 {
		numZigZags = 1
	}

	for _, d := range t.DeltaAngle() {
		if d >= uTurn {
			return 0.0
		}
	}

	sum := t.TotalAngle()
	theoreticalMax := numZigZags * zigZag

	ratio := sum / theoreticalMax
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	return 1.0 - math.Sqrt(ratio)
}

// Length returns the cumulative Haversine distance between consecutive
// nodes, in meters.
func (t Trip) Length() float64 {
	var length float64
	for i := 0; i < len(t)-1; i++ {
		length += geo.Haversine(t[i].Lat, t[i].Lon, t[i+1].Lat, t[i+1].Lon)
	}
	return length
}
