package transition

import "testing"

func TestLayerGeneratorBoundsAndFilters(t *testing.T) {
	g := lineGraph(t)
	lg := NewLayerGenerator(g, defaultStrategies())
	lg.FilterDistance = 50 // meters, tighter than default to make the test deterministic

	layers, candidates := lg.WithPoints([]Point{{Lat: 1.0010, Lon: 103.000}})
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(layers))
	}

	layer := layers[0]
	if len(layer.Nodes) == 0 {
		t.Fatal("expected at least one candidate near an existing node")
	}
	if len(layer.Nodes) > MaxCandidatesPerLayer {
		t.Errorf("layer has %d candidates, want <= %d", len(layer.Nodes), MaxCandidatesPerLayer)
	}

	for _, id := range layer.Nodes {
		c, ok := candidates.Candidate(id)
		if !ok {
			t.Fatal("candidate missing from graph")
		}
		d := haversineLayerOrigins(layer.OriginLat, layer.OriginLon, c.Lat, c.Lon)
		if d > lg.FilterDistance {
			t.Errorf("candidate distance %f exceeds filter distance %f", d, lg.FilterDistance)
		}
	}
}

func TestLayerGeneratorIndependentAcrossPoints(t *testing.T) {
	g := lineGraph(t)
	lg := NewLayerGenerator(g, defaultStrategies())

	points := []Point{
		{Lat: 1.0001, Lon: 103.000},
		{Lat: 1.0021, Lon: 103.000},
		{Lat: 1.0041, Lon: 103.000},
	}
	layers, _ := lg.WithPoints(points)

	if len(layers) != len(points) {
		t.Fatalf("expected %d layers, got %d", len(points), len(layers))
	}
	for i, l := range layers {
		if l.OriginLat != points[i].Lat || l.OriginLon != points[i].Lon {
			t.Errorf("layer %d origin = (%f,%f), want (%f,%f)", i, l.OriginLat, l.OriginLon, points[i].Lat, points[i].Lon)
		}
	}
}
