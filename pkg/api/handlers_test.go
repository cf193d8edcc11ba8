package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/osm"

	"github.com/azybler/mapmatch/pkg/graph"
	"github.com/azybler/mapmatch/pkg/osmsrc"
	"github.com/azybler/mapmatch/pkg/transition"
)

// lineGraph builds a tiny four-node routing graph with spatial indices,
// matching the fixture shape used across pkg/graph's own tests.
func lineGraph(t *testing.T) *graph.Graph {
	t.Helper()
	result := &osmsrc.ParseResult{
		Edges: []osmsrc.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, BaseNodeID: 10, Weight: 1},
			{FromNodeID: 20, ToNodeID: 30, BaseNodeID: 20, Weight: 1},
			{FromNodeID: 30, ToNodeID: 40, BaseNodeID: 30, Weight: 1},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.000, 20: 1.001, 30: 1.002, 40: 1.003},
		NodeLon: map[osm.NodeID]float64{10: 103.000, 20: 103.000, 30: 103.000, 40: 103.000},
	}
	g := graph.Build(result)
	g.BuildIndices()
	return g
}

func testHandlers(t *testing.T) *Handlers {
	t.Helper()
	engine := transition.NewEngine(lineGraph(t))
	return NewHandlers(engine, StatsResponse{NumNodes: 4})
}

func TestHandleRoute_Success(t *testing.T) {
	h := testHandlers(t)

	body := `{"start":{"lat":1.000,"lng":103.000},"end":{"lat":1.003,"lng":103.000}}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Segments) != 1 || len(resp.Segments[0].Geometry) != 4 {
		t.Errorf("unexpected segments: %+v", resp.Segments)
	}
}

func TestHandleRoute_InvalidJSON(t *testing.T) {
	h := testHandlers(t)

	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_MissingContentType(t *testing.T) {
	h := testHandlers(t)

	body := `{"start":{"lat":1.3,"lng":103.8},"end":{"lat":1.35,"lng":103.85}}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_OutOfBounds(t *testing.T) {
	h := testHandlers(t)

	body := `{"start":{"lat":91.0,"lng":103.8},"end":{"lat":1.35,"lng":103.85}}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_FarPointSnapsToNearest(t *testing.T) {
	h := testHandlers(t)

	// Snapping picks the nearest node no matter how far away it is, so a
	// start point well off the fixture graph still routes successfully.
	body := `{"start":{"lat":1.100,"lng":103.100},"end":{"lat":1.003,"lng":103.000}}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHandleMatch_Success(t *testing.T) {
	h := testHandlers(t)

	body := `{"points":[{"lat":1.0001,"lng":103.0001},{"lat":1.0009,"lng":103.0001},{"lat":1.0019,"lng":103.0001}]}`
	req := httptest.NewRequest("POST", "/api/v1/match", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMatch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	var resp MatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Discretized) != 3 {
		t.Errorf("discretized length = %d, want 3", len(resp.Discretized))
	}
}

func TestHandleMatch_TooFewPoints(t *testing.T) {
	h := testHandlers(t)

	body := `{"points":[{"lat":1.0001,"lng":103.0001}]}`
	req := httptest.NewRequest("POST", "/api/v1/match", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMatch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleSnap_Success(t *testing.T) {
	h := testHandlers(t)

	body := `{"points":[{"lat":1.0001,"lng":103.0001},{"lat":1.0019,"lng":103.0001}]}`
	req := httptest.NewRequest("POST", "/api/v1/snap", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleSnap(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	h := testHandlers(t)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want 'ok'", resp.Status)
	}
}

func TestHandleStats(t *testing.T) {
	h := testHandlers(t)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()

	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp StatsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NumNodes != 4 {
		t.Errorf("NumNodes = %d, want 4", resp.NumNodes)
	}
}
