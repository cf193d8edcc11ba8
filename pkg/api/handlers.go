package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"github.com/azybler/mapmatch/pkg/geo"
	"github.com/azybler/mapmatch/pkg/graph"
	"github.com/azybler/mapmatch/pkg/transition"
)

// Handlers holds the HTTP handlers and their dependencies: the transition
// engine (wrapping the routing graph and costing strategies) and the
// runtime used to filter edge access for every solve.
type Handlers struct {
	engine  *transition.Engine
	runtime transition.Runtime
	stats   StatsResponse
}

// NewHandlers creates handlers with the given engine.
func NewHandlers(engine *transition.Engine, stats StatsResponse) *Handlers {
	return &Handlers{
		engine:  engine,
		runtime: transition.CarRuntime{},
		stats:   stats,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	_, nodes, err := h.engine.RoutePoints(req.Start.Lat, req.Start.Lng, req.End.Lat, req.End.Lng)
	if err != nil {
		if errors.Is(err, graph.ErrPointTooFar) {
			writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
			return
		}
		if errors.Is(err, graph.ErrNoRoute) {
			writeError(w, http.StatusNotFound, "no_route_found", "")
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	geom := make([]LatLngJSON, len(nodes))
	var meters float64
	for i, n := range nodes {
		geom[i] = LatLngJSON{Lat: n.Lat, Lng: n.Lon}
		if i > 0 {
			meters += geo.Haversine(nodes[i-1].Lat, nodes[i-1].Lon, n.Lat, n.Lon)
		}
	}

	resp := RouteResponse{
		TotalDistanceMeters: meters,
		Segments: []SegmentJSON{
			{DistanceMeters: meters, Geometry: geom},
		},
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMatch handles POST /api/v1/match.
func (h *Handlers) HandleMatch(w http.ResponseWriter, r *http.Request) {
	h.handleSolve(w, r, h.engine.Match)
}

// HandleSnap handles POST /api/v1/snap.
func (h *Handlers) HandleSnap(w http.ResponseWriter, r *http.Request) {
	h.handleSolve(w, r, h.engine.Snap)
}

type solveFunc func(runtime transition.Runtime, points []transition.Point) (transition.RoutedPath, error)

func (h *Handlers) handleSolve(w http.ResponseWriter, r *http.Request, solve solveFunc) {
	if !requireJSON(w, r) {
		return
	}

	var req MatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if len(req.Points) < 2 {
		writeError(w, http.StatusBadRequest, "no_input_points", "points")
		return
	}

	points := make([]transition.Point, len(req.Points))
	for i, p := range req.Points {
		if err := validateCoord(p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_coordinates", "points")
			return
		}
		points[i] = transition.Point{Lat: p.Lat, Lon: p.Lng}
	}

	routed, err := solve(h.runtime, points)
	if err != nil {
		if errors.Is(err, transition.ErrNoInputPoints) {
			writeError(w, http.StatusBadRequest, "no_input_points", "points")
			return
		}
		if errors.Is(err, transition.ErrNoPathFound) {
			writeError(w, http.StatusNotFound, "no_path_found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	resp := MatchResponse{
		Cost:         routed.Cost,
		Discretized:  toPathElementJSON(routed.Discretized),
		Interpolated: toPathElementJSON(routed.Interpolated),
	}
	writeJSON(w, http.StatusOK, resp)
}

func toPathElementJSON(elements []transition.PathElement) []PathElementJSON {
	out := make([]PathElementJSON, len(elements))
	for i, e := range elements {
		out[i] = PathElementJSON{
			Point:      LatLngJSON{Lat: e.Point.Lat, Lng: e.Point.Lon},
			EdgeSource: int64(e.Edge.Source),
			EdgeTarget: int64(e.Edge.Target),
			RoadClass:  e.Metadata.RoadClass.String(),
			SpeedLimit: e.Metadata.SpeedLimit,
		}
	}
	return out
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	return true
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
