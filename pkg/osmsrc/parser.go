// Package osmsrc streams typed elements out of an OSM PBF extract and
// turns them into direction-aware routing edges. It plays the role of both
// the element decoder and the routing-relevant tag parser: decoding is
// delegated to github.com/paulmach/osm/osmpbf, while road class, lane
// count, speed limit and access are extracted here, in Pass 1, while tags
// are still in hand.
package osmsrc

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// Direction marks which way along a way's node list an edge runs.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

// RoadClass enumerates the 16 highway kinds recognized for car routing,
// ordered roughly by routing preference.
type RoadClass uint8

const (
	Motorway RoadClass = iota
	MotorwayLink
	Trunk
	TrunkLink
	Primary
	PrimaryLink
	Secondary
	SecondaryLink
	Tertiary
	TertiaryLink
	Unclassified
	Residential
	LivingStreet
	Service
	Road
	Track
	numRoadClasses
)

// roadClassWeight maps a RoadClass to its dimensionless routing weight
// (1..100, smaller = preferred). This is NOT a physical distance — it is
// the per-edge cost used by route_points and by the transition costing's
// path-length accounting, independent of the Haversine distances tracked
// separately by the successors cache.
var roadClassWeight = [numRoadClasses]uint32{
	Motorway:      1,
	MotorwayLink:  2,
	Trunk:         3,
	TrunkLink:     4,
	Primary:       6,
	PrimaryLink:   7,
	Secondary:     10,
	SecondaryLink: 11,
	Tertiary:      15,
	TertiaryLink:  16,
	Unclassified:  25,
	Residential:   30,
	LivingStreet:  40,
	Service:       50,
	Road:          60,
	Track:         80,
}

// Weight returns the dimensionless class weight for r.
func (r RoadClass) Weight() uint32 { return roadClassWeight[r] }

var roadClassName = [numRoadClasses]string{
	Motorway:      "motorway",
	MotorwayLink:  "motorway_link",
	Trunk:         "trunk",
	TrunkLink:     "trunk_link",
	Primary:       "primary",
	PrimaryLink:   "primary_link",
	Secondary:     "secondary",
	SecondaryLink: "secondary_link",
	Tertiary:      "tertiary",
	TertiaryLink:  "tertiary_link",
	Unclassified:  "unclassified",
	Residential:   "residential",
	LivingStreet:  "living_street",
	Service:       "service",
	Road:          "road",
	Track:         "track",
}

// String returns the OSM highway tag value r was parsed from.
func (r RoadClass) String() string {
	if int(r) >= len(roadClassName) {
		return "unknown"
	}
	return roadClassName[r]
}

var highwayClass = map[string]RoadClass{
	"motorway":       Motorway,
	"motorway_link":  MotorwayLink,
	"trunk":          Trunk,
	"trunk_link":     TrunkLink,
	"primary":        Primary,
	"primary_link":   PrimaryLink,
	"secondary":      Secondary,
	"secondary_link": SecondaryLink,
	"tertiary":       Tertiary,
	"tertiary_link":  TertiaryLink,
	"unclassified":   Unclassified,
	"residential":    Residential,
	"living_street":  LivingStreet,
	"service":        Service,
	"road":           Road,
	"track":          Track,
}

// Access describes which directions of travel a way permits.
type Access uint8

const (
	AccessBoth Access = iota
	AccessForwardOnly
	AccessBackwardOnly
	AccessNone
)

// Allows reports whether travel in dir is permitted.
func (a Access) Allows(dir Direction) bool {
	switch a {
	case AccessBoth:
		return true
	case AccessForwardOnly:
		return dir == Forward
	case AccessBackwardOnly:
		return dir == Backward
	default:
		return false
	}
}

// TagMetadata is the routing-relevant subset of a way's tags, as extracted
// by parseTags. Zero values (LaneCount == 0, SpeedLimit == 0) mean unknown.
type TagMetadata struct {
	RoadClass  RoadClass
	LaneCount  uint8
	SpeedLimit uint16 // km/h
	Access     Access
}

// RawEdge represents a directed edge parsed from OSM data, plus enough of
// its way's metadata to populate an EdgeMetadata entry at graph-build time.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	BaseNodeID osm.NodeID // shared by the forward/backward edge of the same node pair
	Direction  Direction
	Weight     uint32 // dimensionless road-class weight (1..100)
	Meta       TagMetadata
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if _, ok := highwayClass[hw]; !ok {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward = true
	backward = true

	hw := tags.Find("highway")

	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	oneway := tags.Find("oneway")
	switch oneway {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent — skip entirely.
		forward = false
		backward = false
	}

	return forward, backward
}

// parseLanes extracts the "lanes" tag as a small integer; 0 means unknown.
func parseLanes(tags osm.Tags) uint8 {
	v := tags.Find("lanes")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 || n > 255 {
		return 0
	}
	return uint8(n)
}

// parseSpeedLimit extracts the "maxspeed" tag in km/h; 0 means unknown.
// Handles a plain integer plus an optional mph suffix; conditional forms
// ("50 @ (22:00-06:00)", "variable") are treated as unknown.
func parseSpeedLimit(tags osm.Tags) uint16 {
	v := strings.TrimSpace(tags.Find("maxspeed"))
	if v == "" || strings.Contains(v, "@") {
		return 0
	}
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 || n > 65535 {
		return 0
	}
	if len(fields) > 1 && strings.EqualFold(fields[1], "mph") {
		n = int(math.Round(float64(n) * 1.60934))
	}
	return uint16(n)
}

// parseTags extracts routing-relevant metadata from a way's tags. The way
// must already have passed isCarAccessible.
func parseTags(tags osm.Tags, forward, backward bool) TagMetadata {
	class := highwayClass[tags.Find("highway")]

	access := AccessBoth
	switch {
	case forward && backward:
		access = AccessBoth
	case forward:
		access = AccessForwardOnly
	case backward:
		access = AccessBackwardOnly
	default:
		access = AccessNone
	}

	return TagMetadata{
		RoadClass:  class,
		LaneCount:  parseLanes(tags),
		SpeedLimit: parseSpeedLimit(tags),
		Access:     access,
	}
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	NodeIDs           []osm.NodeID
	Forward, Backward bool
	Meta              TagMetadata
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox  BBox // if non-zero, filter edges to this bounding box
	Procs int  // parallel block decoders; 0 means runtime.NumCPU()
}

// Parse reads an OSM PBF file and returns direction-aware edges for car
// routing, folding elements block-by-block (the osmpbf scanner already
// parallelizes block decode internally; see ParseOptions for the
// equivalent of a worker-pool knob). The reader is consumed twice (seeks
// back to start for the second pass), so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()
	procs := opt.Procs
	if procs <= 0 {
		procs = runtime.NumCPU()
	}

	// Pass 1: Scan ways to collect referenced node IDs and way info.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, procs)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		obj := scanner.Object()
		w, ok := obj.(*osm.Way)
		if !ok {
			continue
		}

		if !isCarAccessible(w.Tags) {
			continue
		}
		if len(w.Nodes) < 2 {
			continue
		}

		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, wayInfo{
			NodeIDs:  nodeIDs,
			Forward:  fwd,
			Backward: bwd,
			Meta:     parseTags(w.Tags, fwd, bwd),
		})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referencedNodes))

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, procs)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		obj := scanner.Object()
		n, ok := obj.(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected", len(nodeLat))

	// Build edges from ways.
	var edges []RawEdge
	var skippedEdges, bboxFiltered int

	for _, w := range ways {
		weight := w.Meta.RoadClass.Weight()
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID := w.NodeIDs[i]
			toID := w.NodeIDs[i+1]

			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]

			if !fromOk || !toOk {
				skippedEdges++
				continue
			}

			if useBBox && (!opt.BBox.Contains(fromLat, fromLon) || !opt.BBox.Contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			if w.Forward {
				edges = append(edges, RawEdge{
					FromNodeID: fromID,
					ToNodeID:   toID,
					BaseNodeID: fromID,
					Direction:  Forward,
					Weight:     weight,
					Meta:       w.Meta,
				})
			}
			if w.Backward {
				edges = append(edges, RawEdge{
					FromNodeID: toID,
					ToNodeID:   fromID,
					BaseNodeID: fromID,
					Direction:  Backward,
					Weight:     weight,
					Meta:       w.Meta,
				})
			}
		}
	}

	if skippedEdges > 0 {
		log.Printf("Warning: skipped %d edges due to missing node coordinates", skippedEdges)
	}
	if bboxFiltered > 0 {
		log.Printf("Filtered %d edges outside bounding box", bboxFiltered)
	}
	log.Printf("Built %d directed edges", len(edges))

	return &ParseResult{
		Edges:   edges,
		NodeLat: nodeLat,
		NodeLon: nodeLon,
	}, nil
}
