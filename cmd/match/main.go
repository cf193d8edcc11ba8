package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/azybler/mapmatch/pkg/transition"
)

func main() {
	pbfPath := flag.String("pbf", "", "Path to .osm.pbf file to build the routing graph from")
	mode := flag.String("mode", "match", "Operation: match, snap, or route")
	points := flag.String("points", "", "Semicolon-separated lat,lon pairs, e.g. '38.9126,-77.0234;38.9127,-77.0235'")
	flag.Parse()

	if *pbfPath == "" || *points == "" {
		fmt.Fprintln(os.Stderr, "Usage: match --pbf <file.osm.pbf> --mode match|snap|route --points 'lat,lon;lat,lon;...'")
		os.Exit(1)
	}

	coords, err := parsePoints(*points)
	if err != nil {
		log.Fatalf("Invalid --points: %v", err)
	}

	start := time.Now()
	log.Printf("Building routing graph from %s...", *pbfPath)
	engine, err := transition.LoadEngine(context.Background(), *pbfPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	switch *mode {
	case "match", "snap":
		runtime := transition.CarRuntime{}
		pts := make([]transition.Point, len(coords))
		for i, c := range coords {
			pts[i] = transition.Point{Lat: c[0], Lon: c[1]}
		}

		var routed transition.RoutedPath
		if *mode == "match" {
			routed, err = engine.Match(runtime, pts)
		} else {
			routed, err = engine.Snap(runtime, pts)
		}
		if err != nil {
			log.Fatalf("%s failed: %v", *mode, err)
		}

		fmt.Printf("cost=%d\n", routed.Cost)
		fmt.Printf("discretized (%d points):\n", len(routed.Discretized))
		for _, el := range routed.Discretized {
			fmt.Printf("  %.6f,%.6f  edge=%d->%d  %s\n", el.Point.Lat, el.Point.Lon, el.Edge.Source, el.Edge.Target, el.Metadata.RoadClass)
		}
		fmt.Printf("interpolated (%d points)\n", len(routed.Interpolated))

	case "route":
		if len(coords) != 2 {
			log.Fatalf("route mode requires exactly 2 points, got %d", len(coords))
		}
		cost, nodes, err := engine.RoutePoints(coords[0][0], coords[0][1], coords[1][0], coords[1][1])
		if err != nil {
			log.Fatalf("route failed: %v", err)
		}
		fmt.Printf("cost=%d nodes=%d\n", cost, len(nodes))
		for _, n := range nodes {
			fmt.Printf("  %.6f,%.6f\n", n.Lat, n.Lon)
		}

	default:
		log.Fatalf("unknown --mode %q", *mode)
	}
}

func parsePoints(s string) ([][2]float64, error) {
	parts := strings.Split(s, ";")
	out := make([][2]float64, 0, len(parts))
	for _, p := range parts {
		fields := strings.Split(strings.TrimSpace(p), ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed point %q", p)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed lat in %q: %w", p, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed lon in %q: %w", p, err)
		}
		out = append(out, [2]float64{lat, lon})
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("need at least 2 points, got %d", len(out))
	}
	return out, nil
}
