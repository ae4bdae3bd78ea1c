// Command routecli is the positional-argument-driven CLI described in
// spec.md §6: it fetches map data for a bounding-box polygon, builds the
// graph, runs the selected shortest-path algorithm between two
// coordinates, and prints one JSON result object to stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mfreeman451/routepath"
	"github.com/mfreeman451/routepath/config"
	"github.com/mfreeman451/routepath/csr"
	"github.com/mfreeman451/routepath/graph"
	"github.com/mfreeman451/routepath/ingest"
)

// result mirrors the key table of spec.md §6, serialized to stdout.
type result struct {
	StartNode          int64   `json:"startNode,omitempty"`
	DestNode           int64   `json:"destNode,omitempty"`
	NodesInBoundingBox int     `json:"nodesInBoundingBox"`
	RoadsInBoundingBox int     `json:"roadsInBoundingBox"`
	GraphTimeMS        int64   `json:"graphTime"`
	RoutingTimeMS      int64   `json:"routingTime"`
	TotalTimeMS        int64   `json:"totalTime"`
	Route              [][2]float64 `json:"route,omitempty"`
	RouteLength        string  `json:"routeLength,omitempty"`
	Success            bool    `json:"success"`
	Error              string  `json:"error,omitempty"`
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	configPath := flag.String("config", "", "optional YAML config path")
	algorithm := flag.String("algorithm", "serial", `"serial", "parallel", or "dijkstra"`)
	dumpGraph := flag.String("dump-graph", "", "optional path to write a Mermaid graph dump")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			emit(result{Success: false, Error: err.Error()})
			os.Exit(1)
		}
	}

	res, err := run(context.Background(), cfg, flag.Args(), routepath.Algorithm(*algorithm), *dumpGraph)
	emit(res)
	if err != nil {
		os.Exit(1)
	}
}

func emit(res result) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}

// run is the testable core of main: it never calls os.Exit.
func run(ctx context.Context, cfg config.Config, args []string, algo routepath.Algorithm, dumpGraphPath string) (result, error) {
	total := time.Now()

	coords, err := parseArgs(args)
	if err != nil {
		return result{Success: false, Error: err.Error()}, err
	}

	client := ingest.NewClient(cfg.OverpassURL, time.Duration(cfg.HTTPTimeoutSeconds)*time.Second)

	ingestRes, err := client.FetchBoundingBox(ctx, coords.bboxFlat())
	if err != nil {
		return result{Success: false, Error: err.Error()}, err
	}

	startID, found, err := client.NearestNode(ctx, coords.startLat, coords.startLon, cfg.NearestNodeRadiusMeters)
	if err != nil {
		return result{Success: false, Error: err.Error()}, err
	}
	if !found {
		err := fmt.Errorf("%w: start (%g, %g)", ingest.ErrNearestNodeNotFound, coords.startLat, coords.startLon)
		return result{Success: false, Error: err.Error()}, err
	}
	destID, found, err := client.NearestNode(ctx, coords.destLat, coords.destLon, cfg.NearestNodeRadiusMeters)
	if err != nil {
		return result{Success: false, Error: err.Error()}, err
	}
	if !found {
		err := fmt.Errorf("%w: destination (%g, %g)", ingest.ErrNearestNodeNotFound, coords.destLat, coords.destLon)
		return result{Success: false, Error: err.Error()}, err
	}

	graphStart := time.Now()
	g, dropped := graph.Build(ingestRes.Nodes, ingestRes.Ways)
	if dropped > 0 {
		slog.Warn("dropped unresolvable way edges", "count", dropped)
	}
	c := csr.Build(g)
	graphTime := time.Since(graphStart)

	if dumpGraphPath != "" {
		if err := writeMermaidDump(g, dumpGraphPath); err != nil {
			slog.Warn("failed to write graph dump", "err", err)
		}
	}

	srcIdx, err := g.IndexOf(startID)
	if err != nil {
		return result{Success: false, Error: err.Error()}, err
	}
	destIdx, err := g.IndexOf(destID)
	if err != nil {
		return result{Success: false, Error: err.Error()}, err
	}

	routingStart := time.Now()
	routeRes, err := routepath.Compute(ctx, g, c, srcIdx, destIdx, routepath.Options{Algorithm: algo, Delta: cfg.Delta})
	routingTime := time.Since(routingStart)
	if err != nil {
		return result{Success: false, Error: err.Error()}, err
	}

	// spec.md §6: route is destination-first, the reverse of Compute's
	// source-to-destination order.
	n := len(routeRes.Route)
	route := make([][2]float64, n)
	for i, p := range routeRes.Route {
		route[n-1-i] = [2]float64{p.Lat, p.Lon}
	}

	return result{
		StartNode:          int64(startID),
		DestNode:           int64(destID),
		NodesInBoundingBox: len(ingestRes.Nodes),
		RoadsInBoundingBox: len(ingestRes.Ways),
		GraphTimeMS:        graphTime.Milliseconds(),
		RoutingTimeMS:      routingTime.Milliseconds(),
		TotalTimeMS:        time.Since(total).Milliseconds(),
		Route:              route,
		RouteLength:        fmt.Sprintf("%.2fm", routeRes.LengthM),
		Success:            true,
	}, nil
}

func writeMermaidDump(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.DumpMermaid(f)
}

type parsedArgs struct {
	startLat, startLon float64
	destLat, destLon   float64
	bboxLat, bboxLon    []float64
}

func (p parsedArgs) bboxFlat() []float64 {
	flat := make([]float64, 0, 2*len(p.bboxLat))
	for i := range p.bboxLat {
		flat = append(flat, p.bboxLat[i], p.bboxLon[i])
	}
	return flat
}

var errMalformedArgs = errors.New("routecli: malformed arguments")

// parseArgs validates `start_lat start_lon dest_lat dest_lon` followed by
// an even count (>= 6, i.e. >= 3 vertices) of bbox scalars, spec.md §6's
// positional contract, with the even-count-parity fix spec.md §9 calls
// out rather than the original's odd-total-argc bug.
func parseArgs(args []string) (parsedArgs, error) {
	if len(args) < 4+6 {
		return parsedArgs{}, fmt.Errorf("%w: need start_lat start_lon dest_lat dest_lon plus >=3 bbox vertex pairs", errMalformedArgs)
	}

	nums := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return parsedArgs{}, fmt.Errorf("%w: argument %d (%q) is not numeric", errMalformedArgs, i, a)
		}
		nums[i] = v
	}

	bboxScalars := nums[4:]
	if len(bboxScalars)%2 != 0 {
		return parsedArgs{}, fmt.Errorf("%w: bounding box scalars must come in lat/lon pairs", errMalformedArgs)
	}
	if len(bboxScalars) < 6 {
		return parsedArgs{}, fmt.Errorf("%w: bounding box needs at least 3 vertices", errMalformedArgs)
	}

	p := parsedArgs{
		startLat: nums[0], startLon: nums[1],
		destLat: nums[2], destLon: nums[3],
	}
	for i := 0; i < len(bboxScalars); i += 2 {
		p.bboxLat = append(p.bboxLat, bboxScalars[i])
		p.bboxLon = append(p.bboxLon, bboxScalars[i+1])
	}
	return p, nil
}
