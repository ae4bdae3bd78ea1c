// Package httpapi implements the HTTP surface spec.md §6 describes:
// GET / (input map), GET /submit (output page), GET /images/* (embedded
// SVG assets), and POST /run (the JSON route-computation endpoint),
// grounded on udisondev-la2go/internal/data's embed.FS pattern for
// shipping static content inside the binary.
package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/mfreeman451/routepath"
	"github.com/mfreeman451/routepath/config"
	"github.com/mfreeman451/routepath/csr"
	"github.com/mfreeman451/routepath/graph"
	"github.com/mfreeman451/routepath/ingest"
)

//go:embed assets
var assetsFS embed.FS

// Server wires the ingest client and configuration behind the HTTP
// surface. It holds no per-request state: each POST /run builds and
// discards its own graph, per spec.md's "no persistent state across
// requests" non-goal.
type Server struct {
	cfg    config.Config
	client *ingest.Client
	log    *slog.Logger
	images fs.FS
	pages  fs.FS
}

// NewServer builds a Server from cfg, with an *ingest.Client configured
// from cfg's endpoint and timeout.
func NewServer(cfg config.Config, log *slog.Logger) (*Server, error) {
	images, err := fs.Sub(assetsFS, "assets/images")
	if err != nil {
		return nil, fmt.Errorf("httpapi: mounting images: %w", err)
	}
	pages, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("httpapi: mounting pages: %w", err)
	}

	return &Server{
		cfg:    cfg,
		client: ingest.NewClient(cfg.OverpassURL, time.Duration(cfg.HTTPTimeoutSeconds)*time.Second),
		log:    log,
		images: images,
		pages:  pages,
	}, nil
}

// Handler returns the mux routing the four endpoints spec.md §6 names.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.servePage("index.html"))
	mux.HandleFunc("GET /submit", s.servePage("submit.html"))
	mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.FS(s.images))))
	mux.HandleFunc("POST /run", s.handleRun)
	return mux
}

// servePage returns a handler that serves one named file out of the
// embedded pages FS, the way main_webserver.c's serve_page dispatches on
// an exact path match rather than a generic static-file mapping.
func (s *Server) servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, s.pages, name)
	}
}

// runRequest is the POST /run body spec.md §6 names:
// {algorithm, start:[lat,lon], dest:[lat,lon], bbox:[[lat,lon],...]}.
type runRequest struct {
	Algorithm string       `json:"algorithm"`
	Start     [2]float64   `json:"start"`
	Dest      [2]float64   `json:"dest"`
	BBox      [][2]float64 `json:"bbox"`
}

// runResponse mirrors the CLI's stdout JSON (spec.md §6's key table).
type runResponse struct {
	StartNode          int64        `json:"startNode,omitempty"`
	DestNode           int64        `json:"destNode,omitempty"`
	NodesInBoundingBox int          `json:"nodesInBoundingBox"`
	RoadsInBoundingBox int          `json:"roadsInBoundingBox"`
	GraphTimeMS        int64        `json:"graphTime"`
	RoutingTimeMS      int64        `json:"routingTime"`
	TotalTimeMS        int64        `json:"totalTime"`
	Route              [][2]float64 `json:"route,omitempty"`
	RouteLength        string       `json:"routeLength,omitempty"`
	Success            bool         `json:"success"`
	Error              string       `json:"error,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	total := time.Now()

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, runResponse{Success: false, Error: fmt.Sprintf("malformed request body: %v", err)})
		return
	}

	if len(req.BBox) < 3 {
		s.writeJSON(w, http.StatusBadRequest, runResponse{Success: false, Error: "bbox needs at least 3 vertices"})
		return
	}

	bbox := make([]float64, 0, 2*len(req.BBox))
	for _, v := range req.BBox {
		bbox = append(bbox, v[0], v[1])
	}

	ctx := r.Context()
	res, status, err := s.run(ctx, req.Algorithm, req.Start[0], req.Start[1], req.Dest[0], req.Dest[1], bbox, total)
	if err != nil {
		s.log.Error("run failed", "err", err)
	}
	s.writeJSON(w, status, res)
}

func (s *Server) run(ctx context.Context, algorithm string, startLat, startLon, destLat, destLon float64, bbox []float64, total time.Time) (runResponse, int, error) {
	ingestRes, err := s.client.FetchBoundingBox(ctx, bbox)
	if err != nil {
		return runResponse{Success: false, Error: err.Error()}, http.StatusBadGateway, err
	}

	startID, found, err := s.client.NearestNode(ctx, startLat, startLon, s.cfg.NearestNodeRadiusMeters)
	if err != nil {
		return runResponse{Success: false, Error: err.Error()}, http.StatusBadGateway, err
	}
	if !found {
		err := fmt.Errorf("%w: start (%g, %g)", ingest.ErrNearestNodeNotFound, startLat, startLon)
		return runResponse{Success: false, Error: err.Error()}, http.StatusUnprocessableEntity, err
	}
	destID, found, err := s.client.NearestNode(ctx, destLat, destLon, s.cfg.NearestNodeRadiusMeters)
	if err != nil {
		return runResponse{Success: false, Error: err.Error()}, http.StatusBadGateway, err
	}
	if !found {
		err := fmt.Errorf("%w: destination (%g, %g)", ingest.ErrNearestNodeNotFound, destLat, destLon)
		return runResponse{Success: false, Error: err.Error()}, http.StatusUnprocessableEntity, err
	}

	graphStart := time.Now()
	g, dropped := graph.Build(ingestRes.Nodes, ingestRes.Ways)
	if dropped > 0 {
		s.log.Warn("dropped unresolvable way edges", "count", dropped)
	}
	c := csr.Build(g)
	graphTime := time.Since(graphStart)

	srcIdx, err := g.IndexOf(startID)
	if err != nil {
		return runResponse{Success: false, Error: err.Error()}, http.StatusInternalServerError, err
	}
	destIdx, err := g.IndexOf(destID)
	if err != nil {
		return runResponse{Success: false, Error: err.Error()}, http.StatusInternalServerError, err
	}

	algo := routepath.Algorithm(algorithm)
	routingStart := time.Now()
	routeRes, err := routepath.Compute(ctx, g, c, srcIdx, destIdx, routepath.Options{Algorithm: algo, Delta: s.cfg.Delta})
	routingTime := time.Since(routingStart)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, routepath.ErrUnknownAlgorithm) {
			status = http.StatusBadRequest
		}
		return runResponse{Success: false, Error: err.Error()}, status, err
	}

	// spec.md §6: route is destination-first, the reverse of Compute's
	// source-to-destination order.
	n := len(routeRes.Route)
	route := make([][2]float64, n)
	for i, p := range routeRes.Route {
		route[n-1-i] = [2]float64{p.Lat, p.Lon}
	}

	return runResponse{
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
	}, http.StatusOK, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("writing response", "err", err)
	}
}
