// Package ingest decodes a map-data query response into the node/way sets
// graph.Build consumes, and issues the nearest-node lookup spec.md §4.2/§6
// describes. It parses the same Overpass-shaped JSON and does the same
// radius query original_source/src/data_loader.c does.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mfreeman451/routepath/graph"
)

// Sentinel errors for the recoverable taxonomy kinds spec.md §7 names that
// originate in this package.
var (
	// ErrUpstreamUnavailable is taxonomy-2: the endpoint could not be
	// reached or returned a response ingest could not parse as JSON.
	ErrUpstreamUnavailable = errors.New("ingest: map-data endpoint unavailable")
	// ErrNearestNodeNotFound is taxonomy-3: a radius query returned no
	// nodes at all.
	ErrNearestNodeNotFound = errors.New("ingest: no node within search radius")
)

// element mirrors one entry of an Overpass-style "elements" array: node
// entries carry id/lat/lon, way entries carry id/nodes. Fields the other
// kind doesn't use are simply left zero.
type element struct {
	Type string  `json:"type"`
	ID   int64   `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Tags struct {
		Highway string `json:"highway"`
	} `json:"tags"`
	Nodes []int64 `json:"nodes"`
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

// Result holds the node and way sets decoded from one map-data response,
// insertion-ordered exactly as spec.md §4.2 requires.
type Result struct {
	Nodes []graph.Node
	Ways  []graph.Way
	// DroppedDuplicateNodes counts node ids seen more than once; the
	// first occurrence wins, later ones are dropped with a diagnostic
	// rather than failing ingestion.
	DroppedDuplicateNodes int
}

// Decode parses body's JSON into a Result. A node id appearing twice is
// rejected (only its first occurrence is kept); a way referencing a node
// id is resolved later by graph.Build, which is tolerant of unresolvable
// ids on its own. Decode itself never fails on content, only on bytes
// that are not valid JSON, wrapped as ErrUpstreamUnavailable.
func Decode(body []byte) (Result, error) {
	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var res Result
	seen := make(map[graph.NodeID]bool, len(resp.Elements))

	for _, el := range resp.Elements {
		switch el.Type {
		case "node":
			id := graph.NodeID(el.ID)
			if seen[id] {
				res.DroppedDuplicateNodes++
				continue
			}
			seen[id] = true
			res.Nodes = append(res.Nodes, graph.Node{ID: id, Lat: el.Lat, Lon: el.Lon})
		case "way":
			nodes := make([]graph.NodeID, len(el.Nodes))
			for i, n := range el.Nodes {
				nodes[i] = graph.NodeID(n)
			}
			res.Ways = append(res.Ways, graph.Way{ID: el.ID, Nodes: nodes})
		}
	}

	return res, nil
}

// Client fetches map data and nearest-node results from an Overpass-shaped
// endpoint over HTTP. No retries: spec.md §7's propagation policy is a
// single attempt.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client with the given base URL and timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// FetchBoundingBox posts the poly-filtered Overpass query spec.md §6
// names, `[out:json];way["highway"](poly:"lat lon lat lon …");out
// body;>;out skel qt;`, for the polygon described by bbox (alternating
// lat, lon), and decodes the response.
func (c *Client) FetchBoundingBox(ctx context.Context, bbox []float64) (Result, error) {
	body, err := c.post(ctx, buildPolyQuery(bbox))
	if err != nil {
		return Result{}, err
	}
	return Decode(body)
}

// NearestNode resolves (lat, lon) to the id of the closest node returned
// by a fixed-radius query, using squared-Euclidean distance in degree
// space as spec.md §4.2/§9 directs. This is a deliberate, documented
// approximation rather than haversine, since at the scale of the radius
// query (meters) the latitude-scaling bias is negligible compared to the
// approximation the radius query itself already makes.
func (c *Client) NearestNode(ctx context.Context, lat, lon, radiusMeters float64) (graph.NodeID, bool, error) {
	body, err := c.post(ctx, buildAroundQuery(lat, lon, radiusMeters))
	if err != nil {
		return 0, false, err
	}

	res, err := Decode(body)
	if err != nil {
		return 0, false, err
	}
	if len(res.Nodes) == 0 {
		return 0, false, nil
	}

	best := res.Nodes[0]
	bestDist := sqDistDegrees(lat, lon, best.Lat, best.Lon)
	for _, n := range res.Nodes[1:] {
		d := sqDistDegrees(lat, lon, n.Lat, n.Lon)
		if d < bestDist {
			bestDist = d
			best = n
		}
	}

	return best.ID, true, nil
}

func sqDistDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return dLat*dLat + dLon*dLon
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewBufferString(query))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstreamUnavailable, err)
	}
	return data, nil
}

func buildPolyQuery(bbox []float64) string {
	var poly bytes.Buffer
	for i, v := range bbox {
		if i > 0 {
			poly.WriteByte(' ')
		}
		fmt.Fprintf(&poly, "%g", v)
	}
	return fmt.Sprintf(`[out:json];way["highway"](poly:"%s");out body;>;out skel qt;`, poly.String())
}

func buildAroundQuery(lat, lon, radiusMeters float64) string {
	return fmt.Sprintf(`[out:json];node(around:%g,%g,%g);out body;`, radiusMeters, lat, lon)
}
