// Package optimizer talks to the external path optimization service over
// JSON/HTTP.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/httputil"
	"github.com/banshee-data/pathviz/internal/playback"
	"github.com/banshee-data/pathviz/internal/scene"
)

// DefaultBaseURL is where the optimizer service listens by default.
const DefaultBaseURL = "http://localhost:5000/api"

// ErrIncompleteScene is returned when start or goal is missing.
var ErrIncompleteScene = errors.New("scene needs both a start and a goal")

// TransportError is any failure to obtain a usable response: the request
// failed, the status was not 2xx, or the body could not be decoded.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Run is a decoded optimization response.
type Run struct {
	Trace       playback.Trace
	InitialCost float64
	FinalCost   float64
	CostHistory []float64
}

// Client calls the optimizer service.
type Client struct {
	http    httputil.HTTPClient
	baseURL string
}

// NewClient returns a client for the service at baseURL (DefaultBaseURL if
// empty).
func NewClient(c httputil.HTTPClient, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: c, baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL }

// BuildRequest serializes a scene and params into the /optimize body.
func BuildRequest(snap scene.Snapshot, p Params) (Request, error) {
	if snap.Start == nil || snap.Goal == nil {
		return Request{}, ErrIncompleteScene
	}
	return Request{
		Start:        snap.Start.Orb(),
		Goal:         snap.Goal.Orb(),
		Obstacles:    wireObstacles(snap.Obstacles),
		NPoints:      p.NPoints,
		SafetyMargin: p.SafetyMargin,
		Weights:      p.Weights,
		NIterations:  p.NIterations,
		LearningRate: p.LearningRate,
		Momentum:     p.Momentum,
	}, nil
}

func wireObstacles(obs []scene.Obstacle) []Obstacle {
	out := make([]Obstacle, len(obs))
	for i, o := range obs {
		out[i] = Obstacle{Center: o.Center.Orb(), Radius: o.Radius}
	}
	return out
}

// RequestOptimization posts the scene to /optimize and returns the trace.
// Any failure is a *TransportError except ErrIncompleteScene.
func (c *Client) RequestOptimization(ctx context.Context, snap scene.Snapshot, p Params) (Run, error) {
	req, err := BuildRequest(snap, p)
	if err != nil {
		return Run{}, err
	}
	diagf("optimize: %d obstacles, n_points=%d, n_iterations=%d", len(req.Obstacles), req.NPoints, req.NIterations)

	var resp Response
	if err := c.post(ctx, "optimize", "/optimize", req, &resp); err != nil {
		return Run{}, err
	}
	if resp.Results == nil {
		return Run{}, &TransportError{Op: "optimize", Err: errors.New("response has no results")}
	}

	run := Run{Trace: toTrace(*resp.Results), CostHistory: resp.CostHistory}
	if run.CostHistory == nil {
		run.CostHistory = run.Trace.Costs()
	}
	if n := len(run.Trace); n > 0 {
		run.InitialCost = run.Trace[0].Cost
		run.FinalCost = run.Trace[n-1].Cost
	}
	if resp.InitialCost != nil {
		run.InitialCost = *resp.InitialCost
	}
	if resp.FinalCost != nil {
		run.FinalCost = *resp.FinalCost
	}
	diagf("optimize: %d frames, cost %.4f -> %.4f", len(run.Trace), run.InitialCost, run.FinalCost)
	return run, nil
}

func toTrace(results []Result) playback.Trace {
	tr := make(playback.Trace, len(results))
	for i, r := range results {
		tr[i] = playback.Frame{
			Iteration: r.Iteration,
			Path:      geom.PathFromLineString(r.Path),
			Cost:      r.Cost,
		}
	}
	return tr
}

// CalculateCost asks the service for the per-term cost of path.
func (c *Client) CalculateCost(ctx context.Context, path geom.Path, obstacles []scene.Obstacle, p Params) (CostBreakdown, error) {
	if len(path) < 2 {
		return CostBreakdown{}, fmt.Errorf("path needs at least 2 points, got %d", len(path))
	}
	req := CostRequest{
		Path:         path.LineString(),
		Obstacles:    wireObstacles(obstacles),
		SafetyMargin: p.SafetyMargin,
		Weights:      p.Weights,
	}
	var out CostBreakdown
	if err := c.post(ctx, "calculate_cost", "/calculate_cost", req, &out); err != nil {
		return CostBreakdown{}, err
	}
	tracef("calculate_cost: total=%.4f length=%.4f smoothness=%.4f obstacle=%.4f", out.Total, out.Length, out.Smoothness, out.Obstacle)
	return out, nil
}

// Health returns the service's reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out healthResponse
	if err := httputil.DoJSON(ctx, c.http, http.MethodGet, c.baseURL+"/health", nil, &out); err != nil {
		return "", wrap("health", err)
	}
	return out.Status, nil
}

func (c *Client) post(ctx context.Context, op, path string, in, out interface{}) error {
	if err := httputil.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+path, in, out); err != nil {
		err = wrap(op, err)
		if !errors.Is(err, context.Canceled) {
			opsf("%v", err)
		}
		return err
	}
	return nil
}

func wrap(op string, err error) error {
	te := &TransportError{Op: op, Err: err}
	var se *httputil.StatusError
	if errors.As(err, &se) {
		te.StatusCode = se.StatusCode
	}
	return te
}
