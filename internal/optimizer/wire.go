package optimizer

import (
	"github.com/paulmach/orb"
)

// Weights are the per-term cost weights.
type Weights struct {
	Length     float64 `json:"length"`
	Smoothness float64 `json:"smoothness"`
	Obstacle   float64 `json:"obstacle"`
}

// Obstacle is the wire form of a circular obstacle.
type Obstacle struct {
	Center orb.Point `json:"center"`
	Radius float64   `json:"radius"`
}

// Request is the body of POST /optimize.
type Request struct {
	Start        orb.Point  `json:"start"`
	Goal         orb.Point  `json:"goal"`
	Obstacles    []Obstacle `json:"obstacles"`
	NPoints      int        `json:"n_points"`
	SafetyMargin float64    `json:"safety_margin"`
	Weights      Weights    `json:"weights"`
	NIterations  int        `json:"n_iterations"`
	LearningRate float64    `json:"learning_rate"`
	Momentum     float64    `json:"momentum"`
}

// Result is one iteration snapshot in the response.
type Result struct {
	Iteration int            `json:"iteration"`
	Path      orb.LineString `json:"path"`
	Cost      float64        `json:"cost"`
}

// Response is the body returned by POST /optimize. Only Results is
// required; the summary fields are filled in from it when absent.
type Response struct {
	Results     *[]Result `json:"results"`
	FinalCost   *float64  `json:"final_cost,omitempty"`
	InitialCost *float64  `json:"initial_cost,omitempty"`
	CostHistory []float64 `json:"cost_history,omitempty"`
}

// CostRequest is the body of POST /calculate_cost.
type CostRequest struct {
	Path         orb.LineString `json:"path"`
	Obstacles    []Obstacle     `json:"obstacles"`
	SafetyMargin float64        `json:"safety_margin"`
	Weights      Weights        `json:"weights"`
}

// CostBreakdown is the per-term cost of one path.
type CostBreakdown struct {
	Total      float64 `json:"total_cost"`
	Length     float64 `json:"length_cost"`
	Smoothness float64 `json:"smoothness_cost"`
	Obstacle   float64 `json:"obstacle_cost"`
}

type healthResponse struct {
	Status string `json:"status"`
}
