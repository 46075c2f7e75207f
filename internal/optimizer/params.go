package optimizer

import (
	"errors"
	"fmt"
)

// Params are the tunable optimizer inputs sent with every request.
type Params struct {
	NPoints      int     `json:"n_points"`
	SafetyMargin float64 `json:"safety_margin"`
	Weights      Weights `json:"weights"`
	NIterations  int     `json:"n_iterations"`
	LearningRate float64 `json:"learning_rate"`
	Momentum     float64 `json:"momentum"`
}

// DefaultParams returns the values the optimizer service is tuned for.
func DefaultParams() Params {
	return Params{
		NPoints:      20,
		SafetyMargin: 5,
		Weights:      Weights{Length: 1, Smoothness: 50, Obstacle: 1000},
		NIterations:  500,
		LearningRate: 0.001,
		Momentum:     0.9,
	}
}

// Validate reports values the optimizer cannot work with.
func (p Params) Validate() error {
	var errs []error
	if p.NPoints < 2 {
		errs = append(errs, fmt.Errorf("n_points must be at least 2, got %d", p.NPoints))
	}
	if p.NIterations < 1 {
		errs = append(errs, fmt.Errorf("n_iterations must be positive, got %d", p.NIterations))
	}
	if p.SafetyMargin < 0 {
		errs = append(errs, fmt.Errorf("safety_margin must be non-negative, got %g", p.SafetyMargin))
	}
	if p.LearningRate <= 0 {
		errs = append(errs, fmt.Errorf("learning_rate must be positive, got %g", p.LearningRate))
	}
	if p.Momentum < 0 || p.Momentum >= 1 {
		errs = append(errs, fmt.Errorf("momentum must be in [0, 1), got %g", p.Momentum))
	}
	if p.Weights.Length < 0 || p.Weights.Smoothness < 0 || p.Weights.Obstacle < 0 {
		errs = append(errs, errors.New("weights must be non-negative"))
	}
	return errors.Join(errs...)
}
