package session

import (
	"fmt"
	"math"

	"github.com/banshee-data/pathviz/internal/config"
	"github.com/banshee-data/pathviz/internal/optimizer"
)

// ParamsFromTunables converts the loaded tunables file into request params.
func ParamsFromTunables(t *config.Tunables) optimizer.Params {
	return optimizer.Params{
		NPoints:      t.GetNPoints(),
		SafetyMargin: t.GetSafetyMargin(),
		Weights: optimizer.Weights{
			Length:     t.GetWeightLength(),
			Smoothness: t.GetWeightSmoothness(),
			Obstacle:   t.GetWeightObstacle(),
		},
		NIterations:  t.GetNIterations(),
		LearningRate: t.GetLearningRate(),
		Momentum:     t.GetMomentum(),
	}
}

// TunableDef describes one adjustable parameter.
type TunableDef struct {
	Name string
	Step float64
	get  func(optimizer.Params) float64
	set  func(*optimizer.Params, float64)
}

// Format renders v with a precision that suits the step.
func (t TunableDef) Format(v float64) string {
	switch {
	case t.Step >= 1:
		return fmt.Sprintf("%.0f", v)
	case t.Step >= 0.01:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}

// Tunables lists the adjustable parameters in display order.
var Tunables = []TunableDef{
	{
		Name: "Points", Step: 1,
		get: func(p optimizer.Params) float64 { return float64(p.NPoints) },
		set: func(p *optimizer.Params, v float64) { p.NPoints = int(math.Round(v)) },
	},
	{
		Name: "Safety margin", Step: 1,
		get: func(p optimizer.Params) float64 { return p.SafetyMargin },
		set: func(p *optimizer.Params, v float64) { p.SafetyMargin = v },
	},
	{
		Name: "Length weight", Step: 0.5,
		get: func(p optimizer.Params) float64 { return p.Weights.Length },
		set: func(p *optimizer.Params, v float64) { p.Weights.Length = v },
	},
	{
		Name: "Smoothness weight", Step: 5,
		get: func(p optimizer.Params) float64 { return p.Weights.Smoothness },
		set: func(p *optimizer.Params, v float64) { p.Weights.Smoothness = v },
	},
	{
		Name: "Obstacle weight", Step: 100,
		get: func(p optimizer.Params) float64 { return p.Weights.Obstacle },
		set: func(p *optimizer.Params, v float64) { p.Weights.Obstacle = v },
	},
	{
		Name: "Iterations", Step: 50,
		get: func(p optimizer.Params) float64 { return float64(p.NIterations) },
		set: func(p *optimizer.Params, v float64) { p.NIterations = int(math.Round(v)) },
	},
	{
		Name: "Learning rate", Step: 0.0005,
		get: func(p optimizer.Params) float64 { return p.LearningRate },
		set: func(p *optimizer.Params, v float64) { p.LearningRate = v },
	},
	{
		Name: "Momentum", Step: 0.05,
		get: func(p optimizer.Params) float64 { return p.Momentum },
		set: func(p *optimizer.Params, v float64) { p.Momentum = v },
	},
}

// TunableValue returns the current value of Tunables[i].
func (s *Session) TunableValue(i int) float64 {
	return Tunables[i].get(s.params)
}

// AdjustTunable moves Tunables[i] by steps increments. Changes that would make
// the params invalid are rejected and leave them untouched. The new value
// applies to the next run.
func (s *Session) AdjustTunable(i, steps int) error {
	if i < 0 || i >= len(Tunables) {
		return fmt.Errorf("no tunable %d", i)
	}
	def := Tunables[i]
	p := s.params
	v := def.get(p) + float64(steps)*def.Step
	// Snap to the step grid so repeated float steps do not drift.
	v = math.Round(v/def.Step) * def.Step
	def.set(&p, v)
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	s.markDirty()
	return nil
}
