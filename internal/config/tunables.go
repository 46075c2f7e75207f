// Package config loads the optimizer tunables file and the process settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultTunablesPath is the path to the canonical tunables defaults file.
const DefaultTunablesPath = "config/tunables.defaults.json"

// Defaults used when a field is absent from the tunables file.
const (
	DefaultNPoints          = 20
	DefaultSafetyMargin     = 5.0
	DefaultWeightLength     = 1.0
	DefaultWeightSmoothness = 50.0
	DefaultWeightObstacle   = 1000.0
	DefaultNIterations      = 500
	DefaultLearningRate     = 0.001
	DefaultMomentum         = 0.9
	DefaultFrameInterval    = 10 * time.Millisecond
)

// Tunables are the user-adjustable optimizer and playback parameters. Every
// field is optional; the Get* methods fall back to the defaults above.
type Tunables struct {
	NPoints      *int     `json:"n_points,omitempty"`
	SafetyMargin *float64 `json:"safety_margin,omitempty"`

	WeightLength     *float64 `json:"weight_length,omitempty"`
	WeightSmoothness *float64 `json:"weight_smoothness,omitempty"`
	WeightObstacle   *float64 `json:"weight_obstacle,omitempty"`

	NIterations  *int     `json:"n_iterations,omitempty"`
	LearningRate *float64 `json:"learning_rate,omitempty"`
	Momentum     *float64 `json:"momentum,omitempty"`

	// FrameInterval is the playback cadence as a duration string like "10ms".
	FrameInterval *string `json:"frame_interval,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTunables returns Tunables with every field unset.
func EmptyTunables() *Tunables {
	return &Tunables{}
}

// DefaultTunables returns Tunables with every field set to its default.
func DefaultTunables() *Tunables {
	return &Tunables{
		NPoints:          ptrInt(DefaultNPoints),
		SafetyMargin:     ptrFloat64(DefaultSafetyMargin),
		WeightLength:     ptrFloat64(DefaultWeightLength),
		WeightSmoothness: ptrFloat64(DefaultWeightSmoothness),
		WeightObstacle:   ptrFloat64(DefaultWeightObstacle),
		NIterations:      ptrInt(DefaultNIterations),
		LearningRate:     ptrFloat64(DefaultLearningRate),
		Momentum:         ptrFloat64(DefaultMomentum),
		FrameInterval:    ptrString(DefaultFrameInterval.String()),
	}
}

// LoadTunables loads Tunables from a JSON file. The file must have a .json
// extension and be under 1MB. Fields omitted from the file keep their
// defaults, so partial files are safe.
func LoadTunables(path string) (*Tunables, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tunables file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat tunables file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("tunables file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tunables file: %w", err)
	}

	t := EmptyTunables()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse tunables JSON: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tunables: %w", err)
	}
	return t, nil
}

// Validate checks the fields that are set.
func (t *Tunables) Validate() error {
	if t.NPoints != nil && *t.NPoints < 2 {
		return fmt.Errorf("n_points must be at least 2, got %d", *t.NPoints)
	}
	if t.NIterations != nil && *t.NIterations < 1 {
		return fmt.Errorf("n_iterations must be positive, got %d", *t.NIterations)
	}
	if t.SafetyMargin != nil && *t.SafetyMargin < 0 {
		return fmt.Errorf("safety_margin must be non-negative, got %f", *t.SafetyMargin)
	}
	if t.LearningRate != nil && *t.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %f", *t.LearningRate)
	}
	if t.Momentum != nil && (*t.Momentum < 0 || *t.Momentum >= 1) {
		return fmt.Errorf("momentum must be in [0, 1), got %f", *t.Momentum)
	}
	for name, w := range map[string]*float64{
		"weight_length":     t.WeightLength,
		"weight_smoothness": t.WeightSmoothness,
		"weight_obstacle":   t.WeightObstacle,
	} {
		if w != nil && *w < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *w)
		}
	}
	if t.FrameInterval != nil && *t.FrameInterval != "" {
		d, err := time.ParseDuration(*t.FrameInterval)
		if err != nil {
			return fmt.Errorf("invalid frame_interval '%s': %w", *t.FrameInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("frame_interval must be positive, got %s", d)
		}
	}
	return nil
}

// GetNPoints returns n_points or the default.
func (t *Tunables) GetNPoints() int {
	if t.NPoints == nil {
		return DefaultNPoints
	}
	return *t.NPoints
}

// GetSafetyMargin returns safety_margin or the default.
func (t *Tunables) GetSafetyMargin() float64 {
	if t.SafetyMargin == nil {
		return DefaultSafetyMargin
	}
	return *t.SafetyMargin
}

// GetWeightLength returns weight_length or the default.
func (t *Tunables) GetWeightLength() float64 {
	if t.WeightLength == nil {
		return DefaultWeightLength
	}
	return *t.WeightLength
}

// GetWeightSmoothness returns weight_smoothness or the default.
func (t *Tunables) GetWeightSmoothness() float64 {
	if t.WeightSmoothness == nil {
		return DefaultWeightSmoothness
	}
	return *t.WeightSmoothness
}

// GetWeightObstacle returns weight_obstacle or the default.
func (t *Tunables) GetWeightObstacle() float64 {
	if t.WeightObstacle == nil {
		return DefaultWeightObstacle
	}
	return *t.WeightObstacle
}

// GetNIterations returns n_iterations or the default.
func (t *Tunables) GetNIterations() int {
	if t.NIterations == nil {
		return DefaultNIterations
	}
	return *t.NIterations
}

// GetLearningRate returns learning_rate or the default.
func (t *Tunables) GetLearningRate() float64 {
	if t.LearningRate == nil {
		return DefaultLearningRate
	}
	return *t.LearningRate
}

// GetMomentum returns momentum or the default.
func (t *Tunables) GetMomentum() float64 {
	if t.Momentum == nil {
		return DefaultMomentum
	}
	return *t.Momentum
}

// GetFrameInterval parses frame_interval, falling back to the default when
// unset or unparseable.
func (t *Tunables) GetFrameInterval() time.Duration {
	if t.FrameInterval == nil || *t.FrameInterval == "" {
		return DefaultFrameInterval
	}
	d, err := time.ParseDuration(*t.FrameInterval)
	if err != nil || d <= 0 {
		return DefaultFrameInterval
	}
	return d
}
