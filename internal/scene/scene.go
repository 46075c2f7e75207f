// Package scene holds the authored planning problem: start, goal and obstacles,
// plus the transient obstacle being drawn and the playback overlay.
package scene

import (
	"github.com/banshee-data/pathviz/internal/geom"
)

// MinObstacleRadiusPx is the smallest drawn radius, in screen pixels, that
// produces an obstacle on release.
const MinObstacleRadiusPx = 5.0

// Obstacle is a circular obstacle in world space.
type Obstacle struct {
	Center geom.Point `json:"center"`
	Radius float64    `json:"radius"`
}

// Overlay is the trace frame currently shown over the scene.
type Overlay struct {
	Path      geom.Path
	Iteration int
	Cost      float64
}

// Scene is the authored input. The zero value is an empty scene.
type Scene struct {
	start     *geom.Point
	goal      *geom.Point
	obstacles []Obstacle
	pending   *Obstacle
	overlay   *Overlay
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Start returns the start point, if set.
func (s *Scene) Start() (geom.Point, bool) {
	if s.start == nil {
		return geom.Point{}, false
	}
	return *s.start, true
}

// Goal returns the goal point, if set.
func (s *Scene) Goal() (geom.Point, bool) {
	if s.goal == nil {
		return geom.Point{}, false
	}
	return *s.goal, true
}

// Obstacles returns a copy of the committed obstacles in insertion order.
func (s *Scene) Obstacles() []Obstacle {
	out := make([]Obstacle, len(s.obstacles))
	copy(out, s.obstacles)
	return out
}

// ObstacleCount returns the number of committed obstacles.
func (s *Scene) ObstacleCount() int { return len(s.obstacles) }

// Pending returns the in-progress obstacle, if one is being drawn.
func (s *Scene) Pending() (Obstacle, bool) {
	if s.pending == nil {
		return Obstacle{}, false
	}
	return *s.pending, true
}

// SetStart replaces the start point.
func (s *Scene) SetStart(p geom.Point) {
	s.start = &p
}

// SetGoal replaces the goal point.
func (s *Scene) SetGoal(p geom.Point) {
	s.goal = &p
}

// BeginObstacle starts drawing a zero-radius obstacle at center. Any previous
// in-progress obstacle is dropped.
func (s *Scene) BeginObstacle(center geom.Point) {
	s.pending = &Obstacle{Center: center}
}

// UpdateObstacleRadius sets the in-progress radius to the distance between its
// fixed center and current. It is a no-op when nothing is being drawn.
func (s *Scene) UpdateObstacleRadius(current geom.Point) {
	if s.pending == nil {
		return
	}
	s.pending.Radius = s.pending.Center.Dist(current)
}

// CommitObstacle ends the draw. The obstacle is appended only if its radius
// exceeds minRadius (world units); otherwise it is discarded.
func (s *Scene) CommitObstacle(minRadius float64) (Obstacle, bool) {
	if s.pending == nil {
		return Obstacle{}, false
	}
	o := *s.pending
	s.pending = nil
	if o.Radius <= minRadius {
		return o, false
	}
	s.obstacles = append(s.obstacles, o)
	return o, true
}

// CancelObstacle drops the in-progress obstacle without committing it.
func (s *Scene) CancelObstacle() {
	s.pending = nil
}

// SetOverlay shows a trace frame over the scene.
func (s *Scene) SetOverlay(path geom.Path, iteration int, cost float64) {
	s.overlay = &Overlay{Path: path, Iteration: iteration, Cost: cost}
}

// Overlay returns the current playback overlay, if any.
func (s *Scene) Overlay() (Overlay, bool) {
	if s.overlay == nil {
		return Overlay{}, false
	}
	return *s.overlay, true
}

// ClearOverlay removes the playback overlay.
func (s *Scene) ClearOverlay() {
	s.overlay = nil
}

// Clear resets the scene to empty.
func (s *Scene) Clear() {
	*s = Scene{}
}

// Snapshot is a copy of the authored input, detached from the live scene.
type Snapshot struct {
	Start     *geom.Point `json:"start,omitempty"`
	Goal      *geom.Point `json:"goal,omitempty"`
	Obstacles []Obstacle  `json:"obstacles"`
}

// Snapshot copies the authored input.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{Obstacles: s.Obstacles()}
	if p, ok := s.Start(); ok {
		snap.Start = &p
	}
	if p, ok := s.Goal(); ok {
		snap.Goal = &p
	}
	return snap
}
