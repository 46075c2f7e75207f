package session

import (
	"fmt"

	"github.com/banshee-data/pathviz/internal/optimizer"
)

// Readouts are the numeric values shown next to the canvas.
type Readouts struct {
	Iteration   int                      `json:"iteration"`
	Cost        float64                  `json:"cost"`
	HasCost     bool                     `json:"has_cost"`
	PathLength  float64                  `json:"path_length"`
	Breakdown   *optimizer.CostBreakdown `json:"breakdown,omitempty"`
	ZoomPercent int                      `json:"zoom_percent"`
}

// CostText formats the current cost, or N/A before the first frame.
func (r Readouts) CostText() string {
	if !r.HasCost {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", r.Cost)
}

// BreakdownText returns the length, smoothness and obstacle terms, each N/A
// until the breakdown of the final path is known.
func (r Readouts) BreakdownText() (length, smoothness, obstacle string) {
	if r.Breakdown == nil {
		return "N/A", "N/A", "N/A"
	}
	return fmt.Sprintf("%.2f", r.Breakdown.Length),
		fmt.Sprintf("%.2f", r.Breakdown.Smoothness),
		fmt.Sprintf("%.2f", r.Breakdown.Obstacle)
}

// ZoomText formats the zoom percentage.
func (r Readouts) ZoomText() string {
	return fmt.Sprintf("%d%%", r.ZoomPercent)
}
