package tui

const (
	panelWidth    = 32
	graphRows     = 8
	minCanvasCols = 20
	minCanvasRows = 6
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && y >= r.y && x < r.x+r.w && y < r.y+r.h
}

func (r rect) empty() bool { return r.w <= 0 || r.h <= 0 }

// layout splits the screen into a status row, the canvas, the cost graph
// under it, a readout panel on the right and a key help row.
type layout struct {
	width, height int
	status        int
	help          int
	canvas        rect
	graph         rect
	panel         rect
}

func computeLayout(width, height int) layout {
	l := layout{width: width, height: height, status: 0, help: height - 1}
	bodyY, bodyH := 1, height-2
	if bodyH < 0 {
		bodyH = 0
	}

	left := width
	if width-panelWidth >= minCanvasCols {
		l.panel = rect{x: width - panelWidth, y: bodyY, w: panelWidth, h: bodyH}
		left = width - panelWidth
	}
	canvasH := bodyH
	if bodyH-graphRows >= minCanvasRows {
		l.graph = rect{x: 0, y: bodyY + bodyH - graphRows, w: left, h: graphRows}
		canvasH = bodyH - graphRows
	}
	l.canvas = rect{x: 0, y: bodyY, w: left, h: canvasH}
	return l
}
