package tui

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/render"
)

// Each terminal cell holds a 2x4 braille dot matrix.
const (
	dotsPerCellX = 2
	dotsPerCellY = 4
	brailleBase  = 0x2800
)

// dotBits maps a dot position within a cell to its braille bit.
var dotBits = [dotsPerCellX][dotsPerCellY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type cell struct {
	mask uint8
	fg   colorful.Color
	inkd bool
	text rune
	tfg  colorful.Color
}

// BrailleSurface is a render.Surface backed by braille dots. Device space is
// the dot grid; Size reports it divided by unit, so callers draw in pixels
// and unit sets how many dots one pixel covers.
type BrailleSurface struct {
	render.PenStack
	cols, rows int
	unit       float64
	bg         colorful.Color
	cells      []cell
}

// NewBrailleSurface returns a cols x rows cell surface where one pixel maps to
// unit dots.
func NewBrailleSurface(cols, rows int, unit float64) *BrailleSurface {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	if unit <= 0 {
		unit = 1
	}
	b := &BrailleSurface{
		PenStack: render.NewPenStack(),
		cols:     cols,
		rows:     rows,
		unit:     unit,
		cells:    make([]cell, cols*rows),
	}
	b.PenStack.Transform(unit, 0, 0)
	return b
}

// Size implements render.Surface.
func (b *BrailleSurface) Size() (float64, float64) {
	return float64(b.cols*dotsPerCellX) / b.unit, float64(b.rows*dotsPerCellY) / b.unit
}

// Clear implements render.Surface.
func (b *BrailleSurface) Clear(c color.Color) {
	b.bg, _ = colorful.MakeColor(c)
	for i := range b.cells {
		b.cells[i] = cell{}
	}
}

// StrokeLine implements render.Surface.
func (b *BrailleSurface) StrokeLine(pts ...geom.Point) {
	pen := b.Pen()
	d := newDasher(pen)
	for i := 1; i < len(pts); i++ {
		p0, p1 := pen.Transform.Apply(pts[i-1]), pen.Transform.Apply(pts[i])
		b.line(p0, p1, pen.Stroke, d)
	}
}

// FillCircle implements render.Surface.
func (b *BrailleSurface) FillCircle(center geom.Point, radius float64) {
	pen := b.Pen()
	c := pen.Transform.Apply(center)
	r := pen.Transform.Len(radius)
	if r < 0.5 {
		b.dot(int(math.Round(c.X)), int(math.Round(c.Y)), pen.Fill)
		return
	}
	for y := int(math.Ceil(c.Y - r)); y <= int(math.Floor(c.Y+r)); y++ {
		dy := float64(y) - c.Y
		half := math.Sqrt(math.Max(0, r*r-dy*dy))
		for x := int(math.Ceil(c.X - half)); x <= int(math.Floor(c.X+half)); x++ {
			b.dot(x, y, pen.Fill)
		}
	}
}

// StrokeCircle implements render.Surface.
func (b *BrailleSurface) StrokeCircle(center geom.Point, radius float64) {
	pen := b.Pen()
	c := pen.Transform.Apply(center)
	r := pen.Transform.Len(radius)
	d := newDasher(pen)
	// Sample at half-dot arc spacing so the outline has no gaps.
	n := int(math.Max(8, math.Ceil(4*math.Pi*r)))
	step := 2 * math.Pi * r / float64(n)
	lastX, lastY := math.MinInt, math.MinInt
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x := int(math.Round(c.X + r*math.Cos(a)))
		y := int(math.Round(c.Y + r*math.Sin(a)))
		on := d.advance(step)
		if x == lastX && y == lastY {
			continue
		}
		lastX, lastY = x, y
		if on {
			b.dot(x, y, pen.Stroke)
		}
	}
}

// FillText implements render.Surface. Text occupies whole cells starting at
// the cell holding p, overriding any dots there.
func (b *BrailleSurface) FillText(p geom.Point, size float64, s string) {
	pen := b.Pen()
	d := pen.Transform.Apply(p)
	cx := int(math.Floor(d.X / dotsPerCellX))
	cy := int(math.Floor((d.Y - 1) / dotsPerCellY))
	fg, ok := colorful.MakeColor(pen.Fill)
	if !ok {
		return
	}
	for _, r := range s {
		if c := b.cell(cx, cy); c != nil {
			c.text = r
			c.tfg = fg
		}
		cx++
	}
}

// Blit copies the surface onto screen with its top-left cell at (x0, y0).
func (b *BrailleSurface) Blit(screen tcell.Screen, x0, y0 int) {
	bg := toTcell(b.bg)
	for y := 0; y < b.rows; y++ {
		for x := 0; x < b.cols; x++ {
			c := b.cells[y*b.cols+x]
			style := tcell.StyleDefault.Background(bg)
			ch := ' '
			switch {
			case c.text != 0:
				ch = c.text
				style = style.Foreground(toTcell(c.tfg))
			case c.mask != 0:
				ch = rune(brailleBase + int(c.mask))
				style = style.Foreground(toTcell(c.fg))
			}
			screen.SetContent(x0+x, y0+y, ch, nil, style)
		}
	}
}

// Rune returns what Blit would draw at cell (x, y).
func (b *BrailleSurface) Rune(x, y int) rune {
	c := b.cell(x, y)
	switch {
	case c == nil:
		return 0
	case c.text != 0:
		return c.text
	case c.mask != 0:
		return rune(brailleBase + int(c.mask))
	default:
		return ' '
	}
}

func (b *BrailleSurface) cell(cx, cy int) *cell {
	if cx < 0 || cy < 0 || cx >= b.cols || cy >= b.rows {
		return nil
	}
	return &b.cells[cy*b.cols+cx]
}

// dot sets one dot, blending c over the cell's current ink by c's alpha.
func (b *BrailleSurface) dot(x, y int, c color.Color) {
	if x < 0 || y < 0 {
		return
	}
	ce := b.cell(x/dotsPerCellX, y/dotsPerCellY)
	if ce == nil {
		return
	}
	ink, ok := colorful.MakeColor(c)
	if !ok {
		return
	}
	_, _, _, a := c.RGBA()
	alpha := float64(a) / 0xffff
	base := b.bg
	if ce.inkd {
		base = ce.fg
	}
	ce.fg = base.BlendRgb(ink, alpha).Clamped()
	ce.inkd = true
	ce.mask |= dotBits[x%dotsPerCellX][y%dotsPerCellY]
}

// line draws a Bresenham line between device points.
func (b *BrailleSurface) line(p0, p1 geom.Point, c color.Color, d *dasher) {
	x0, y0 := int(math.Round(p0.X)), int(math.Round(p0.Y))
	x1, y1 := int(math.Round(p1.X)), int(math.Round(p1.Y))
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	step := 0.0
	for {
		if d.advance(step) {
			b.dot(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		moved := 0
		if e2 >= dy {
			err += dy
			x0 += sx
			moved++
		}
		if e2 <= dx {
			err += dx
			y0 += sy
			moved++
		}
		step = 1
		if moved == 2 {
			step = math.Sqrt2
		}
	}
}

// dasher tracks distance along a stroked outline against a dash pattern.
type dasher struct {
	pattern []float64
	total   float64
	pos     float64
}

func newDasher(pen render.Pen) *dasher {
	d := &dasher{}
	for _, l := range pen.Dashes {
		l = pen.Transform.Len(l)
		if l <= 0 {
			return &dasher{}
		}
		d.pattern = append(d.pattern, l)
		d.total += l
	}
	if len(d.pattern)%2 == 1 {
		d.pattern = append(d.pattern, d.pattern...)
		d.total *= 2
	}
	return d
}

// advance moves dist along the outline and reports whether the new position
// is inked.
func (d *dasher) advance(dist float64) bool {
	if d.total == 0 {
		return true
	}
	d.pos = math.Mod(d.pos+dist, d.total)
	at := d.pos
	for i, l := range d.pattern {
		if at < l {
			return i%2 == 0
		}
		at -= l
	}
	return true
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
