package render

import "image/color"

// Colours used by both views.
var (
	Background    = color.RGBA{0xf8, 0xf9, 0xfa, 0xff}
	GridColor     = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	ObstacleFill  = color.NRGBA{255, 99, 71, 128}
	PendingFill   = color.NRGBA{255, 99, 71, 77}
	ObstacleEdge  = color.RGBA{0xff, 0x63, 0x47, 0xff}
	PathColor     = color.RGBA{0x66, 0x7e, 0xea, 0xff}
	StartColor    = color.RGBA{0x28, 0xa7, 0x45, 0xff}
	GoalColor     = color.RGBA{0xdc, 0x35, 0x45, 0xff}
	MarkerOutline = color.White
	LabelColor    = color.Black
	GraphBG       = color.White
	AxisColor     = color.RGBA{0x33, 0x33, 0x33, 0xff}
	CursorColor   = color.RGBA{0xdc, 0x35, 0x45, 0xff}
)
