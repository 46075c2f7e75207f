package interact

import "github.com/banshee-data/pathviz/internal/geom"

// EventType identifies a raw input event.
type EventType int

const (
	PointerDown EventType = iota
	PointerMove
	PointerUp
	Wheel
)

func (t EventType) String() string {
	switch t {
	case PointerDown:
		return "pointer-down"
	case PointerMove:
		return "pointer-move"
	case PointerUp:
		return "pointer-up"
	case Wheel:
		return "wheel"
	default:
		return "unknown"
	}
}

// Button identifies the pointer button that changed state.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonMiddle
	ButtonSecondary
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Event is a toolkit-independent pointer or wheel event in screen pixels.
type Event struct {
	Type   EventType
	Screen geom.Point
	Button Button
	Mods   Modifier
	// DeltaY is the wheel delta; negative scrolls up (zoom in).
	DeltaY float64
}

// Mode is the exclusive authoring mode.
type Mode int

const (
	ModePlaceStart Mode = iota
	ModePlaceGoal
	ModeDrawObstacle
)

func (m Mode) String() string {
	switch m {
	case ModePlaceStart:
		return "start"
	case ModePlaceGoal:
		return "goal"
	case ModeDrawObstacle:
		return "obstacle"
	default:
		return "unknown"
	}
}

// Cursor is the pointer affordance the front end should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrabbing
)
