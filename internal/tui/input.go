package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/interact"
)

// mouseButtons pairs tcell button bits with interaction buttons.
var mouseButtons = []struct {
	mask   tcell.ButtonMask
	button interact.Button
}{
	{tcell.Button1, interact.ButtonPrimary},
	{tcell.Button3, interact.ButtonMiddle},
	{tcell.Button2, interact.ButtonSecondary},
}

// mouseTranslator turns tcell's level-triggered mouse reports into
// pointer down, move and up edges.
type mouseTranslator struct {
	prev    tcell.ButtonMask
	last    geom.Point
	hasLast bool
}

// translate converts one report at screen position p into zero or more
// events. inside reports whether the pointer is over the canvas; presses and
// wheel outside it are ignored but releases always pass through.
func (t *mouseTranslator) translate(ev *tcell.EventMouse, p geom.Point, inside bool) []interact.Event {
	btns := ev.Buttons()
	mods := modifiers(ev.Modifiers())
	var out []interact.Event

	if inside {
		switch {
		case btns&tcell.WheelUp != 0:
			out = append(out, interact.Event{Type: interact.Wheel, Screen: p, Mods: mods, DeltaY: -1})
		case btns&tcell.WheelDown != 0:
			out = append(out, interact.Event{Type: interact.Wheel, Screen: p, Mods: mods, DeltaY: 1})
		}
	}
	btns &= tcell.Button1 | tcell.Button2 | tcell.Button3

	moved := !t.hasLast || p != t.last
	if moved && t.hasLast && (inside || t.prev != 0) {
		out = append(out, interact.Event{Type: interact.PointerMove, Screen: p, Mods: mods})
	}
	for _, mb := range mouseButtons {
		was, is := t.prev&mb.mask != 0, btns&mb.mask != 0
		switch {
		case is && !was && inside:
			out = append(out, interact.Event{Type: interact.PointerDown, Screen: p, Button: mb.button, Mods: mods})
		case was && !is:
			out = append(out, interact.Event{Type: interact.PointerUp, Screen: p, Button: mb.button, Mods: mods})
		}
	}
	if !inside {
		// A press that started outside the canvas is never tracked.
		btns &= t.prev
	}
	t.prev = btns
	t.last, t.hasLast = p, true
	return out
}

func modifiers(m tcell.ModMask) interact.Modifier {
	var out interact.Modifier
	if m&tcell.ModShift != 0 {
		out |= interact.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= interact.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= interact.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= interact.ModMeta
	}
	return out
}
