package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/blockpad/internal/input/key"
)

var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyLF:         key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
}

// convertEvent converts a tcell key event to a key.Event. Control codes
// for letters become the letter with Ctrl held.
func convertEvent(ev *tcell.EventKey) key.Event {
	mods := convertMod(ev.Modifiers())

	if ev.Key() == tcell.KeyRune {
		return key.NewRuneEvent(ev.Rune(), mods)
	}
	if k, ok := specialKeys[ev.Key()]; ok {
		return key.NewSpecialEvent(k, mods)
	}
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		r := 'a' + rune(ev.Key()-tcell.KeyCtrlA)
		return key.NewRuneEvent(r, mods.With(key.ModCtrl))
	}
	return key.NewSpecialEvent(key.KeyNone, mods)
}

// convertMod converts tcell modifiers to key modifiers.
func convertMod(m tcell.ModMask) key.Modifier {
	var mod key.Modifier
	if m&tcell.ModShift != 0 {
		mod = mod.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mod = mod.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mod = mod.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mod = mod.With(key.ModMeta)
	}
	return mod
}
