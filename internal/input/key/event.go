package key

import (
	"strings"
	"time"
	"unicode"
)

// Event represents a single key press event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character without Ctrl, Alt or Meta.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune) && !e.Modifiers.Has(ModCtrl|ModAlt|ModMeta)
}

// Is reports whether e is the given special key, ignoring modifiers.
func (e Event) Is(k Key) bool {
	return e.Key == k
}

// Matches reports whether e is the same key with exactly the same modifiers
// as spec. Timestamps are ignored.
func (e Event) Matches(spec Event) bool {
	if e.Key != spec.Key || e.Modifiers != spec.Modifiers {
		return false
	}
	return e.Key != KeyRune || e.Rune == spec.Rune
}

// String returns a specification string that Parse accepts,
// e.g. "Enter", "Shift+Enter", "Ctrl+q".
func (e Event) String() string {
	var name string
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		name = "Space"
	case e.Key == KeyRune:
		name = string(e.Rune)
	default:
		name = e.Key.String()
	}

	mods := e.Modifiers
	if e.IsRune() && mods == ModShift && unicode.IsUpper(e.Rune) {
		mods = ModNone
	}
	if mods.IsEmpty() {
		return name
	}
	return strings.Join([]string{mods.String(), name}, "+")
}
