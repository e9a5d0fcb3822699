package caret

// Host supplies the caret offset of the editing block at the time of a key
// event. The offset counts runes from the start of the block text; 0 means
// the caret is before the first character. ok is false when the host cannot
// determine the caret, which disables the split and merge transitions.
type Host interface {
	CaretOffset() (offset int, ok bool)
}

// TextHost is a Host that can also report the live, not yet committed text of
// the editing block. When available, structural transitions commit it with an
// EndEdit before changing the block sequence.
type TextHost interface {
	Host
	LiveText() string
}

// Offset is a Host with a fixed, known caret offset.
type Offset int

// CaretOffset returns the offset.
func (o Offset) CaretOffset() (int, bool) {
	return int(o), true
}

// Unavailable is a Host that never knows the caret offset.
var Unavailable Host = unavailable{}

type unavailable struct{}

func (unavailable) CaretOffset() (int, bool) {
	return 0, false
}

// Snapshot is a TextHost built from values captured by the host.
type Snapshot struct {
	Text   string
	Caret  int
	HasPos bool
}

// At returns a Snapshot of text with the caret at offset.
func At(text string, offset int) Snapshot {
	return Snapshot{Text: text, Caret: offset, HasPos: true}
}

// CaretOffset returns the captured caret offset.
func (s Snapshot) CaretOffset() (int, bool) {
	return s.Caret, s.HasPos
}

// LiveText returns the captured text.
func (s Snapshot) LiveText() string {
	return s.Text
}
