package tui

import "github.com/rivo/uniseg"

// line is the live text of the editing block with a rune caret. It is the
// caret.TextHost handed to the editor on key events.
type line struct {
	text  []rune
	caret int
}

func (l *line) reset(text string, caret int) {
	l.text = []rune(text)
	l.caret = min(max(caret, 0), len(l.text))
}

// CaretOffset returns the caret position in runes.
func (l *line) CaretOffset() (int, bool) {
	return l.caret, true
}

// LiveText returns the uncommitted text.
func (l *line) LiveText() string {
	return string(l.text)
}

func (l *line) insert(r rune) {
	l.text = append(l.text, 0)
	copy(l.text[l.caret+1:], l.text[l.caret:])
	l.text[l.caret] = r
	l.caret++
}

// backspace deletes the rune before the caret. It returns false at offset 0.
func (l *line) backspace() bool {
	if l.caret == 0 {
		return false
	}
	l.text = append(l.text[:l.caret-1], l.text[l.caret:]...)
	l.caret--
	return true
}

func (l *line) del() {
	if l.caret < len(l.text) {
		l.text = append(l.text[:l.caret], l.text[l.caret+1:]...)
	}
}

func (l *line) left() {
	if l.caret > 0 {
		l.caret--
	}
}

func (l *line) right() {
	if l.caret < len(l.text) {
		l.caret++
	}
}

func (l *line) home() {
	for l.caret > 0 && l.text[l.caret-1] != '\n' {
		l.caret--
	}
}

func (l *line) end() {
	for l.caret < len(l.text) && l.text[l.caret] != '\n' {
		l.caret++
	}
}

// cursor returns the caret row and display column within the text.
func (l *line) cursor() (row, col int) {
	start := 0
	for i := 0; i < l.caret; i++ {
		if l.text[i] == '\n' {
			row++
			start = i + 1
		}
	}
	return row, uniseg.StringWidth(string(l.text[start:l.caret]))
}
