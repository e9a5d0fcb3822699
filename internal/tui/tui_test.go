package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/editor"
	"github.com/dshills/blockpad/internal/input/key"
)

func newTestApp(t *testing.T, texts ...string) (*App, tcell.SimulationScreen, *editor.Editor) {
	t.Helper()
	if len(texts) == 0 {
		texts = []string{""}
	}
	s := tcell.NewSimulationScreen("UTF-8")
	ed := editor.New(editor.WithDocument(document.NewFromTexts(texts)))
	a := New(s, ed)
	if err := a.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(40, 8)
	return a, s, ed
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func specialKey(k tcell.Key, mod tcell.ModMask) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, mod)
}

func typeText(a *App, s string) {
	for _, r := range s {
		a.handleKey(runeKey(r))
	}
}

func assertTexts(t *testing.T, ed *editor.Editor, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, ed.Texts()); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_TypeAndSplit(t *testing.T) {
	a, _, ed := newTestApp(t)

	typeText(a, "hi")
	a.handleKey(specialKey(tcell.KeyEnter, tcell.ModNone))
	typeText(a, "yo")

	if a.cur != 1 || !a.editing {
		t.Fatalf("cur = %d editing = %v, want editing block 1", a.cur, a.editing)
	}
	if !a.handleKey(specialKey(tcell.KeyCtrlQ, tcell.ModCtrl)) {
		t.Fatal("Ctrl+Q should quit")
	}
	a.commit()
	assertTexts(t, ed, "hi", "yo")
}

func TestApp_BackspaceMerges(t *testing.T) {
	a, _, ed := newTestApp(t, "Hello", "World")

	a.handleKey(specialKey(tcell.KeyDown, tcell.ModNone))
	if a.cur != 1 || a.line.caret != 5 {
		t.Fatalf("after Down cur = %d caret = %d, want 1 and 5", a.cur, a.line.caret)
	}

	a.handleKey(specialKey(tcell.KeyHome, tcell.ModNone))
	a.handleKey(specialKey(tcell.KeyBackspace2, tcell.ModNone))

	assertTexts(t, ed, "HelloWorld")
	if a.cur != 0 || a.line.caret != 5 || a.line.LiveText() != "HelloWorld" {
		t.Errorf("after merge cur = %d caret = %d text = %q", a.cur, a.line.caret, a.line.LiveText())
	}

	// Backspace away from the start edits text.
	a.handleKey(specialKey(tcell.KeyBackspace2, tcell.ModNone))
	a.commit()
	assertTexts(t, ed, "HellWorld")
}

func TestApp_BackspaceOnFirstBlock(t *testing.T) {
	a, _, ed := newTestApp(t, "abc")
	a.handleKey(specialKey(tcell.KeyHome, tcell.ModNone))
	a.handleKey(specialKey(tcell.KeyBackspace, tcell.ModNone))
	a.commit()
	assertTexts(t, ed, "abc")
}

func TestApp_ShiftEnterInsertsNewline(t *testing.T) {
	a, _, ed := newTestApp(t)

	typeText(a, "a")
	a.handleKey(specialKey(tcell.KeyEnter, tcell.ModShift))
	typeText(a, "b")
	a.commit()

	assertTexts(t, ed, "a\nb")
}

func TestApp_CursorMovement(t *testing.T) {
	a, _, ed := newTestApp(t, "ac")

	a.handleKey(specialKey(tcell.KeyEnd, tcell.ModNone))
	a.handleKey(specialKey(tcell.KeyLeft, tcell.ModNone))
	typeText(a, "b")
	a.handleKey(specialKey(tcell.KeyRight, tcell.ModNone))
	typeText(a, "d")
	a.handleKey(specialKey(tcell.KeyHome, tcell.ModNone))
	a.handleKey(specialKey(tcell.KeyDelete, tcell.ModNone))
	a.commit()

	assertTexts(t, ed, "bcd")
}

func TestApp_EscapeAndResume(t *testing.T) {
	a, _, ed := newTestApp(t, "one", "two")

	typeText(a, "!")
	a.handleKey(specialKey(tcell.KeyEscape, tcell.ModNone))
	if a.editing {
		t.Fatal("Escape should stop editing")
	}
	if _, ok := ed.Editing(); ok {
		t.Error("editor still has an editing block")
	}
	assertTexts(t, ed, "!one", "two")

	a.handleKey(specialKey(tcell.KeyDown, tcell.ModNone))
	typeText(a, "ignored")
	if a.cur != 1 || a.editing {
		t.Fatalf("Down while viewing: cur = %d editing = %v", a.cur, a.editing)
	}

	a.handleKey(specialKey(tcell.KeyEnter, tcell.ModNone))
	if !a.editing {
		t.Fatal("Enter while viewing should resume editing")
	}
	typeText(a, "?")
	a.commit()
	assertTexts(t, ed, "!one", "two?")
}

func TestApp_FollowsQueuedOps(t *testing.T) {
	a, _, ed := newTestApp(t, "a", "b")
	a.handleKey(specialKey(tcell.KeyDown, tcell.ModNone))

	ed.Queue().Push(document.NewInsert(0, "z"))
	typeText(a, "x")
	if a.cur != 2 {
		t.Errorf("cur = %d, want 2", a.cur)
	}

	a.handleKey(specialKey(tcell.KeyEscape, tcell.ModNone))
	assertTexts(t, ed, "z", "a", "bx")
}

func TestApp_UpDownBounds(t *testing.T) {
	a, _, _ := newTestApp(t, "a", "b")

	a.handleKey(specialKey(tcell.KeyUp, tcell.ModNone))
	if a.cur != 0 {
		t.Errorf("Up on first block moved to %d", a.cur)
	}
	a.handleKey(specialKey(tcell.KeyDown, tcell.ModNone))
	a.handleKey(specialKey(tcell.KeyDown, tcell.ModNone))
	if a.cur != 1 {
		t.Errorf("Down past last block moved to %d", a.cur)
	}
}

func screenRow(s tcell.SimulationScreen, y int) string {
	cells, width, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < width; x++ {
		c := cells[y*width+x]
		if len(c.Runes) > 0 {
			b.WriteString(string(c.Runes))
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func TestApp_Draw(t *testing.T) {
	a, s, _ := newTestApp(t, "# Title", "body")
	a.draw()

	if got := screenRow(s, 0); !strings.Contains(got, "# Title") {
		t.Errorf("row 0 = %q, want raw text of the editing block", got)
	}
	if got := screenRow(s, 0); !strings.HasPrefix(got, "▌") {
		t.Errorf("row 0 = %q, want selection gutter", got)
	}
	if got := screenRow(s, 1); !strings.Contains(got, "body") {
		t.Errorf("row 1 = %q, want second block", got)
	}
	if got := screenRow(s, 7); !strings.Contains(got, "editing  block 1/2") {
		t.Errorf("status row = %q", got)
	}

	x, y, visible := s.GetCursor()
	if !visible || x != gutterWidth || y != 0 {
		t.Errorf("cursor = (%d, %d, %v), want (%d, 0, true)", x, y, visible, gutterWidth)
	}
}

func TestApp_DrawScrollsToCursor(t *testing.T) {
	texts := make([]string, 20)
	for i := range texts {
		texts[i] = string(rune('a' + i))
	}
	a, s, _ := newTestApp(t, texts...)
	for i := 0; i < 15; i++ {
		a.handleKey(specialKey(tcell.KeyDown, tcell.ModNone))
	}
	a.draw()

	_, y, visible := s.GetCursor()
	if !visible || y != 6 {
		t.Errorf("cursor row = %d (visible %v), want last body row 6", y, visible)
	}
	if got := screenRow(s, 6); !strings.Contains(got, "p") {
		t.Errorf("row 6 = %q, want block p", got)
	}
}

func TestApp_LoopQuits(t *testing.T) {
	a, s, ed := newTestApp(t)

	s.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	s.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)

	if err := a.Loop(context.Background()); err != nil {
		t.Fatalf("Loop() error = %v", err)
	}
	assertTexts(t, ed, "x")
}

func TestApp_LoopCancelled(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Loop(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Loop() = %v, want context.Canceled", err)
	}
	if a.editing {
		t.Error("Loop() should commit the edit session on exit")
	}
}

func TestConvertEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want key.Event
	}{
		{"rune", runeKey('a'), key.NewRuneEvent('a', key.ModNone)},
		{"enter", specialKey(tcell.KeyEnter, tcell.ModNone), key.MustParse("Enter")},
		{"shift enter", specialKey(tcell.KeyEnter, tcell.ModShift), key.MustParse("Shift+Enter")},
		{"backspace", specialKey(tcell.KeyBackspace, tcell.ModNone), key.MustParse("Backspace")},
		{"backspace2", specialKey(tcell.KeyBackspace2, tcell.ModNone), key.MustParse("Backspace")},
		{"ctrl letter", specialKey(tcell.KeyCtrlQ, tcell.ModCtrl), key.MustParse("Ctrl+Q")},
		{"alt arrow", specialKey(tcell.KeyUp, tcell.ModAlt), key.MustParse("Alt+Up")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertEvent(tt.ev)
			if !got.Matches(tt.want) || !tt.want.Matches(got) {
				t.Errorf("convertEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	var l line
	l.reset("ab", 9)
	if l.caret != 2 {
		t.Fatalf("reset clamps caret: got %d", l.caret)
	}

	l.insert('\n')
	l.insert('世')
	l.insert('x')
	if got := l.LiveText(); got != "ab\n世x" {
		t.Fatalf("LiveText() = %q", got)
	}
	if row, col := l.cursor(); row != 1 || col != 3 {
		t.Errorf("cursor() = (%d, %d), want (1, 3)", row, col)
	}

	l.home()
	if off, ok := l.CaretOffset(); !ok || off != 3 {
		t.Errorf("home caret = %d, want 3", off)
	}
	if !l.backspace() || l.LiveText() != "ab世x" {
		t.Errorf("backspace over newline: %q", l.LiveText())
	}
	l.end()
	if l.caret != 4 {
		t.Errorf("end caret = %d, want 4", l.caret)
	}

	l.reset("", 0)
	if l.backspace() {
		t.Error("backspace at offset 0 should report false")
	}
	l.del()
	l.left()
	l.right()
	if l.LiveText() != "" || l.caret != 0 {
		t.Errorf("edits on empty line changed it: %q %d", l.LiveText(), l.caret)
	}
}
