package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/blockpad/internal/caret"
	"github.com/dshills/blockpad/internal/editor"
	"github.com/dshills/blockpad/internal/input/key"
	"github.com/dshills/blockpad/internal/logging"
)

var (
	styleText    = tcell.StyleDefault
	styleGutter  = tcell.StyleDefault.Dim(true)
	styleEditing = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus  = tcell.StyleDefault.Reverse(true)
	styleError   = tcell.StyleDefault.Reverse(true).Foreground(tcell.ColorRed)
)

// App is a terminal host driving an Editor.
type App struct {
	screen tcell.Screen
	ed     *editor.Editor
	log    *logging.Logger

	// cur is the selected block; it is being edited when editing is true.
	cur     int
	editing bool
	line    line

	status  string
	failed  bool
	quitKey key.Event
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithQuitKey sets the key that leaves the editor. Defaults to Ctrl+Q.
func WithQuitKey(ev key.Event) Option {
	return func(a *App) {
		a.quitKey = ev
	}
}

// New creates an App drawing ed on screen.
func New(screen tcell.Screen, ed *editor.Editor, opts ...Option) *App {
	a := &App{
		screen:  screen,
		ed:      ed,
		log:     logging.Nop(),
		quitKey: key.MustParse("Ctrl+Q"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithComponent("tui")
	return a
}

// NewScreen creates a screen for the controlling terminal.
func NewScreen() (tcell.Screen, error) {
	return tcell.NewScreen()
}

// Run initializes the screen, processes events until the quit key or ctx
// is done, and restores the terminal.
func (a *App) Run(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}
	defer a.screen.Fini()
	return a.Loop(ctx)
}

// Init initializes the screen and starts editing the first block.
func (a *App) Init() error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	a.focus(0, 0)
	return nil
}

// Loop processes events on an initialized screen. The live text is
// committed before Loop returns.
func (a *App) Loop(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		a.draw()
		ev := a.screen.PollEvent()
		switch e := ev.(type) {
		case nil:
			a.commit()
			return nil
		case *tcell.EventKey:
			if a.handleKey(e) {
				a.commit()
				return nil
			}
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				a.commit()
				return err
			}
		}
	}
}

// Refresh asks the event loop to redraw, for example after the renderer
// was swapped.
func (a *App) Refresh() {
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// handleKey processes one key event. It returns true when the app should quit.
func (a *App) handleKey(e *tcell.EventKey) bool {
	ev := convertEvent(e)
	if ev.Matches(a.quitKey) {
		return true
	}

	switch {
	case ev.Is(key.KeyUp) && ev.Modifiers.IsEmpty():
		a.move(a.cur - 1)
		return false
	case ev.Is(key.KeyDown) && ev.Modifiers.IsEmpty():
		a.move(a.cur + 1)
		return false
	}

	if !a.editing {
		if ev.Is(key.KeyEnter) {
			a.focus(a.cur, -1)
		}
		return false
	}

	if ev.Is(key.KeyEscape) {
		a.commit()
		return false
	}

	res, err := a.ed.KeyDown(a.cur, ev, &a.line)
	if err != nil {
		a.fail(err)
		a.editing = false
		return false
	}
	if res.Handled {
		idx, ok := a.ed.Editing()
		if !ok {
			a.editing = false
			return false
		}
		a.cur = idx
		a.line.reset(a.text(idx), res.Caret)
		a.setStatus("")
		return false
	}

	// Ops queued by other producers may have moved the editing block.
	idx, ok := a.ed.Editing()
	if !ok {
		a.editing = false
		return false
	}
	a.cur = idx
	a.editText(ev)
	return false
}

// editText applies a key that the controller left to the host.
func (a *App) editText(ev key.Event) {
	b := a.ed.Bindings()
	switch {
	case ev.Key == b.Split.Key && b.Newline != key.ModNone && ev.Modifiers.Has(b.Newline):
		a.line.insert('\n')
	case ev.IsChar():
		a.line.insert(ev.Rune)
	case ev.Is(key.KeyBackspace):
		a.line.backspace()
	case ev.Is(key.KeyDelete):
		a.line.del()
	case ev.Is(key.KeyLeft):
		a.line.left()
	case ev.Is(key.KeyRight):
		a.line.right()
	case ev.Is(key.KeyHome):
		a.line.home()
	case ev.Is(key.KeyEnd):
		a.line.end()
	}
}

// move commits the current block and edits block i.
func (a *App) move(i int) {
	if i < 0 || i >= a.ed.Len() {
		return
	}
	wasEditing := a.editing
	a.commit()
	a.cur = i
	if wasEditing {
		a.focus(i, -1)
	}
}

// focus starts editing block i with the caret at offset; a negative
// offset places it at the end.
func (a *App) focus(i, offset int) {
	if err := a.ed.FocusIn(i); err != nil {
		a.fail(err)
		return
	}
	a.cur = i
	a.editing = true
	text := a.text(i)
	if offset < 0 {
		offset = len([]rune(text))
	}
	a.line.reset(text, offset)
}

// commit ends the edit session, storing the live text.
func (a *App) commit() {
	if !a.editing {
		return
	}
	a.editing = false
	if err := a.ed.FocusOut(a.cur, a.line.LiveText()); err != nil {
		a.fail(err)
	}
}

func (a *App) text(i int) string {
	texts := a.ed.Texts()
	if i < 0 || i >= len(texts) {
		return ""
	}
	return texts[i]
}

func (a *App) fail(err error) {
	a.log.Error("%v", err)
	a.status = err.Error()
	a.failed = true
}

func (a *App) setStatus(s string) {
	a.status = s
	a.failed = false
}

// row is one screen line of the document.
type row struct {
	block int
	text  string
	style tcell.Style
}

func (a *App) rows() (rows []row, cursorRow, cursorCol int) {
	cursorRow = -1
	for _, v := range a.ed.Views() {
		style := styleText
		display := v.Display
		if a.editing && v.Index == a.cur {
			style = styleEditing
			display = a.line.LiveText()
			r, c := a.line.cursor()
			cursorRow, cursorCol = len(rows)+r, c
		}
		for _, s := range strings.Split(strings.TrimRight(display, "\n"), "\n") {
			rows = append(rows, row{block: v.Index, text: s, style: style})
		}
	}
	return rows, cursorRow, cursorCol
}

const gutterWidth = 2

func (a *App) draw() {
	a.screen.Clear()
	width, height := a.screen.Size()
	if height < 2 {
		a.screen.Show()
		return
	}
	body := height - 1

	rows, cursorRow, cursorCol := a.rows()

	anchor := cursorRow
	if anchor < 0 {
		for i, r := range rows {
			if r.block == a.cur {
				anchor = i
				break
			}
		}
	}
	top := 0
	if anchor >= body {
		top = anchor - body + 1
	}

	for y := 0; y < body && top+y < len(rows); y++ {
		r := rows[top+y]
		gutter := " "
		if r.block == a.cur {
			gutter = "▌"
		}
		drawText(a.screen, 0, y, width, gutter, styleGutter)
		drawText(a.screen, gutterWidth, y, width, r.text, r.style)
	}

	a.drawStatus(width, height-1)

	if a.editing && cursorRow >= top && cursorRow-top < body {
		a.screen.ShowCursor(gutterWidth+cursorCol, cursorRow-top)
	} else {
		a.screen.HideCursor()
	}
	a.screen.Show()
}

func (a *App) drawStatus(width, y int) {
	mode := caret.Viewing
	if a.editing {
		mode = caret.Editing
	}
	text := fmt.Sprintf(" %s  block %d/%d", mode, a.cur+1, a.ed.Len())
	if a.status != "" {
		text += "  " + a.status
	}

	style := styleStatus
	if a.failed {
		style = styleError
	}
	for x := 0; x < width; x++ {
		a.screen.SetContent(x, y, ' ', nil, style)
	}
	drawText(a.screen, 0, y, width, text, style)
}

// drawText writes s from column x, one grapheme cluster per cell run,
// clipped at width.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if x+w > width {
			return
		}
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
}
