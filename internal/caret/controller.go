package caret

import (
	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/input/key"
)

// State is the display state of a single block.
type State uint8

const (
	// Viewing shows rendered markup.
	Viewing State = iota

	// Editing shows raw text and accepts caret input.
	Editing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// Bindings selects the keys that drive structural transitions.
type Bindings struct {
	// Split inserts a block below the editing block.
	Split key.Event

	// Merge joins the editing block into its predecessor at caret offset 0.
	Merge key.Event

	// Newline is the modifier that turns Split into a literal newline.
	Newline key.Modifier
}

// DefaultBindings returns Enter to split, Backspace to merge and Shift for
// literal newlines.
func DefaultBindings() Bindings {
	return Bindings{
		Split:   key.NewSpecialEvent(key.KeyEnter, key.ModNone),
		Merge:   key.NewSpecialEvent(key.KeyBackspace, key.ModNone),
		Newline: key.ModShift,
	}
}

// TransitionFunc is called after the editing block changes.
// from and to are -1 when no block was or is being edited.
type TransitionFunc func(from, to int)

// Controller is the per-document caret state machine.
// It is not safe for concurrent use.
type Controller struct {
	editing   int
	bindings  Bindings
	splitTail bool
	callbacks []TransitionFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithBindings sets the key bindings.
func WithBindings(b Bindings) Option {
	return func(c *Controller) {
		c.bindings = b
	}
}

// WithSplitTail makes Split carry the text right of the caret into the new
// block. It requires a TextHost; with a plain Host the new block is empty.
func WithSplitTail(enabled bool) Option {
	return func(c *Controller) {
		c.splitTail = enabled
	}
}

// NewController creates a controller with no block being edited.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		editing:  -1,
		bindings: DefaultBindings(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTransition registers a callback for editing-block changes.
func (c *Controller) OnTransition(fn TransitionFunc) {
	c.callbacks = append(c.callbacks, fn)
}

// Editing returns the index of the block being edited.
func (c *Controller) Editing() (int, bool) {
	return c.editing, c.editing >= 0
}

// State returns the state of block i.
func (c *Controller) State(i int) State {
	if c.editing >= 0 && c.editing == i {
		return Editing
	}
	return Viewing
}

// CanMergeAbove reports whether block i offers the merge transition.
func (c *Controller) CanMergeAbove(i int) bool {
	return i > 0
}

// Bindings returns the controller's key bindings.
func (c *Controller) Bindings() Bindings {
	return c.bindings
}

// FocusIn handles focus gained on block i. If another block is being edited
// its session is ended first, without captured text.
func (c *Controller) FocusIn(i int) []Effect {
	if c.editing == i {
		return nil
	}
	var effects []Effect
	if c.editing >= 0 {
		effects = append(effects, EndEdit{Index: c.editing})
	}
	effects = append(effects, StartEdit{Index: i})
	c.moveTo(i)
	return effects
}

// FocusOut handles focus lost on block i with the text the host read from it.
// Focus lost on a block that is not being edited is ignored.
func (c *Controller) FocusOut(i int, text string) []Effect {
	if c.editing < 0 || c.editing != i {
		return nil
	}
	c.moveTo(-1)
	return []Effect{EndEdit{Index: i, Text: text, Captured: true}}
}

// KeyDown handles a key press on block i. Only the editing block reacts to
// keys; the result is nil for keys that the host should handle as plain text
// input.
func (c *Controller) KeyDown(i int, ev key.Event, h Host) []Effect {
	if c.editing < 0 || c.editing != i {
		return nil
	}
	if h == nil {
		h = Unavailable
	}

	switch {
	case c.isSplit(ev):
		offset, ok := h.CaretOffset()
		if !ok {
			return nil
		}
		return c.split(i, offset, h)

	case c.isMerge(ev):
		offset, ok := h.CaretOffset()
		if !ok || offset != 0 || !c.CanMergeAbove(i) {
			return nil
		}
		return c.merge(i, h)
	}
	return nil
}

// Rebase keeps the editing pointer on the same block after op was applied
// by a writer other than the controller. Removing the editing block ends
// the session without effects.
func (c *Controller) Rebase(op document.Op) {
	if c.editing < 0 {
		return
	}
	switch op := op.(type) {
	case document.InsertOp:
		if op.Index <= c.editing {
			c.moveTo(c.editing + 1)
		}
	case document.RemoveOp:
		switch {
		case op.Index == c.editing:
			c.moveTo(-1)
		case op.Index < c.editing:
			c.moveTo(c.editing - 1)
		}
	case document.MergeOp:
		if op.Second <= c.editing {
			c.moveTo(c.editing - 1)
		}
	}
}

// Cancel drops the editing state without emitting effects. It is used when
// an emitted effect could not be applied.
func (c *Controller) Cancel() {
	c.moveTo(-1)
}

func (c *Controller) isSplit(ev key.Event) bool {
	if ev.Key != c.bindings.Split.Key {
		return false
	}
	if c.bindings.Newline != key.ModNone && ev.Modifiers.Has(c.bindings.Newline) {
		return false
	}
	return ev.Matches(c.bindings.Split)
}

// isMerge matches the merge key whatever extra modifiers are held, so
// Shift+Backspace at offset 0 merges like Backspace.
func (c *Controller) isMerge(ev key.Event) bool {
	m := c.bindings.Merge
	if ev.Key != m.Key || ev.Modifiers&m.Modifiers != m.Modifiers {
		return false
	}
	return ev.Key != key.KeyRune || ev.Rune == m.Rune
}

func (c *Controller) split(i, offset int, h Host) []Effect {
	var effects []Effect
	var tail document.Block

	if th, ok := h.(TextHost); ok {
		text := th.LiveText()
		if c.splitTail {
			runes := []rune(text)
			offset = min(max(offset, 0), len(runes))
			text, tail = string(runes[:offset]), document.NewBlock(string(runes[offset:]))
		}
		effects = append(effects, EndEdit{Index: i, Text: text, Captured: true})
	} else {
		effects = append(effects, EndEdit{Index: i})
	}

	effects = append(effects,
		InsertBelow{Index: i + 1, Block: tail},
		StartEdit{Index: i + 1},
	)
	c.moveTo(i + 1)
	return effects
}

func (c *Controller) merge(i int, h Host) []Effect {
	end := EndEdit{Index: i}
	if th, ok := h.(TextHost); ok {
		end = EndEdit{Index: i, Text: th.LiveText(), Captured: true}
	}

	effects := []Effect{
		end,
		MergeAbove{First: i - 1, Second: i},
		StartEdit{Index: i - 1},
	}
	c.moveTo(i - 1)
	return effects
}

func (c *Controller) moveTo(i int) {
	from := c.editing
	c.editing = i
	if from == i {
		return
	}
	for _, fn := range c.callbacks {
		fn(from, i)
	}
}
