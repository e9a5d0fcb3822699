package editor

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/blockpad/internal/caret"
	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/input/key"
	"github.com/dshills/blockpad/internal/logging"
	"github.com/dshills/blockpad/internal/markup"
)

// View is the display state of one block.
type View struct {
	Index int
	State caret.State
	// Text is the stored block text.
	Text string
	// Display is the raw text for the editing block and rendered markup
	// for viewing blocks.
	Display string
}

// KeyResult describes what a key press did.
type KeyResult struct {
	// Handled is true when the key triggered a structural transition; the
	// host must not also insert it as text.
	Handled bool
	// Caret is the caret offset in the new editing block: 0 after a split,
	// the join point after a merge.
	Caret int
}

// Editor owns a Document and the caret Controller that edits it.
// Its methods are safe for concurrent use; operations are still applied
// strictly one at a time.
type Editor struct {
	mu sync.Mutex

	id       uuid.UUID
	doc      *document.Document
	ctl      *caret.Controller
	ctlOpts  []caret.Option
	renderer markup.Renderer
	queue    *Queue
	log      *logging.Logger
	stats    counters
}

// Option configures an Editor.
type Option func(*Editor)

// WithDocument sets the initial document. The editor takes ownership.
func WithDocument(doc *document.Document) Option {
	return func(e *Editor) {
		if doc != nil {
			e.doc = doc
		}
	}
}

// WithRenderer sets the renderer for viewing blocks.
func WithRenderer(r markup.Renderer) Option {
	return func(e *Editor) {
		e.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithController passes options to the caret controller.
func WithController(opts ...caret.Option) Option {
	return func(e *Editor) {
		e.ctlOpts = append(e.ctlOpts, opts...)
	}
}

// New creates an editor over an empty document unless WithDocument is given.
func New(opts ...Option) *Editor {
	e := &Editor{
		id:       uuid.New(),
		doc:      document.New(),
		renderer: markup.Plain,
		queue:    NewQueue(),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ctl = caret.NewController(e.ctlOpts...)
	e.log = e.log.WithComponent("editor").WithField("session", e.id.String())
	e.ctl.OnTransition(func(from, to int) {
		e.log.Debug("editing %d -> %d", from, to)
	})
	e.log.Info("session started with %d blocks", e.doc.Len())
	return e
}

// ID returns the session id.
func (e *Editor) ID() uuid.UUID {
	return e.id
}

// Queue returns the operation queue. Producers may Push from any goroutine;
// the ops are applied by the next Drain, Submit, host event or Run loop.
// Queued ops are applied before the host event that finds them, and the
// block being edited is tracked across them.
func (e *Editor) Queue() *Queue {
	return e.queue
}

// FocusIn starts editing block i.
func (e *Editor) FocusIn(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settleLocked()
	if i < 0 || i >= e.doc.Len() {
		err := &document.OpError{Op: "focus", Index: i, Other: -1, Len: e.doc.Len(), Err: document.ErrIndexOutOfRange}
		e.log.Error("focus in: %v", err)
		return err
	}
	return e.applyLocked(e.ctl.FocusIn(i))
}

// FocusOut ends editing of block i, committing text.
func (e *Editor) FocusOut(i int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i = e.settleLocked().follow(i)
	return e.applyLocked(e.ctl.FocusOut(i, text))
}

// KeyDown feeds a key press on block i to the controller.
func (e *Editor) KeyDown(i int, ev key.Event, h caret.Host) (KeyResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i = e.settleLocked().follow(i)
	effects := e.ctl.KeyDown(i, ev, h)
	if len(effects) == 0 {
		return KeyResult{}, nil
	}

	res := KeyResult{Handled: true}
	for _, eff := range effects {
		if m, ok := eff.(caret.MergeAbove); ok {
			if b, err := e.doc.Block(m.First); err == nil {
				res.Caret = b.Len()
			}
		}
	}
	return res, e.applyLocked(effects)
}

// Submit queues ops and applies everything queued.
func (e *Editor) Submit(ops ...document.Op) error {
	e.queue.Push(ops...)
	return e.Drain()
}

// Drain applies every queued op.
func (e *Editor) Drain() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drainLocked()
}

// Run drains the queue each time ops are pushed until ctx is done. Apply
// errors are logged and reported to onError, which may be nil.
func (e *Editor) Run(ctx context.Context, onError func(error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.queue.Ready():
			if err := e.Drain(); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

// applyLocked applies the controller's ops directly. They were computed
// against the current document, so nothing queued may run ahead of them.
func (e *Editor) applyLocked(effects []caret.Effect) error {
	if len(effects) == 0 {
		return nil
	}
	if e.log.Level() <= logging.LevelDebug {
		names := make([]string, len(effects))
		for i, eff := range effects {
			names[i] = eff.String()
		}
		e.log.Debug("effects %s", strings.Join(names, " "))
	}

	ops := caret.Ops(effects)
	for n, op := range ops {
		if err := e.applyOpLocked(op); err != nil {
			e.failLocked(op, err, len(ops)-n-1)
			e.ctl.Cancel()
			return err
		}
	}
	return nil
}

// drainLocked applies queued ops in arrival order, keeping the editing
// pointer on its block.
func (e *Editor) drainLocked() error {
	for {
		op, ok := e.queue.Pop()
		if !ok {
			return nil
		}
		if err := e.applyOpLocked(op); err != nil {
			e.failLocked(op, err, e.queue.Clear())
			return err
		}
		e.ctl.Rebase(op)
	}
}

// rebased records the editing block before queued ops were applied.
type rebased struct {
	before, after int
}

// follow maps a host index that named the editing block before the drain
// to the index that block has now.
func (r rebased) follow(i int) int {
	if r.before >= 0 && i == r.before && r.after >= 0 {
		return r.after
	}
	return i
}

// settleLocked applies queued ops ahead of a host event. A failing op is
// logged and counted for its producer; the host event still runs.
func (e *Editor) settleLocked() rebased {
	before, ok := e.ctl.Editing()
	if !ok {
		before = -1
	}
	_ = e.drainLocked()
	after, ok := e.ctl.Editing()
	if !ok {
		after = -1
	}
	return rebased{before: before, after: after}
}

func (e *Editor) applyOpLocked(op document.Op) error {
	err := e.doc.Apply(op)
	e.stats.record(op.Kind(), err)
	if err == nil {
		e.log.Debug("%s applied, %d blocks", op, e.doc.Len())
	}
	return err
}

func (e *Editor) failLocked(op document.Op, err error, dropped int) {
	e.stats.discarded.Add(uint64(dropped))
	e.log.WithField("discarded", dropped).Error("%s failed: %v", op, err)
}

// Editing returns the index of the block being edited.
func (e *Editor) Editing() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctl.Editing()
}

// Bindings returns the controller key bindings.
func (e *Editor) Bindings() caret.Bindings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctl.Bindings()
}

// Len returns the number of blocks.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Len()
}

// Document returns a copy of the current document.
func (e *Editor) Document() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Texts returns the block texts.
func (e *Editor) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Texts()
}

// SetRenderer swaps the renderer used for viewing blocks.
func (e *Editor) SetRenderer(r markup.Renderer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderer = r
}

// Views returns the display state of every block.
func (e *Editor) Views() []View {
	e.mu.Lock()
	defer e.mu.Unlock()

	blocks := e.doc.Blocks()
	views := make([]View, len(blocks))
	for i, b := range blocks {
		v := View{Index: i, State: e.ctl.State(i), Text: b.Text()}
		if v.State == caret.Editing {
			v.Display = v.Text
		} else {
			v.Display = b.Render(e.renderer)
		}
		views[i] = v
	}
	return views
}

// Stats returns operation counts.
func (e *Editor) Stats() Stats {
	return e.stats.snapshot()
}

// ResetStats zeroes the operation counts.
func (e *Editor) ResetStats() {
	e.stats.reset()
}
