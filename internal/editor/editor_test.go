package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockpad/internal/caret"
	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/input/key"
	"github.com/dshills/blockpad/internal/logging"
	"github.com/dshills/blockpad/internal/markup"
)

var (
	enter     = key.NewSpecialEvent(key.KeyEnter, key.ModNone)
	backspace = key.NewSpecialEvent(key.KeyBackspace, key.ModNone)
)

func assertTexts(t *testing.T, e *Editor, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, e.Texts()); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
}

func assertEditing(t *testing.T, e *Editor, want int) {
	t.Helper()
	got, ok := e.Editing()
	if want < 0 {
		if ok {
			t.Errorf("Editing() = %d, want none", got)
		}
		return
	}
	if !ok || got != want {
		t.Errorf("Editing() = %d, %v; want %d", got, ok, want)
	}
}

func TestScenario_EnterOnEmptyDocument(t *testing.T) {
	e := New()
	if err := e.FocusIn(0); err != nil {
		t.Fatal(err)
	}

	res, err := e.KeyDown(0, enter, caret.Offset(0))
	if err != nil {
		t.Fatalf("KeyDown() error = %v", err)
	}
	if !res.Handled || res.Caret != 0 {
		t.Errorf("KeyDown() = %+v, want handled with caret 0", res)
	}

	assertTexts(t, e, "", "")
	assertEditing(t, e, 1)
}

func TestScenario_BackspaceMergesIntoPrevious(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"Hello", "World"})))
	if err := e.FocusIn(1); err != nil {
		t.Fatal(err)
	}

	res, err := e.KeyDown(1, backspace, caret.At("World", 0))
	if err != nil {
		t.Fatalf("KeyDown() error = %v", err)
	}
	if !res.Handled || res.Caret != 5 {
		t.Errorf("KeyDown() = %+v, want handled with caret 5", res)
	}

	assertTexts(t, e, "HelloWorld")
	assertEditing(t, e, 0)
}

func TestScenario_EditKeepsLength(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"abc"})))
	if err := e.Submit(document.NewEdit(0, "abcd")); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	assertTexts(t, e, "abcd")
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1", e.Len())
	}
}

func TestScenario_ImportRawText(t *testing.T) {
	e := New(WithDocument(document.Import("line1\nline2\nline3")))
	assertTexts(t, e, "line1", "line2", "line3")
}

func TestEditor_EditingPointerTransfer(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b"})))

	if err := e.FocusIn(0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.KeyDown(0, enter, caret.At("a!", 2)); err != nil {
		t.Fatal(err)
	}
	assertTexts(t, e, "a!", "", "b")
	assertEditing(t, e, 1)

	// Typing in the new block, then merging it back.
	if _, err := e.KeyDown(1, backspace, caret.At("c", 0)); err != nil {
		t.Fatal(err)
	}
	assertTexts(t, e, "a!c", "b")
	assertEditing(t, e, 0)

	if err := e.FocusOut(0, "a!c?"); err != nil {
		t.Fatal(err)
	}
	assertTexts(t, e, "a!c?", "b")
	assertEditing(t, e, -1)
}

func TestEditor_SplitTail(t *testing.T) {
	e := New(
		WithDocument(document.NewFromTexts([]string{"hello"})),
		WithController(caret.WithSplitTail(true)),
	)
	if err := e.FocusIn(0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.KeyDown(0, enter, caret.At("hello world", 5)); err != nil {
		t.Fatal(err)
	}
	assertTexts(t, e, "hello", " world")
	assertEditing(t, e, 1)
}

func TestEditor_UnhandledKeys(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b"})))
	if err := e.FocusIn(0); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		idx  int
		ev   key.Event
		host caret.Host
	}{
		{"plain rune", 0, key.NewRuneEvent('x', key.ModNone), caret.Offset(0)},
		{"shift enter", 0, key.NewSpecialEvent(key.KeyEnter, key.ModShift), caret.Offset(1)},
		{"unknown caret", 0, enter, caret.Unavailable},
		{"nil host", 0, enter, nil},
		{"backspace on first block", 0, backspace, caret.Offset(0)},
		{"key on viewing block", 1, enter, caret.Offset(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.KeyDown(tt.idx, tt.ev, tt.host)
			if err != nil || res.Handled {
				t.Errorf("KeyDown() = %+v, %v; want unhandled", res, err)
			}
		})
	}
	assertTexts(t, e, "a", "b")
	assertEditing(t, e, 0)
}

func TestEditor_FocusInOutOfRange(t *testing.T) {
	e := New()
	for _, i := range []int{-1, 1} {
		err := e.FocusIn(i)
		if !errors.Is(err, document.ErrIndexOutOfRange) {
			t.Errorf("FocusIn(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
	assertEditing(t, e, -1)
}

func TestEditor_FocusInMovesSession(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b"})))
	if err := e.FocusIn(0); err != nil {
		t.Fatal(err)
	}
	if err := e.FocusIn(1); err != nil {
		t.Fatal(err)
	}
	assertEditing(t, e, 1)
	assertTexts(t, e, "a", "b")

	// Focus lost on a block that is not being edited is ignored.
	if err := e.FocusOut(0, "zzz"); err != nil {
		t.Fatal(err)
	}
	assertTexts(t, e, "a", "b")
	assertEditing(t, e, 1)
}

func TestEditor_SubmitFailFast(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a"})))

	err := e.Submit(
		document.NewInsert(1, "b"),
		document.NewEdit(5, "x"),
		document.NewInsert(0, "never"),
	)
	var opErr *document.OpError
	if !errors.As(err, &opErr) || !errors.Is(err, document.ErrIndexOutOfRange) {
		t.Fatalf("Submit() error = %v, want OpError wrapping ErrIndexOutOfRange", err)
	}
	if opErr.Index != 5 || opErr.Len != 2 {
		t.Errorf("OpError = %+v, want index 5 on 2 blocks", opErr)
	}

	assertTexts(t, e, "a", "b")
	if n := e.Queue().Len(); n != 0 {
		t.Errorf("Queue().Len() = %d after failure, want 0", n)
	}

	stats := e.Stats()
	want := Stats{
		Kinds: map[document.Kind]KindStats{
			document.KindEdit:   {Failed: 1},
			document.KindInsert: {Applied: 1},
			document.KindRemove: {},
			document.KindMerge:  {},
		},
		Applied:   1,
		Failed:    1,
		Discarded: 1,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}

	e.ResetStats()
	if s := e.Stats(); s.Applied != 0 || s.Failed != 0 || s.Discarded != 0 {
		t.Errorf("Stats() after reset = %+v", s)
	}
}

func TestEditor_FailureCancelsSession(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b"})))

	// Put the controller out of step with the document so its own edit fails.
	e.ctl.FocusIn(5)
	err := e.FocusOut(5, "x")
	if !errors.Is(err, document.ErrIndexOutOfRange) {
		t.Fatalf("FocusOut() error = %v, want ErrIndexOutOfRange", err)
	}

	assertTexts(t, e, "a", "b")
	assertEditing(t, e, -1)
	if s := e.Stats(); s.Kinds[document.KindEdit].Failed != 1 {
		t.Errorf("Stats() = %+v, want one failed edit", s)
	}
}

func TestEditor_SubmitRebasesEditing(t *testing.T) {
	tests := []struct {
		name      string
		op        document.Op
		editing   int
		wantTexts []string
	}{
		{"insert before", document.NewInsert(0, "z"), 3, []string{"z", "a", "b", "C", "d"}},
		{"insert at editing", document.NewInsert(2, "z"), 3, []string{"a", "b", "z", "C", "d"}},
		{"insert after", document.NewInsert(3, "z"), 2, []string{"a", "b", "C", "z", "d"}},
		{"remove before", document.NewRemove(0), 1, []string{"b", "C", "d"}},
		{"remove after", document.NewRemove(3), 2, []string{"a", "b", "C"}},
		{"merge below", document.NewMerge(0, 1), 1, []string{"ab", "C", "d"}},
		{"merge editing into previous", document.NewMerge(1, 2), 1, []string{"a", "C", "d"}},
		{"merge next into editing", document.NewMerge(2, 3), 2, []string{"a", "b", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithDocument(document.NewFromTexts([]string{"a", "b", "c", "d"})))
			if err := e.FocusIn(2); err != nil {
				t.Fatal(err)
			}
			if err := e.Submit(tt.op); err != nil {
				t.Fatalf("Submit(%s) error = %v", tt.op, err)
			}
			assertEditing(t, e, tt.editing)

			idx, _ := e.Editing()
			if err := e.FocusOut(idx, "C"); err != nil {
				t.Fatalf("FocusOut() error = %v", err)
			}
			assertTexts(t, e, tt.wantTexts...)
		})
	}
}

func TestEditor_SubmitRemovesEditingBlock(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b", "c"})))
	if err := e.FocusIn(1); err != nil {
		t.Fatal(err)
	}
	if err := e.Submit(document.NewRemove(1)); err != nil {
		t.Fatal(err)
	}
	assertEditing(t, e, -1)

	// The stale index no longer names an editing block and is ignored.
	if err := e.FocusOut(1, "lost"); err != nil {
		t.Fatalf("FocusOut() error = %v", err)
	}
	assertTexts(t, e, "a", "c")
}

func TestEditor_StaleIndexAfterSubmitIsIgnored(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b", "c", "d"})))
	if err := e.FocusIn(2); err != nil {
		t.Fatal(err)
	}
	if err := e.Submit(document.NewRemove(0)); err != nil {
		t.Fatal(err)
	}

	if err := e.FocusOut(2, "C-edited"); err != nil {
		t.Fatalf("FocusOut() error = %v", err)
	}
	assertTexts(t, e, "b", "c", "d")
	assertEditing(t, e, 1)
}

func TestEditor_QueuedOpsApplyBeforeKeyDown(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b"})))
	if err := e.FocusIn(1); err != nil {
		t.Fatal(err)
	}

	e.Queue().Push(document.NewRemove(0))
	res, err := e.KeyDown(1, enter, caret.At("b", 1))
	if err != nil {
		t.Fatalf("KeyDown() error = %v", err)
	}
	if !res.Handled {
		t.Error("KeyDown() should split the block that moved to index 0")
	}
	assertTexts(t, e, "b", "")
	assertEditing(t, e, 1)
}

func TestEditor_QueuedOpsApplyBeforeFocusOut(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b", "c"})))
	if err := e.FocusIn(1); err != nil {
		t.Fatal(err)
	}

	e.Queue().Push(document.NewInsert(0, "z"), document.NewInsert(0, "y"))
	if err := e.FocusOut(1, "B"); err != nil {
		t.Fatalf("FocusOut() error = %v", err)
	}
	assertTexts(t, e, "y", "z", "a", "B", "c")
	assertEditing(t, e, -1)
}

func TestEditor_QueuedRemoveOfEditingBlock(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b"})))
	if err := e.FocusIn(1); err != nil {
		t.Fatal(err)
	}

	e.Queue().Push(document.NewRemove(1))
	res, err := e.KeyDown(1, enter, caret.At("b", 1))
	if err != nil {
		t.Fatalf("KeyDown() error = %v", err)
	}
	if res.Handled {
		t.Error("KeyDown() on a removed block should not be handled")
	}
	assertTexts(t, e, "a")
	assertEditing(t, e, -1)
}

func TestEditor_QueuedFailureKeepsSession(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b"})))
	if err := e.FocusIn(1); err != nil {
		t.Fatal(err)
	}

	e.Queue().Push(document.NewRemove(9), document.NewInsert(0, "never"))
	res, err := e.KeyDown(1, backspace, caret.At("b", 0))
	if err != nil {
		t.Fatalf("KeyDown() error = %v", err)
	}
	if !res.Handled || res.Caret != 1 {
		t.Errorf("KeyDown() = %+v, want merge with caret 1", res)
	}
	assertTexts(t, e, "ab")
	assertEditing(t, e, 0)

	s := e.Stats()
	if s.Kinds[document.KindRemove].Failed != 1 || s.Discarded != 1 {
		t.Errorf("Stats() = %+v, want one failed remove and one discarded op", s)
	}
}

func TestEditor_RunWithEditingSession(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a", "b", "c"})))
	if err := e.FocusIn(2); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, nil) }()

	e.Queue().Push(document.NewInsert(0, "x"))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && e.Len() != 4 {
		time.Sleep(5 * time.Millisecond)
	}
	assertEditing(t, e, 3)

	res, err := e.KeyDown(3, enter, caret.At("c!", 2))
	if err != nil || !res.Handled {
		t.Fatalf("KeyDown() = %+v, %v", res, err)
	}
	if err := e.FocusOut(4, "d"); err != nil {
		t.Fatal(err)
	}

	cancel()
	<-done
	assertTexts(t, e, "x", "a", "b", "c!", "d")
}

func TestEditor_RemovePolicy(t *testing.T) {
	reject := New()
	if err := reject.Submit(document.NewRemove(0)); !errors.Is(err, document.ErrLastBlock) {
		t.Errorf("Remove(0) under reject error = %v, want ErrLastBlock", err)
	}

	replace := New(WithDocument(document.NewFromTexts([]string{"only"}, document.WithRemovePolicy(document.RemoveReplace))))
	if err := replace.Submit(document.NewRemove(0)); err != nil {
		t.Fatalf("Remove(0) under replace error = %v", err)
	}
	assertTexts(t, replace, "")
}

func TestEditor_QueueArrivalOrder(t *testing.T) {
	e := New()

	const producers, perProducer = 4, 25
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				e.Queue().Push(document.NewInsert(0, "x"))
			}
		}()
	}
	wg.Wait()

	if err := e.Drain(); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if got, want := e.Len(), producers*perProducer+1; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}

func TestEditor_QueueOrderIsPreserved(t *testing.T) {
	e := New()
	q := e.Queue()
	q.Push(document.NewEdit(0, "first"))
	q.Push(document.NewInsert(1, "second"), document.NewMerge(0, 1))

	if err := e.Drain(); err != nil {
		t.Fatal(err)
	}
	assertTexts(t, e, "firstsecond")
}

func TestEditor_Run(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx, func(err error) { errs <- err })
	}()

	e.Queue().Push(document.NewEdit(0, "ran"))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && e.Texts()[0] != "ran" {
		time.Sleep(5 * time.Millisecond)
	}
	assertTexts(t, e, "ran")

	e.Queue().Push(document.NewMerge(0, 2))
	select {
	case err := <-errs:
		if !errors.Is(err, document.ErrInvalidMergePair) {
			t.Errorf("Run() reported %v, want ErrInvalidMergePair", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not report the failed op")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestEditor_Views(t *testing.T) {
	upper := markup.Func(strings.ToUpper)
	e := New(
		WithDocument(document.NewFromTexts([]string{"one", "<two>"})),
		WithRenderer(upper),
	)
	if err := e.FocusIn(0); err != nil {
		t.Fatal(err)
	}

	want := []View{
		{Index: 0, State: caret.Editing, Text: "one", Display: "one"},
		{Index: 1, State: caret.Viewing, Text: "<two>", Display: "<TWO>"},
	}
	if diff := cmp.Diff(want, e.Views()); diff != "" {
		t.Errorf("Views() mismatch (-want +got):\n%s", diff)
	}

	e.SetRenderer(nil)
	if got := e.Views()[1].Display; got != "&lt;two&gt;" {
		t.Errorf("nil renderer Display = %q, want escaped text", got)
	}
}

func TestEditor_DocumentIsCopy(t *testing.T) {
	e := New(WithDocument(document.NewFromTexts([]string{"a"})))
	doc := e.Document()
	if err := doc.Edit(0, document.NewBlock("changed")); err != nil {
		t.Fatal(err)
	}
	assertTexts(t, e, "a")
}

func TestEditor_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON, Output: &buf})
	e := New(WithLogger(log))

	if err := e.FocusIn(0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.KeyDown(0, enter, caret.Offset(0)); err != nil {
		t.Fatal(err)
	}
	_ = e.Submit(document.NewRemove(7))

	var sawApply, sawError bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if entry["component"] != "editor" || entry["session"] != e.ID().String() {
			t.Errorf("log line missing editor context: %v", entry)
		}
		msg, _ := entry["message"].(string)
		if entry["level"] == "debug" && strings.Contains(msg, `Insert(1, "") applied, 2 blocks`) {
			sawApply = true
		}
		if entry["level"] == "error" && strings.Contains(msg, "Remove(7) failed") {
			sawError = true
		}
	}
	if !sawApply {
		t.Error("no debug line for the applied insert")
	}
	if !sawError {
		t.Error("no error line for the failed remove")
	}
}
