package caret

import (
	"fmt"

	"github.com/dshills/blockpad/internal/document"
)

// Effect is the output of a controller transition.
type Effect interface {
	// Ops returns the document operations the effect implies, in order.
	Ops() []document.Op

	fmt.Stringer
}

// StartEdit marks block Index as Editing. It implies no document change.
type StartEdit struct {
	Index int
}

// EndEdit ends the editing session of block Index. When Captured is true,
// Text replaces the block.
type EndEdit struct {
	Index    int
	Text     string
	Captured bool
}

// InsertBelow inserts Block at Index, directly below the block being edited.
type InsertBelow struct {
	Index int
	Block document.Block
}

// MergeAbove merges block Second into its predecessor First.
type MergeAbove struct {
	First  int
	Second int
}

func (StartEdit) Ops() []document.Op { return nil }

func (e EndEdit) Ops() []document.Op {
	if !e.Captured {
		return nil
	}
	return []document.Op{document.NewEdit(e.Index, e.Text)}
}

func (e InsertBelow) Ops() []document.Op {
	return []document.Op{document.InsertOp{Index: e.Index, Block: e.Block}}
}

func (e MergeAbove) Ops() []document.Op {
	return []document.Op{document.NewMerge(e.First, e.Second)}
}

func (e StartEdit) String() string { return fmt.Sprintf("StartEdit(%d)", e.Index) }

func (e EndEdit) String() string {
	if !e.Captured {
		return fmt.Sprintf("EndEdit(%d)", e.Index)
	}
	return fmt.Sprintf("EndEdit(%d, %q)", e.Index, e.Text)
}

func (e InsertBelow) String() string {
	return fmt.Sprintf("InsertBelow(%d, %q)", e.Index, e.Block.Text())
}

func (e MergeAbove) String() string { return fmt.Sprintf("MergeAbove(%d, %d)", e.First, e.Second) }

// Ops flattens the document operations of effects, preserving order.
func Ops(effects []Effect) []document.Op {
	var ops []document.Op
	for _, e := range effects {
		ops = append(ops, e.Ops()...)
	}
	return ops
}
