// Package caret decides what a focus change or key press does to a document.
//
// Each displayed block is either Viewing (rendered, read-only) or Editing
// (raw text, caret-addressable). At most one block is Editing at a time; the
// Controller tracks it as an optional index and is the only place that index
// changes.
//
// Transitions:
//
//	Viewing --focus gained--> Editing           StartEdit(i)
//	Editing --focus lost----> Viewing           EndEdit(i, text)
//	Editing --Enter---------> Editing at i+1    InsertBelow(i+1, "")
//	Editing --Backspace@0---> Editing at i-1    MergeAbove(i-1, i)
//
// Enter splits only when the caret offset is available and the newline
// modifier (Shift by default) is not held; Shift+Enter is left to the host
// as a literal newline. Backspace merges only at caret offset 0 and never on
// block 0. Every other key produces no effect.
//
// The controller never reads host focus state. Hosts report events and supply
// the caret offset through a Host; the controller answers with Effects, each
// of which maps to zero or more document operations.
package caret
