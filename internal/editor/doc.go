// Package editor owns a document and its caret controller.
//
// An Editor is the only writer of its Document. Host events go to the
// controller; the operations implied by the resulting effects are pushed
// onto the editor's Queue and applied one at a time, in arrival order,
// against the document as it is at application time. A failed operation
// stops the drain, discards the operations queued behind it and leaves the
// document unchanged.
package editor
