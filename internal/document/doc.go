// Package document provides the block model of a blockpad document.
//
// A Document is an ordered, never-empty sequence of Blocks. Blocks have no
// identity of their own: a block is addressed by its 0-based index, and two
// blocks holding the same text are interchangeable.
//
// The document is mutated through exactly four operations:
//
//   - Edit: replace the block at an index
//   - Insert: insert a block before an index (len is a valid index)
//   - Remove: delete the block at an index
//   - Merge: append block i+1 to block i and delete block i+1
//
// Each operation is also available as a value (EditOp, InsertOp, RemoveOp,
// MergeOp) so that it can be emitted by one component and applied later by
// another:
//
//	doc := document.New()
//	doc.Apply(document.InsertOp{Index: 1, Block: document.NewBlock("World")})
//	doc.Apply(document.EditOp{Index: 0, Block: document.NewBlock("Hello")})
//	doc.Apply(document.MergeOp{First: 0, Second: 1})
//	doc.Text() // "HelloWorld"
//
// # Ordering
//
// Indices are absolute and only meaningful against the document length at
// the moment an operation is applied. Operations must therefore be applied
// one at a time, in the order they were produced. A Document performs no
// locking; it assumes a single writer.
//
// # Errors
//
// Invalid indices are never clamped. Operations fail with an *OpError that
// wraps one of ErrIndexOutOfRange, ErrInvalidMergePair or ErrLastBlock, and
// a failed operation leaves the document unchanged.
package document
