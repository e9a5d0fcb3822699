package document

import (
	"errors"
	"fmt"
)

// Errors returned by document operations.
var (
	// ErrIndexOutOfRange indicates an operation referenced a block that does not exist.
	ErrIndexOutOfRange = errors.New("block index out of range")

	// ErrInvalidMergePair indicates a merge of two blocks that are not adjacent.
	ErrInvalidMergePair = errors.New("merge indices are not adjacent")

	// ErrLastBlock indicates removal of the only remaining block under RemoveReject.
	ErrLastBlock = errors.New("cannot remove the last block")
)

// OpError describes a failed document operation.
type OpError struct {
	Op    string // Operation name ("edit", "insert", "remove", "merge")
	Index int    // Primary index
	Other int    // Second index for merge, -1 otherwise
	Len   int    // Document length when the operation was applied
	Err   error  // Underlying sentinel error
}

func newOpError(op string, index, other, length int, err error) *OpError {
	return &OpError{Op: op, Index: index, Other: other, Len: length, Err: err}
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.Other >= 0 {
		return fmt.Sprintf("%s(%d, %d) on %d blocks: %v", e.Op, e.Index, e.Other, e.Len, e.Err)
	}
	return fmt.Sprintf("%s(%d) on %d blocks: %v", e.Op, e.Index, e.Len, e.Err)
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
