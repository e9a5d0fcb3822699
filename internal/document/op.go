package document

import "fmt"

// Kind identifies one of the four document operations.
type Kind uint8

const (
	KindEdit Kind = iota
	KindInsert
	KindRemove
	KindMerge
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEdit:
		return "edit"
	case KindInsert:
		return "insert"
	case KindRemove:
		return "remove"
	case KindMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Op is a document operation value. The set of implementations is closed:
// EditOp, InsertOp, RemoveOp and MergeOp.
type Op interface {
	// Kind returns the operation kind.
	Kind() Kind

	// Apply applies the operation to d.
	Apply(d *Document) error

	fmt.Stringer

	isOp()
}

// EditOp replaces the block at Index.
type EditOp struct {
	Index int
	Block Block
}

// InsertOp inserts Block before Index.
type InsertOp struct {
	Index int
	Block Block
}

// RemoveOp deletes the block at Index.
type RemoveOp struct {
	Index int
}

// MergeOp appends block Second to block First and removes Second.
type MergeOp struct {
	First  int
	Second int
}

// NewEdit creates an EditOp from raw text.
func NewEdit(i int, text string) EditOp {
	return EditOp{Index: i, Block: NewBlock(text)}
}

// NewInsert creates an InsertOp from raw text.
func NewInsert(i int, text string) InsertOp {
	return InsertOp{Index: i, Block: NewBlock(text)}
}

// NewRemove creates a RemoveOp.
func NewRemove(i int) RemoveOp {
	return RemoveOp{Index: i}
}

// NewMerge creates a MergeOp.
func NewMerge(i, j int) MergeOp {
	return MergeOp{First: i, Second: j}
}

func (EditOp) Kind() Kind   { return KindEdit }
func (InsertOp) Kind() Kind { return KindInsert }
func (RemoveOp) Kind() Kind { return KindRemove }
func (MergeOp) Kind() Kind  { return KindMerge }

func (op EditOp) Apply(d *Document) error   { return d.Edit(op.Index, op.Block) }
func (op InsertOp) Apply(d *Document) error { return d.Insert(op.Index, op.Block) }
func (op RemoveOp) Apply(d *Document) error { return d.Remove(op.Index) }
func (op MergeOp) Apply(d *Document) error  { return d.Merge(op.First, op.Second) }

func (op EditOp) String() string   { return fmt.Sprintf("Edit(%d, %q)", op.Index, op.Block.text) }
func (op InsertOp) String() string { return fmt.Sprintf("Insert(%d, %q)", op.Index, op.Block.text) }
func (op RemoveOp) String() string { return fmt.Sprintf("Remove(%d)", op.Index) }
func (op MergeOp) String() string  { return fmt.Sprintf("Merge(%d, %d)", op.First, op.Second) }

func (EditOp) isOp()   {}
func (InsertOp) isOp() {}
func (RemoveOp) isOp() {}
func (MergeOp) isOp()  {}
