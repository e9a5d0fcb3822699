package document

import "strings"

// Document is an ordered, never-empty sequence of blocks.
// It is not safe for concurrent use; callers serialize writes.
type Document struct {
	blocks       []Block
	removePolicy RemovePolicy
}

// New creates a document holding a single empty block.
func New(opts ...Option) *Document {
	d := &Document{
		blocks: []Block{{}},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromBlocks creates a document from blocks. An empty slice yields a
// document with one empty block.
func NewFromBlocks(blocks []Block, opts ...Option) *Document {
	d := New(opts...)
	if len(blocks) > 0 {
		d.blocks = make([]Block, len(blocks))
		copy(d.blocks, blocks)
	}
	return d
}

// NewFromTexts creates a document with one block per text.
func NewFromTexts(texts []string, opts ...Option) *Document {
	blocks := make([]Block, len(texts))
	for i, t := range texts {
		blocks[i] = NewBlock(t)
	}
	return NewFromBlocks(blocks, opts...)
}

// Len returns the number of blocks. It is always at least 1.
func (d *Document) Len() int {
	return len(d.blocks)
}

// RemovePolicy returns the document's last-block removal policy.
func (d *Document) RemovePolicy() RemovePolicy {
	return d.removePolicy
}

// Block returns the block at index i.
func (d *Document) Block(i int) (Block, error) {
	if i < 0 || i >= len(d.blocks) {
		return Block{}, newOpError("block", i, -1, len(d.blocks), ErrIndexOutOfRange)
	}
	return d.blocks[i], nil
}

// Blocks returns a copy of the block sequence.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// Texts returns the text of every block in order.
func (d *Document) Texts() []string {
	out := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.text
	}
	return out
}

// Text returns the block texts joined by newlines.
// Import(d.Text()) reproduces d when no block contains a newline.
func (d *Document) Text() string {
	return strings.Join(d.Texts(), "\n")
}

// Clone returns an independent copy of the document.
func (d *Document) Clone() *Document {
	return &Document{
		blocks:       d.Blocks(),
		removePolicy: d.removePolicy,
	}
}

// Equal reports whether d and other hold the same block texts.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.blocks) != len(other.blocks) {
		return false
	}
	for i := range d.blocks {
		if d.blocks[i] != other.blocks[i] {
			return false
		}
	}
	return true
}

// Edit replaces the block at index i.
func (d *Document) Edit(i int, b Block) error {
	if i < 0 || i >= len(d.blocks) {
		return newOpError("edit", i, -1, len(d.blocks), ErrIndexOutOfRange)
	}
	d.blocks[i] = b
	return nil
}

// Insert inserts b before index i, shifting blocks at i and after one
// position right. i == Len() appends.
func (d *Document) Insert(i int, b Block) error {
	if i < 0 || i > len(d.blocks) {
		return newOpError("insert", i, -1, len(d.blocks), ErrIndexOutOfRange)
	}
	d.blocks = append(d.blocks, Block{})
	copy(d.blocks[i+1:], d.blocks[i:])
	d.blocks[i] = b
	return nil
}

// Remove deletes the block at index i, shifting later blocks one position
// left. Removing the only block follows the document's RemovePolicy.
func (d *Document) Remove(i int) error {
	if i < 0 || i >= len(d.blocks) {
		return newOpError("remove", i, -1, len(d.blocks), ErrIndexOutOfRange)
	}
	if len(d.blocks) == 1 {
		if d.removePolicy != RemoveReplace {
			return newOpError("remove", i, -1, len(d.blocks), ErrLastBlock)
		}
		d.blocks[0] = Block{}
		return nil
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	return nil
}

// Merge appends the text of block j to block i and removes block j.
// j must equal i+1.
func (d *Document) Merge(i, j int) error {
	// i is checked first so that i+1 cannot overflow.
	if i < 0 || i >= len(d.blocks) {
		return newOpError("merge", i, j, len(d.blocks), ErrIndexOutOfRange)
	}
	if j != i+1 {
		return newOpError("merge", i, j, len(d.blocks), ErrInvalidMergePair)
	}
	if j >= len(d.blocks) {
		return newOpError("merge", i, j, len(d.blocks), ErrIndexOutOfRange)
	}
	d.blocks[i] = Block{text: d.blocks[i].text + d.blocks[j].text}
	d.blocks = append(d.blocks[:j], d.blocks[j+1:]...)
	return nil
}

// Apply applies op to the document.
func (d *Document) Apply(op Op) error {
	return op.Apply(d)
}
