package document

import (
	"fmt"

	"github.com/dshills/blockpad/internal/markup"
)

// Block is a single unit of raw, unrendered document text.
// The zero value is an empty block.
type Block struct {
	text string
}

// NewBlock creates a block holding text.
func NewBlock(text string) Block {
	return Block{text: text}
}

// Text returns the stored text.
func (b Block) Text() string {
	return b.text
}

// IsEmpty returns true if the block holds no text.
func (b Block) IsEmpty() bool {
	return b.text == ""
}

// Len returns the length of the block text in runes.
func (b Block) Len() int {
	return len([]rune(b.text))
}

// Render passes the block text through r.
// A nil renderer falls back to markup.Escape.
func (b Block) Render(r markup.Renderer) string {
	if r == nil {
		return markup.Escape(b.text)
	}
	return r.Render(b.text)
}

// String returns a debug representation of the block.
func (b Block) String() string {
	return fmt.Sprintf("Block(%q)", b.text)
}
