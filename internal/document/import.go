package document

import (
	"fmt"
	"io"
	"strings"
)

// Import splits raw text on line breaks into one block per line.
// A trailing carriage return on each line is dropped so CRLF input yields
// the same blocks as LF input. The empty string yields one empty block.
func Import(raw string, opts ...Option) *Document {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return NewFromTexts(lines, opts...)
}

// ImportReader reads all of r and imports it.
func ImportReader(r io.Reader, opts ...Option) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Import(string(data), opts...), nil
}
