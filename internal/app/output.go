package app

import (
	"bufio"
	"fmt"
	"strings"
)

// runRender writes each block's rendered markup, one block per paragraph.
func (app *Application) runRender() error {
	w := bufio.NewWriter(app.opts.Stdout)
	for _, v := range app.ed.Views() {
		fmt.Fprintln(w, strings.TrimRight(v.Display, "\n"))
	}
	if err := w.Flush(); err != nil {
		return NewOperationError("render", "stdout", err)
	}
	app.log.Debug("rendered %d blocks", app.ed.Len())
	return nil
}

// runStats writes the block count followed by the index and rune length
// of every block.
func (app *Application) runStats() error {
	doc := app.ed.Document()

	w := bufio.NewWriter(app.opts.Stdout)
	fmt.Fprintf(w, "blocks: %d\n", doc.Len())
	for i, b := range doc.Blocks() {
		fmt.Fprintf(w, "%d\t%d\n", i, b.Len())
	}
	if err := w.Flush(); err != nil {
		return NewOperationError("stats", "stdout", err)
	}
	return nil
}
