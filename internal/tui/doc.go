// Package tui is the interactive terminal host for an editor.
//
// The App draws every block of the document, editing block as raw text
// and the others through the editor's renderer, and turns terminal key
// events into controller events. It owns the caret and the live text of
// the editing block, so it reports both to the controller on every key.
//
// Keys while editing: Up/Down move to the neighbouring block, Escape
// stops editing, Ctrl+Q quits; the split and merge bindings are handled
// by the controller and everything else edits the live text. While
// viewing, Enter resumes editing the selected block.
package tui
