// Package markup converts raw block text into displayable markup.
//
// Renderers are pure: the same input always yields the same output, and
// rendering never fails. Input the underlying engine cannot handle degrades
// to an escaped literal representation of the text.
package markup

import (
	"html"
)

// Renderer converts raw block text to markup.
type Renderer interface {
	Render(text string) string
}

// Func adapts a function to the Renderer interface.
type Func func(text string) string

// Render calls f(text).
func (f Func) Render(text string) string {
	return f(text)
}

// Escape returns text with HTML special characters escaped.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Literal renders text as an escaped preformatted block. It is the fallback
// used when a renderer cannot produce markup.
func Literal(text string) string {
	return "<pre>" + Escape(text) + "</pre>\n"
}

// Plain is a Renderer that only escapes text.
var Plain Renderer = Func(Escape)

// safeRender runs render and converts a panic into fallback(text).
func safeRender(text string, render func(string) string, fallback func(string) string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback(text)
		}
	}()
	return render(text)
}
