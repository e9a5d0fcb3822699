package markup

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown to ANSI-styled text for terminals.
type Terminal struct {
	r *glamour.TermRenderer
}

// NewTerminal creates a terminal renderer. If the glamour renderer cannot be
// built (unknown style), the returned renderer emits raw text.
func NewTerminal(opts Options) *Terminal {
	style := opts.Style
	if style == "" {
		style = "notty"
	}
	termOpts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if opts.WordWrap > 0 {
		termOpts = append(termOpts, glamour.WithWordWrap(opts.WordWrap))
	}
	r, err := glamour.NewTermRenderer(termOpts...)
	if err != nil {
		return &Terminal{}
	}
	return &Terminal{r: r}
}

// Render converts text to terminal output. Errors and panics in the
// underlying renderer degrade to the raw text.
func (t *Terminal) Render(text string) string {
	if t.r == nil {
		return text
	}
	return safeRender(text, func(s string) string {
		out, err := t.r.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}, func(s string) string { return s })
}
