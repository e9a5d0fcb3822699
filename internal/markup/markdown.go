package markup

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"rsc.io/markdown"
)

// Options configures the markdown renderers.
type Options struct {
	// Sanitize passes generated HTML through a user-content policy.
	Sanitize bool

	// Tables enables GitHub-style pipe tables.
	Tables bool

	// Strikethrough enables ~~text~~.
	Strikethrough bool

	// TaskLists enables "- [ ]" and "- [x]" list items.
	TaskLists bool

	// AutoLinks turns bare URLs into links.
	AutoLinks bool

	// Style is the glamour style name for terminal rendering ("dark", "light", "notty", ...).
	Style string

	// WordWrap is the terminal rendering width. Zero disables wrapping.
	WordWrap int
}

// DefaultOptions returns the default renderer options.
func DefaultOptions() Options {
	return Options{
		Sanitize:      true,
		Tables:        true,
		Strikethrough: true,
		TaskLists:     true,
		AutoLinks:     true,
		Style:         "dark",
		WordWrap:      80,
	}
}

var codeLanguageClass = regexp.MustCompile(`^language-[\w+#.-]+$`)

// Markdown renders CommonMark (with optional GitHub extensions) to HTML.
type Markdown struct {
	parser markdown.Parser
	policy *bluemonday.Policy
}

// NewMarkdown creates a markdown-to-HTML renderer.
func NewMarkdown(opts Options) *Markdown {
	m := &Markdown{
		parser: markdown.Parser{
			Table:         opts.Tables,
			Strikethrough: opts.Strikethrough,
			TaskListItems: opts.TaskLists,
			AutoLinkText:  opts.AutoLinks,
		},
	}
	if opts.Sanitize {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Matching(codeLanguageClass).OnElements("code")
		p.AllowAttrs("type", "checked", "disabled").OnElements("input")
		p.AllowElements("input")
		m.policy = p
	}
	return m
}

// Render converts text to HTML. It never fails: if the parser panics the
// text is rendered as an escaped literal block.
func (m *Markdown) Render(text string) string {
	return safeRender(text, m.render, Literal)
}

func (m *Markdown) render(text string) string {
	doc := m.parser.Parse(text)
	out := markdown.ToHTML(doc)
	if m.policy != nil {
		out = m.policy.Sanitize(out)
	}
	return out
}
