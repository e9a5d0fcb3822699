package config

import (
	"errors"
	"sort"
	"strings"

	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/input/key"
	"github.com/dshills/blockpad/internal/logging"
	"github.com/dshills/blockpad/internal/markup"
)

// RenderFormat selects the markup renderer for non-editing blocks.
type RenderFormat string

const (
	// FormatHTML renders markdown to sanitized HTML.
	FormatHTML RenderFormat = "html"
	// FormatTerm renders markdown to styled terminal text.
	FormatTerm RenderFormat = "term"
)

// EditorConfig contains document and controller behavior settings.
type EditorConfig struct {
	// RemovePolicy decides what removing the last block does.
	RemovePolicy document.RemovePolicy
	// SplitTail moves the text right of the caret into the new block on split.
	SplitTail bool
}

// KeysConfig contains the structural key bindings.
type KeysConfig struct {
	Split key.Event
	Merge key.Event
	// NewlineModifier, held with the split key, inserts a line break instead.
	NewlineModifier key.Modifier
}

// RenderConfig contains markup renderer settings.
type RenderConfig struct {
	Format RenderFormat
	Markup markup.Options
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  logging.Level
	Format logging.Format
	// File is the log destination. Empty means stderr.
	File string
}

// Editor returns the editor section.
func (c *Config) Editor() EditorConfig {
	const policyPath = "editor.remove_policy"
	name := c.getStringOr(policyPath, "reject")
	policy, ok := document.ParseRemovePolicy(name)
	if !ok {
		c.recordConfigError(policyPath, &ValueError{Path: policyPath, Value: name, Message: `must be "reject" or "replace"`})
	}

	return EditorConfig{
		RemovePolicy: policy,
		SplitTail:    c.getBoolOr("editor.split_tail", false),
	}
}

// Keys returns the key binding section.
func (c *Config) Keys() KeysConfig {
	return KeysConfig{
		Split:           c.getKeyOr("keys.split", "Enter"),
		Merge:           c.getKeyOr("keys.merge", "Backspace"),
		NewlineModifier: c.getModifierOr("keys.newline_modifier", key.ModShift),
	}
}

// Render returns the renderer section.
func (c *Config) Render() RenderConfig {
	const formatPath = "render.format"
	format := RenderFormat(c.getStringOr(formatPath, string(FormatHTML)))
	if format != FormatHTML && format != FormatTerm {
		c.recordConfigError(formatPath, &ValueError{Path: formatPath, Value: format, Message: `must be "html" or "term"`})
		format = FormatHTML
	}

	const wrapPath = "render.word_wrap"
	wrap := c.getIntOr(wrapPath, 80)
	if wrap < 0 {
		c.recordConfigError(wrapPath, &ValueError{Path: wrapPath, Value: wrap, Message: "must not be negative"})
		wrap = 80
	}

	return RenderConfig{
		Format: format,
		Markup: markup.Options{
			Sanitize:      c.getBoolOr("render.sanitize", true),
			Tables:        c.getBoolOr("render.tables", true),
			Strikethrough: c.getBoolOr("render.strikethrough", true),
			TaskLists:     c.getBoolOr("render.task_lists", true),
			AutoLinks:     c.getBoolOr("render.autolinks", true),
			Style:         c.getStringOr("render.style", "dark"),
			WordWrap:      wrap,
		},
	}
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	const levelPath = "logging.level"
	levelName := c.getStringOr(levelPath, "info")
	switch strings.ToLower(levelName) {
	case "debug", "info", "warn", "warning", "error":
	default:
		c.recordConfigError(levelPath, &ValueError{Path: levelPath, Value: levelName, Message: "must be debug, info, warn or error"})
	}

	const formatPath = "logging.format"
	format := logging.Format(c.getStringOr(formatPath, string(logging.FormatConsole)))
	if format != logging.FormatJSON && format != logging.FormatConsole {
		c.recordConfigError(formatPath, &ValueError{Path: formatPath, Value: format, Message: `must be "json" or "console"`})
		format = logging.FormatConsole
	}

	return LoggingConfig{
		Level:  logging.ParseLevel(levelName),
		Format: format,
		File:   c.getStringOr("logging.file", ""),
	}
}

// Validate decodes every section and returns the accumulated problems,
// ordered by setting path.
func (c *Config) Validate() error {
	c.Editor()
	c.Keys()
	c.Render()
	c.Logging()

	errs := c.ConfigErrors()
	if len(errs) == 0 {
		return nil
	}
	paths := make([]string, 0, len(errs))
	for p := range errs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	joined := make([]error, len(paths))
	for i, p := range paths {
		joined[i] = errs[p]
	}
	return errors.Join(joined...)
}

// Helper methods for getting values with defaults.
// These return the default for ErrSettingNotFound without complaint.
// Other errors are recorded and also return the default, so a bad value
// never breaks the caller but still shows up in Validate.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getKeyOr(path string, defaultSpec string) key.Event {
	spec := c.getStringOr(path, defaultSpec)
	ev, err := key.Parse(spec)
	if err != nil {
		c.recordConfigError(path, &ValueError{Path: path, Value: spec, Message: err.Error()})
		return key.MustParse(defaultSpec)
	}
	return ev
}

func (c *Config) getModifierOr(path string, defaultValue key.Modifier) key.Modifier {
	spec := c.getStringOr(path, defaultValue.String())
	if spec == "" {
		return key.ModNone
	}
	for _, part := range strings.Split(spec, "+") {
		if key.ModifierFromName(part) == key.ModNone {
			c.recordConfigError(path, &ValueError{Path: path, Value: spec, Message: "unknown modifier " + part})
			return defaultValue
		}
	}
	return key.ParseModifiers(spec)
}

// recordConfigError stores configuration errors for later retrieval.
// Only the first error for each path is recorded to preserve the original cause.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

// ConfigErrors returns any configuration errors encountered during access.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	result := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		result[k] = v
	}
	return result
}

// ClearConfigErrors clears any stored configuration errors.
func (c *Config) ClearConfigErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configErrors = nil
}
