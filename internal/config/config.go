package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/blockpad/internal/config/loader"
	"github.com/dshills/blockpad/internal/config/watcher"
)

// ReloadHandler is called after the config file changes on disk. err is
// non-nil when the new file could not be loaded; the previous settings
// stay in effect in that case.
type ReloadHandler func(err error)

// Config provides unified access to the blockpad configuration.
// It manages layer loading, typed section access and live reloading.
type Config struct {
	mu sync.RWMutex

	// Layers, lowest priority first.
	defaults  map[string]any
	file      map[string]any
	env       map[string]any
	overrides map[string]any

	merged map[string]any

	path      string
	fs        loader.FileSystem
	envPrefix string

	enableWatcher  bool
	watcher        *watcher.Watcher
	reloadHandlers []ReloadHandler

	// configErrors stores errors encountered while decoding sections.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the configuration file. The format follows the extension.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFileSystem sets the file system used to read the config file.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithWatcher enables file watching for live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// New creates a Config holding only the built-in defaults. Call Load to
// read the file and environment layers.
func New(opts ...Option) *Config {
	c := &Config{
		defaults:  defaultConfig(),
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rebuild()
	return c
}

// Load reads the config file and environment layers. When the watcher is
// enabled, changes to the file are reloaded until ctx is done or Close is
// called.
func (c *Config) Load(ctx context.Context) error {
	c.mu.Lock()

	if c.path != "" {
		data, err := c.readFile()
		if err != nil {
			c.mu.Unlock()
			return err
		}
		if data == nil {
			c.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrFileNotFound, c.path)
		}
		c.file = data
	}

	if c.envPrefix != "" {
		data, err := loader.NewEnvLoader(c.envPrefix).Load()
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("loading environment: %w", err)
		}
		c.env = data
	}

	c.rebuild()
	c.configErrors = nil
	start := c.enableWatcher && c.path != "" && c.watcher == nil
	c.mu.Unlock()

	if start {
		return c.startWatcher(ctx)
	}
	return nil
}

// Reload re-reads the config file layer and notifies reload handlers.
func (c *Config) Reload() error {
	c.mu.Lock()
	if c.path == "" {
		c.mu.Unlock()
		return nil
	}

	data, err := c.readFile()
	if err == nil {
		c.file = data
		c.rebuild()
		c.configErrors = nil
	}
	handlers := make([]ReloadHandler, len(c.reloadHandlers))
	copy(handlers, c.reloadHandlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(err)
	}
	return err
}

// OnReload registers a handler called after each file reload.
func (c *Config) OnReload(handler ReloadHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloadHandlers = append(c.reloadHandlers, handler)
}

// Close stops the file watcher.
func (c *Config) Close() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// Path returns the configuration file path, if any.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.merged, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, &TypeError{Path: path, Expected: "int", Actual: "float64"}
		}
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// Set overrides a value at the given path. Overrides take precedence over
// every other layer and survive reloads; the command line uses them for
// flags.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.overrides == nil {
		c.overrides = make(map[string]any)
	}
	if err := setPath(c.overrides, path, value); err != nil {
		return err
	}
	c.rebuild()
	return nil
}

// Merged returns a copy of the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.merged)
}

// rebuild recomputes the merged tree. Caller must hold c.mu.
func (c *Config) rebuild() {
	merged := loader.Clone(c.defaults)
	for _, layer := range []map[string]any{c.file, c.env, c.overrides} {
		merged = loader.DeepMerge(merged, loader.Clone(layer))
	}
	c.merged = merged
}

// readFile loads the config file. A missing file yields nil, nil.
// Caller must hold c.mu.
func (c *Config) readFile() (map[string]any, error) {
	l, err := loader.ForPath(c.fs, c.path)
	if err != nil {
		return nil, err
	}
	return l.Load()
}

func (c *Config) startWatcher(ctx context.Context) error {
	w, err := watcher.New()
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}
	if err := w.Watch(c.Path()); err != nil {
		w.Stop()
		return fmt.Errorf("watching %s: %w", c.Path(), err)
	}
	w.OnChange(c.handleFileChange)
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}

	c.mu.Lock()
	c.watcher = w
	c.mu.Unlock()
	return nil
}

// handleFileChange reloads the file layer after a change on disk. A
// removed file drops back to defaults for the file layer.
func (c *Config) handleFileChange(event watcher.Event) {
	if event.Op == watcher.OpRemove || event.Op == watcher.OpRename {
		c.mu.Lock()
		c.file = nil
		c.rebuild()
		c.configErrors = nil
		handlers := make([]ReloadHandler, len(c.reloadHandlers))
		copy(handlers, c.reloadHandlers)
		c.mu.Unlock()

		for _, h := range handlers {
			h(nil)
		}
		return
	}
	_ = c.Reload()
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"remove_policy": "reject",
			"split_tail":    false,
		},
		"keys": map[string]any{
			"split":            "Enter",
			"merge":            "Backspace",
			"newline_modifier": "Shift",
		},
		"render": map[string]any{
			"format":        string(FormatHTML),
			"sanitize":      true,
			"style":         "dark",
			"word_wrap":     int64(80),
			"tables":        true,
			"strikethrough": true,
			"task_lists":    true,
			"autolinks":     true,
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "console",
			"file":   "",
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}

	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = cm[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrInvalidPath
	}

	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return ErrInvalidPath
		}
		current = nextMap
	}

	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path into non-empty parts.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' })
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
