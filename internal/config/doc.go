// Package config provides the configuration system for blockpad.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (Set)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← BLOCKPAD_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML, by extension
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Settings are addressed by dotted paths such as "editor.split_tail".
// Typed section accessors (Editor, Keys, Render, Logging) decode the
// merged tree; values that fail to decode fall back to the default and
// are reported by Validate and ConfigErrors.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable sources
//   - watcher: fsnotify-based change detection for live reload
package config
