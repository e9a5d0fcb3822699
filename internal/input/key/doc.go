// Package key provides key event types and key specification parsing.
//
//   - Key: identifies a special key, or KeyRune for characters
//   - Modifier: a set of held modifier keys (Shift, Ctrl, Alt, Meta)
//   - Event: a single key press as reported by a host
//
// Key specifications name a key with optional modifiers and are used in
// configuration files:
//
//	"Enter", "Backspace", "Shift+Enter", "Ctrl+Q", "q"
package key
