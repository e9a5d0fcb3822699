package document

// RemovePolicy selects what Remove does when the document holds a single block.
type RemovePolicy uint8

const (
	// RemoveReject fails removal of the last block with ErrLastBlock.
	RemoveReject RemovePolicy = iota

	// RemoveReplace removes the last block and inserts a fresh empty block.
	RemoveReplace
)

// String returns the policy name used in configuration files.
func (p RemovePolicy) String() string {
	switch p {
	case RemoveReject:
		return "reject"
	case RemoveReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// ParseRemovePolicy parses a policy name. The second result is false for
// unknown names.
func ParseRemovePolicy(s string) (RemovePolicy, bool) {
	switch s {
	case "reject", "":
		return RemoveReject, true
	case "replace":
		return RemoveReplace, true
	default:
		return RemoveReject, false
	}
}

// Option is a functional option for configuring a Document.
type Option func(*Document)

// WithRemovePolicy sets the last-block removal policy.
func WithRemovePolicy(p RemovePolicy) Option {
	return func(d *Document) {
		d.removePolicy = p
	}
}
