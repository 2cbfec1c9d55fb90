// Package names sanitizes source-level display names into the identifier
// alphabet the target language requires (spec.md testable property 5:
// every emitted identifier matches `[A-Za-z_][A-Za-z0-9_]*`), and composes
// C1's dotted translated names.
package names

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Sanitize folds an arbitrary display name into the target identifier
// alphabet. Unlike strcase's usual job of picking a casing convention, the
// translator does not need case normalization - it needs every disallowed
// byte removed without colliding two distinct sources on the same name, so
// this keeps the original casing and only strips/replaces what strcase's
// ToSnake would otherwise re-case.
func Sanitize(display string) string {
	var b strings.Builder
	for i, r := range display {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	return out
}

// Join composes a dotted translated name from path segments, matching
// C1's `<Contract>_<Struct>` / `<Contract>_<var>_submap<N>` composition
// rule (spec.md §4.1).
func Join(parts ...string) string {
	sanitized := make([]string, len(parts))
	for i, p := range parts {
		sanitized[i] = Sanitize(p)
	}
	return strings.Join(sanitized, "_")
}

// Display renders a human-readable dotted path for log messages only
// (spec.md §3: "A display name is a human-readable dotted path used only
// inside log messages"). It runs the segments through strcase's
// ToDelimited so multi-word identifiers in the source (e.g.
// `totalSupply`) still read naturally in a log line, which Sanitize's byte
// folding does not attempt.
func Display(parts ...string) string {
	rendered := make([]string, len(parts))
	for i, p := range parts {
		rendered[i] = strcase.ToDelimited(p, ' ')
	}
	return strings.Join(rendered, "::")
}
