package schema

import "strings"

// ColumnPath is the ordered field-name sequence identifying one leaf column
// through nested group structure. Paths are compared by their full sequence;
// the dotted form is the canonical key, so field names must not contain dots
// (the on-disk formats we read share that restriction).
type ColumnPath []string

// FromDotted parses "a.b.c" into a ColumnPath.
func FromDotted(s string) ColumnPath {
	if s == "" {
		return nil
	}
	return ColumnPath(strings.Split(s, "."))
}

// Dotted renders the path as "a.b.c".
func (p ColumnPath) Dotted() string {
	return strings.Join(p, ".")
}

// Equal reports whether two paths have the same sequence.
func (p ColumnPath) Equal(o ColumnPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Parent returns the path without its final segment, or nil for a
// single-segment path.
func (p ColumnPath) Parent() ColumnPath {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1]
}

// Leaf returns the final segment.
func (p ColumnPath) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}
