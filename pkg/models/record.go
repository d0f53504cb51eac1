package models

import "fmt"

// Record is one fully assembled row keyed by dotted leaf column path.
// This is the internal format the read path hands to callers; values are
// the decoded page values, untouched.
type Record map[string]any

// Get returns the value for a dotted column path.
func (r Record) Get(path string) (any, bool) {
	v, ok := r[path]
	return v, ok
}

// GetString returns the value for path as a string, or "" if absent or not
// a string.
func (r Record) GetString(path string) string {
	if v, ok := r[path]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt64 returns the value for path as an int64. Decoded integer pages may
// surface as any Go integer width depending on the source codec.
func (r Record) GetInt64(path string) (int64, bool) {
	switch v := r[path].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	}
	return 0, false
}

// Clone returns a shallow copy. The reader reuses nothing, but callers that
// hold records across Next calls of a shared materializer may want their own.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String renders the record for logs and the CLI.
func (r Record) String() string {
	return fmt.Sprintf("%v", map[string]any(r))
}
