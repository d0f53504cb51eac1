// Package filter holds the pushed-down row filter predicate.
//
// The predicate is opaque to the read path: it is never evaluated here.
// The streaming reader hands it untouched to the record assembly engine,
// and ColumnsOf extracts the set of referenced columns so a caller can
// project the minimal schema the predicate touches.
package filter

import "fmt"

// Op is a comparison operator in a leaf predicate.
type Op int

const (
	OpEq Op = iota
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Filter is a row filter predicate tree. Columns are dotted leaf paths
// ("host.cpu.usage").
type Filter interface {
	isFilter()
}

// Predicate compares one column against a literal.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// AndFilter matches rows both sides match.
type AndFilter struct {
	Left, Right Filter
}

// OrFilter matches rows either side matches.
type OrFilter struct {
	Left, Right Filter
}

// NotFilter inverts its child.
type NotFilter struct {
	Child Filter
}

func (Predicate) isFilter() {}
func (AndFilter) isFilter() {}
func (OrFilter) isFilter()  {}
func (NotFilter) isFilter() {}

func Eq(column string, value any) Filter { return Predicate{Column: column, Op: OpEq, Value: value} }

func NotEq(column string, value any) Filter {
	return Predicate{Column: column, Op: OpNotEq, Value: value}
}

func Lt(column string, value any) Filter { return Predicate{Column: column, Op: OpLt, Value: value} }

func LtEq(column string, value any) Filter {
	return Predicate{Column: column, Op: OpLtEq, Value: value}
}

func Gt(column string, value any) Filter { return Predicate{Column: column, Op: OpGt, Value: value} }

func GtEq(column string, value any) Filter {
	return Predicate{Column: column, Op: OpGtEq, Value: value}
}

func And(left, right Filter) Filter { return AndFilter{Left: left, Right: right} }

func Or(left, right Filter) Filter { return OrFilter{Left: left, Right: right} }

func Not(child Filter) Filter { return NotFilter{Child: child} }

// ColumnsOf collects every column the predicate references, depth-first,
// de-duplicated in first-seen order. Nil filter yields nil.
func ColumnsOf(f Filter) []string {
	if f == nil {
		return nil
	}
	var cols []string
	seen := make(map[string]struct{})
	collect(f, &cols, seen)
	return cols
}

func collect(f Filter, cols *[]string, seen map[string]struct{}) {
	switch n := f.(type) {
	case Predicate:
		if _, ok := seen[n.Column]; !ok {
			seen[n.Column] = struct{}{}
			*cols = append(*cols, n.Column)
		}
	case AndFilter:
		collect(n.Left, cols, seen)
		collect(n.Right, cols, seen)
	case OrFilter:
		collect(n.Left, cols, seen)
		collect(n.Right, cols, seen)
	case NotFilter:
		collect(n.Child, cols, seen)
	}
}
