// Package schema projects a set of referenced column paths down to the
// minimal schema tree touching exactly those columns. The projected tree
// encodes shape only: every node is OPTIONAL and every leaf carries a
// placeholder INT32 physical type, because nothing downstream of a
// projection ever decodes values through it.
package schema

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/parquet"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/basekick-labs/slate/internal/filter"
)

// RootName is the name of the synthetic root group. Its children, not the
// root itself, form the emitted top-level schema.
const RootName = "root"

// ErrSchemaConflict reports a name demanded both as a group and as a leaf.
var ErrSchemaConflict = errors.New("conflicting column paths")

type nodeKind int

const (
	kindGroup nodeKind = iota
	kindPrimitive
)

// projectionNode is the intermediate build tree. Children keep insertion
// order; the index map only answers existence-by-name.
type projectionNode struct {
	name     string
	kind     nodeKind
	children []*projectionNode
	index    map[string]*projectionNode
}

func newProjectionGroup(name string) *projectionNode {
	return &projectionNode{
		name:  name,
		kind:  kindGroup,
		index: make(map[string]*projectionNode),
	}
}

func (n *projectionNode) child(name string) *projectionNode {
	return n.index[name]
}

func (n *projectionNode) add(child *projectionNode) *projectionNode {
	n.children = append(n.children, child)
	n.index[child.name] = child
	return child
}

// Project builds the minimal schema containing exactly one leaf per distinct
// path and exactly one group per distinct shared proper prefix. Sibling order
// is first-seen order of the input slice. A nil or empty input means "no
// columns referenced" and yields a nil schema.
//
// A name demanded as a group under one parent and later as a leaf (or the
// reverse) is a schema conflict and fails with a descriptive error.
func Project(paths []ColumnPath) (*pqschema.Schema, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	root := newProjectionGroup(RootName)
	for _, p := range paths {
		if len(p) == 0 {
			return nil, fmt.Errorf("schema: empty column path")
		}
		group := root
		for i := 0; i < len(p)-1; i++ {
			child := group.child(p[i])
			if child == nil {
				child = group.add(newProjectionGroup(p[i]))
			} else if child.kind != kindGroup {
				return nil, fmt.Errorf("schema: %w: %q is a leaf but path %q passes through it",
					ErrSchemaConflict, ColumnPath(p[:i+1]).Dotted(), p.Dotted())
			}
			group = child
		}
		leaf := p.Leaf()
		if child := group.child(leaf); child != nil {
			if child.kind != kindPrimitive {
				return nil, fmt.Errorf("schema: %w: %q is a group but path %q ends there",
					ErrSchemaConflict, p.Dotted(), p.Dotted())
			}
			continue
		}
		group.add(&projectionNode{name: leaf, kind: kindPrimitive})
	}

	return pqschema.NewSchema(root.asGroupNode(parquet.Repetitions.Repeated)), nil
}

// ProjectFilter projects the columns a row filter references. Nil filter
// means no projection is possible and yields a nil schema.
func ProjectFilter(f filter.Filter) (*pqschema.Schema, error) {
	cols := filter.ColumnsOf(f)
	if cols == nil {
		return nil, nil
	}
	paths := make([]ColumnPath, 0, len(cols))
	for _, c := range cols {
		paths = append(paths, FromDotted(c))
	}
	return Project(paths)
}

// asGroupNode serializes the build tree into parquet schema nodes. Every path
// contributes at least one child to each group on its way down, so an empty
// group here is a construction bug, never user input.
func (n *projectionNode) asGroupNode(rep parquet.Repetition) *pqschema.GroupNode {
	if len(n.children) == 0 {
		panic(fmt.Sprintf("schema: projected group %q has no children", n.name))
	}
	fields := make(pqschema.FieldList, 0, len(n.children))
	for _, child := range n.children {
		if child.kind == kindGroup {
			fields = append(fields, child.asGroupNode(parquet.Repetitions.Optional))
		} else {
			fields = append(fields, pqschema.NewInt32Node(child.name, parquet.Repetitions.Optional, -1))
		}
	}
	group, err := pqschema.NewGroupNode(n.name, rep, fields, -1)
	if err != nil {
		panic(fmt.Sprintf("schema: building projected group %q: %v", n.name, err))
	}
	return group
}
