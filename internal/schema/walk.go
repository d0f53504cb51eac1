package schema

import (
	"github.com/apache/arrow-go/v18/parquet"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
)

// Leaves returns the full path of every leaf reachable from the schema root,
// depth-first in sibling order.
func Leaves(sc *pqschema.Schema) []ColumnPath {
	if sc == nil {
		return nil
	}
	return appendLeaves(nil, sc.Root(), nil)
}

func appendLeaves(dst []ColumnPath, group *pqschema.GroupNode, prefix ColumnPath) []ColumnPath {
	base := prefix[:len(prefix):len(prefix)]
	for i := 0; i < group.NumFields(); i++ {
		field := group.Field(i)
		switch n := field.(type) {
		case *pqschema.GroupNode:
			dst = appendLeaves(dst, n, append(base, n.Name()))
		default:
			path := make(ColumnPath, 0, len(base)+1)
			path = append(path, base...)
			path = append(path, field.Name())
			dst = append(dst, path)
		}
	}
	return dst
}

// LeafType looks up the physical type of the leaf at path. The second result
// is false when the path is absent or resolves to a group.
func LeafType(sc *pqschema.Schema, path ColumnPath) (parquet.Type, bool) {
	if sc == nil || len(path) == 0 {
		return parquet.Types.Undefined, false
	}
	var node pqschema.Node = sc.Root()
	for _, name := range path {
		group, ok := node.(*pqschema.GroupNode)
		if !ok {
			return parquet.Types.Undefined, false
		}
		idx := group.FieldIndexByName(name)
		if idx < 0 {
			return parquet.Types.Undefined, false
		}
		node = group.Field(idx)
	}
	prim, ok := node.(*pqschema.PrimitiveNode)
	if !ok {
		return parquet.Types.Undefined, false
	}
	return prim.PhysicalType(), true
}

// HasLeaf reports whether path resolves to a leaf in the schema.
func HasLeaf(sc *pqschema.Schema, path ColumnPath) bool {
	_, ok := LeafType(sc, path)
	return ok
}
