// Package pagefile reads and writes the slate page container: a minimal
// columnar on-disk layout used by the CLI and as the file-backed row-group
// source in tests. Pages are msgpack-encoded column vectors compressed with
// snappy; the footer is msgpack. Everything page- and compression-related
// stays inside this package; the streaming reader only ever sees decoded
// values.
package pagefile

import (
	"fmt"

	"github.com/apache/arrow-go/v18/parquet"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
)

// File format constants
var (
	// Magic leads the file and trails the footer length.
	Magic = []byte{'S', 'L', 'P', '1'}
)

const (
	// Trailer format: [Footer: N bytes] [FooterLen: 4 bytes] [Magic: 4 bytes]
	trailerSize = 8

	// MaxFooterSize caps footer allocation when reading untrusted files.
	MaxFooterSize = 16 * 1024 * 1024 // 16MB
)

// Column type names carried in the footer.
const (
	TypeBoolean = "boolean"
	TypeInt32   = "int32"
	TypeInt64   = "int64"
	TypeDouble  = "double"
	TypeString  = "string"
)

// Column declares one flat column of the container.
type Column struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

// pageRef locates one compressed column page.
type pageRef struct {
	Offset int64 `msgpack:"offset"`
	Length int64 `msgpack:"length"`
}

// rowGroupMeta describes one row group: a page per column, in footer column
// order.
type rowGroupMeta struct {
	NumRows int64     `msgpack:"num_rows"`
	Pages   []pageRef `msgpack:"pages"`
}

// fileFooter is the container footer.
type fileFooter struct {
	Columns   []Column          `msgpack:"columns"`
	RowGroups []rowGroupMeta    `msgpack:"row_groups"`
	Metadata  map[string]string `msgpack:"metadata,omitempty"`
}

// physicalType maps a footer type name to its parquet physical type.
func physicalType(name string) (parquet.Type, error) {
	switch name {
	case TypeBoolean:
		return parquet.Types.Boolean, nil
	case TypeInt32:
		return parquet.Types.Int32, nil
	case TypeInt64:
		return parquet.Types.Int64, nil
	case TypeDouble:
		return parquet.Types.Double, nil
	case TypeString:
		return parquet.Types.ByteArray, nil
	}
	return parquet.Types.Undefined, fmt.Errorf("pagefile: unknown column type %q", name)
}

// buildSchema turns the footer column list into the on-disk schema handed to
// the read path.
func buildSchema(columns []Column) (*pqschema.Schema, error) {
	fields := make(pqschema.FieldList, 0, len(columns))
	for _, col := range columns {
		typ, err := physicalType(col.Type)
		if err != nil {
			return nil, err
		}
		node, err := pqschema.NewPrimitiveNode(col.Name, parquet.Repetitions.Optional, typ, -1, -1)
		if err != nil {
			return nil, fmt.Errorf("pagefile: column %q: %w", col.Name, err)
		}
		fields = append(fields, node)
	}
	root, err := pqschema.NewGroupNode("root", parquet.Repetitions.Repeated, fields, -1)
	if err != nil {
		return nil, fmt.Errorf("pagefile: building schema root: %w", err)
	}
	return pqschema.NewSchema(root), nil
}
