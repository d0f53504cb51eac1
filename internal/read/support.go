package read

import (
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/basekick-labs/slate/internal/schema"
	"github.com/basekick-labs/slate/pkg/models"
)

// MapReadSupport is the reference ReadSupport: records materialize as
// models.Record maps keyed by dotted leaf path.
type MapReadSupport struct {
	// Columns restricts the requested schema to these dotted leaf paths,
	// projected in first-seen order. Nil requests the full file schema.
	Columns []string
}

func (s *MapReadSupport) Init(keyValueMeta map[string]string, fileSchema *pqschema.Schema) (ReadContext, error) {
	if s.Columns == nil {
		return ReadContext{RequestedSchema: fileSchema}, nil
	}
	paths := make([]schema.ColumnPath, 0, len(s.Columns))
	for _, c := range s.Columns {
		paths = append(paths, schema.FromDotted(c))
	}
	requested, err := schema.Project(paths)
	if err != nil {
		return ReadContext{}, err
	}
	return ReadContext{RequestedSchema: requested}, nil
}

func (s *MapReadSupport) NewMaterializer(keyValueMeta map[string]string, fileSchema *pqschema.Schema, rc ReadContext) (Materializer, error) {
	return mapMaterializer{}, nil
}

type mapMaterializer struct{}

func (mapMaterializer) Materialize(fields map[string]any) (models.Record, error) {
	return models.Record(fields), nil
}
