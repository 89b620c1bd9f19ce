package server

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/Tanmoy095/authgate/graph/schema"
)

// EmbeddedSchema selects the remote schema snapshot compiled into the binary.
const EmbeddedSchema = "embedded"

// SchemaLoader fetches the remote schema the gateway composes over.
type SchemaLoader func(ctx context.Context) (*ast.Source, error)

// Introspector fetches the remote schema from the live backend.
type Introspector interface {
	Introspect(ctx context.Context) (*ast.Source, error)
}

// NewSchemaLoader picks the schema source: an empty source introspects the
// backend, EmbeddedSchema uses the snapshot, anything else is a file path.
func NewSchemaLoader(source string, introspector Introspector) SchemaLoader {
	switch source {
	case "":
		return introspector.Introspect
	case EmbeddedSchema:
		return func(context.Context) (*ast.Source, error) {
			return schema.RemoteSnapshot(), nil
		}
	default:
		return func(context.Context) (*ast.Source, error) {
			b, err := os.ReadFile(source)
			if err != nil {
				return nil, errors.Wrap(err, "read remote schema")
			}
			return &ast.Source{Name: source, Input: string(b)}, nil
		}
	}
}
