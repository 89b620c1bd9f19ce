package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/sync/errgroup"

	"github.com/Tanmoy095/authgate/client"
)

var jsonNull = json.RawMessage("null")

// FieldResolver resolves one root field locally. args are already coerced
// against the field's argument definitions.
type FieldResolver func(ctx context.Context, args map[string]any) (any, error)

// RemoteExecutor runs a delegated GraphQL request against the backend.
type RemoteExecutor interface {
	Execute(ctx context.Context, secret string, req client.Request) (*client.Response, error)
}

// ExecutableSchema serves the composed schema. Root fields found in the
// resolver table run locally; every other root field is forwarded to the
// remote backend as a single-field operation.
type ExecutableSchema struct {
	schema      *ast.Schema
	resolvers   map[string]FieldResolver
	remote      RemoteExecutor
	parallelism int
}

var _ graphql.ExecutableSchema = (*ExecutableSchema)(nil)

// ExecOption configures an ExecutableSchema.
type ExecOption func(*ExecutableSchema)

// WithParallelism bounds how many query root fields resolve at once.
func WithParallelism(n int) ExecOption {
	return func(e *ExecutableSchema) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

func NewExecutableSchema(schema *ast.Schema, resolvers map[string]FieldResolver, remote RemoteExecutor, opts ...ExecOption) *ExecutableSchema {
	e := &ExecutableSchema{
		schema:      schema,
		resolvers:   resolvers,
		remote:      remote,
		parallelism: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ExecutableSchema) Schema() *ast.Schema {
	return e.schema
}

func (e *ExecutableSchema) Complexity(ctx context.Context, typeName, fieldName string, childComplexity int, args map[string]any) (int, bool) {
	return 0, false
}

func (e *ExecutableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	var root *ast.Definition
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = e.schema.Query
	case ast.Mutation:
		root = e.schema.Mutation
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}
	if root == nil {
		return graphql.OneShot(graphql.ErrorResponse(ctx, "schema has no %s type", opCtx.Operation.Operation))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false
		fields := graphql.CollectFields(opCtx, opCtx.Operation.SelectionSet, []string{root.Name})
		return &graphql.Response{Data: e.executeRoot(ctx, opCtx, root, fields)}
	}
}

// executeRoot resolves the root fields and assembles data in selection
// order. Mutation fields run one after another; query fields in parallel.
func (e *ExecutableSchema) executeRoot(ctx context.Context, opCtx *graphql.OperationContext, root *ast.Definition, fields []graphql.CollectedField) json.RawMessage {
	results := make([]json.RawMessage, len(fields))

	if opCtx.Operation.Operation == ast.Mutation {
		for i := range fields {
			results[i] = e.resolveField(ctx, opCtx, root, fields[i])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.parallelism)
		for i := range fields {
			g.Go(func() error {
				results[i] = e.resolveField(ctx, opCtx, root, fields[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range fields {
		if isNull(results[i]) && field.Definition != nil && field.Definition.Type.NonNull {
			// a null non-null root field nulls the whole response
			return jsonNull
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(field.Alias)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(results[i])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func (e *ExecutableSchema) resolveField(ctx context.Context, opCtx *graphql.OperationContext, root *ast.Definition, field graphql.CollectedField) (out json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			addFieldError(ctx, field.Alias, opCtx.Recover(ctx, r))
			out = jsonNull
		}
	}()

	switch field.Name {
	case "__typename":
		return marshalValue(root.Name)
	case "__schema", "__type":
		return e.introspect(ctx, opCtx, field)
	}

	if resolver, ok := e.resolvers[root.Name+"."+field.Name]; ok {
		value, err := resolver(ctx, field.ArgumentMap(opCtx.Variables))
		if err != nil {
			addFieldError(ctx, field.Alias, err)
			return jsonNull
		}
		return marshalValue(value)
	}
	return e.delegate(ctx, opCtx, root, field)
}

// addFieldError records err against the root field at alias. Errors that
// already carry a path keep it.
func addFieldError(ctx context.Context, alias string, err error) {
	if err == nil {
		return
	}
	gerr, ok := err.(*gqlerror.Error)
	if !ok {
		gerr = &gqlerror.Error{Err: err, Message: err.Error()}
	}
	if len(gerr.Path) == 0 {
		gerr.Path = ast.Path{ast.PathName(alias)}
	}
	graphql.AddError(ctx, gerr)
}

func marshalValue(v any) json.RawMessage {
	if v == nil {
		return jsonNull
	}
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal field value: %v", err))
	}
	return b
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
