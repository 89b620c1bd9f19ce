package graph

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"github.com/Tanmoy095/authgate/client"
	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
	"github.com/Tanmoy095/authgate/internal/pkg/logger"
)

// delegate forwards one root field to the remote backend with the request's
// session token and copies the remote result for that field verbatim.
func (e *ExecutableSchema) delegate(ctx context.Context, opCtx *graphql.OperationContext, root *ast.Definition, field graphql.CollectedField) json.RawMessage {
	req := delegatedRequest(opCtx, field)

	resp, err := e.remote.Execute(ctx, ForContext(ctx).Token, req)
	if err != nil {
		logger.FromContext(ctx).Error("remote field failed",
			zap.String("field", root.Name+"."+field.Name),
			zap.Error(err))
		msg := domainErr.ErrBackendUnavailable.Error()
		if stdErrors.Is(err, domainErr.ErrUnauthorized) {
			msg = domainErr.ErrUnauthorized.Error()
		}
		addFieldError(ctx, field.Alias, gqlerror.Errorf("%s", msg))
		return jsonNull
	}

	for _, remoteErr := range resp.Errors {
		addFieldError(ctx, field.Alias, &gqlerror.Error{
			Message:    remoteErr.Message,
			Path:       remoteErr.Path,
			Extensions: remoteErr.Extensions,
		})
	}

	data := map[string]json.RawMessage{}
	if len(resp.Data) > 0 && !isNull(resp.Data) {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			addFieldError(ctx, field.Alias, gqlerror.Errorf("invalid response from remote backend"))
			return jsonNull
		}
	}
	if value, ok := data[field.Alias]; ok && len(value) > 0 {
		return value
	}
	return jsonNull
}

// delegatedRequest prints field as a single-field operation of the same
// type. Only the variables and fragments the field references are sent.
func delegatedRequest(opCtx *graphql.OperationContext, field graphql.CollectedField) client.Request {
	op := opCtx.Operation
	selection := &ast.Field{
		Alias:        field.Alias,
		Name:         field.Name,
		Arguments:    field.Arguments,
		SelectionSet: field.Selections,
	}

	refs := newReferences(opCtx.Doc)
	refs.field(selection)

	doc := &ast.QueryDocument{
		Operations: ast.OperationList{{
			Operation:    op.Operation,
			Name:         op.Name,
			SelectionSet: ast.SelectionSet{selection},
		}},
	}
	for _, def := range op.VariableDefinitions {
		if refs.variables[def.Variable] {
			doc.Operations[0].VariableDefinitions = append(doc.Operations[0].VariableDefinitions, def)
		}
	}
	for _, frag := range opCtx.Doc.Fragments {
		if refs.fragments[frag.Name] {
			doc.Fragments = append(doc.Fragments, frag)
		}
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)

	var vars map[string]any
	for name := range refs.variables {
		if value, ok := opCtx.Variables[name]; ok {
			if vars == nil {
				vars = map[string]any{}
			}
			vars[name] = value
		}
	}

	return client.Request{Query: buf.String(), OperationName: op.Name, Variables: vars}
}

// references walks a selection, following fragment spreads, and records
// every variable and fragment it uses.
type references struct {
	doc       *ast.QueryDocument
	variables map[string]bool
	fragments map[string]bool
}

func newReferences(doc *ast.QueryDocument) *references {
	return &references{doc: doc, variables: map[string]bool{}, fragments: map[string]bool{}}
}

func (r *references) field(f *ast.Field) {
	for _, arg := range f.Arguments {
		r.value(arg.Value)
	}
	r.directives(f.Directives)
	r.selectionSet(f.SelectionSet)
}

func (r *references) selectionSet(set ast.SelectionSet) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			r.field(s)
		case *ast.InlineFragment:
			r.directives(s.Directives)
			r.selectionSet(s.SelectionSet)
		case *ast.FragmentSpread:
			r.directives(s.Directives)
			if r.fragments[s.Name] {
				continue
			}
			r.fragments[s.Name] = true
			if def := r.doc.Fragments.ForName(s.Name); def != nil {
				r.directives(def.Directives)
				r.selectionSet(def.SelectionSet)
			}
		}
	}
}

func (r *references) directives(list ast.DirectiveList) {
	for _, d := range list {
		for _, arg := range d.Arguments {
			r.value(arg.Value)
		}
	}
}

func (r *references) value(v *ast.Value) {
	if v == nil {
		return
	}
	if v.Kind == ast.Variable {
		r.variables[v.Raw] = true
		return
	}
	for _, child := range v.Children {
		r.value(child.Value)
	}
}
