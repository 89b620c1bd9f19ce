package graph

import (
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/Tanmoy095/authgate/graph/schema"
)

// FilteredRootFields are remote root fields clients may not call directly.
var FilteredRootFields = []string{"createTodo", "createUser", "deleteUser", "findUserByID"}

// Compose builds the schema the gateway serves: the remote schema without
// the filtered root fields, with the local overlay on top.
func Compose(remote *ast.Source, filtered []string) (*ast.Schema, error) {
	remoteDoc, err := parseSchema(remote)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing remote schema")
	}
	overlayDoc, err := parseSchema(schema.Overlay())
	if err != nil {
		return nil, errors.Wrap(err, "error parsing overlay schema")
	}
	prelude, err := parseSchema(validator.Prelude)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing prelude")
	}

	roots := rootTypeNames(remoteDoc)
	filterRootFields(remoteDoc, roots, filtered)
	applyOverlay(remoteDoc, overlayDoc, roots)

	full := &ast.SchemaDocument{}
	full.Merge(prelude)
	full.Merge(remoteDoc)
	return validateSchema(full)
}

func parseSchema(src *ast.Source) (*ast.SchemaDocument, error) {
	doc, gerr := parser.ParseSchema(src)
	if gerr != nil {
		return nil, gerr
	}
	return doc, nil
}

func validateSchema(doc *ast.SchemaDocument) (*ast.Schema, error) {
	s, gerr := validator.ValidateSchemaDocument(doc)
	if gerr != nil {
		return nil, errors.Wrap(gerr, "composed schema is invalid")
	}
	return s, nil
}

// rootTypeNames honours an explicit schema block and falls back to the
// conventional names.
func rootTypeNames(doc *ast.SchemaDocument) map[string]bool {
	roots := map[string]bool{}
	for _, list := range []ast.SchemaDefinitionList{doc.Schema, doc.SchemaExtension} {
		for _, def := range list {
			for _, op := range def.OperationTypes {
				roots[op.Type] = true
			}
		}
	}
	if len(roots) == 0 {
		roots["Query"] = true
		roots["Mutation"] = true
		roots["Subscription"] = true
	}
	return roots
}

func filterRootFields(doc *ast.SchemaDocument, roots map[string]bool, filtered []string) {
	if len(filtered) == 0 {
		return
	}
	drop := make(map[string]bool, len(filtered))
	for _, name := range filtered {
		drop[name] = true
	}
	filter := func(defs ast.DefinitionList) {
		for _, def := range defs {
			if !roots[def.Name] {
				continue
			}
			kept := def.Fields[:0]
			for _, field := range def.Fields {
				if !drop[field.Name] {
					kept = append(kept, field)
				}
			}
			def.Fields = kept
		}
	}
	filter(doc.Definitions)
	filter(doc.Extensions)
}

// applyOverlay merges root types field by field and replaces any other type
// with the overlay's definition.
func applyOverlay(doc, overlay *ast.SchemaDocument, roots map[string]bool) {
	for _, def := range overlay.Definitions {
		existing := doc.Definitions.ForName(def.Name)
		switch {
		case existing == nil:
			doc.Definitions = append(doc.Definitions, def)
		case roots[def.Name] || def.Name == "Query" || def.Name == "Mutation":
			for _, field := range def.Fields {
				replaced := false
				for i, current := range existing.Fields {
					if current.Name == field.Name {
						existing.Fields[i] = field
						replaced = true
						break
					}
				}
				if !replaced {
					existing.Fields = append(existing.Fields, field)
				}
			}
		default:
			for i, current := range doc.Definitions {
				if current.Name == def.Name {
					doc.Definitions[i] = def
				}
			}
		}
	}
}
