package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// introObject is one introspection object. Fields are computed only when
// the query selects them, so recursive type references stay finite.
type introObject struct {
	typename string
	fields   map[string]func(args map[string]any) any
}

func (e *ExecutableSchema) introspect(ctx context.Context, opCtx *graphql.OperationContext, field graphql.CollectedField) json.RawMessage {
	if opCtx.DisableIntrospection {
		addFieldError(ctx, field.Alias, gqlerror.Errorf("introspection disabled"))
		return jsonNull
	}

	var value *introObject
	switch field.Name {
	case "__schema":
		value = schemaObject(e.schema)
	case "__type":
		name, _ := field.ArgumentMap(opCtx.Variables)["name"].(string)
		if def := e.schema.Types[name]; def != nil {
			value = typeObject(e.schema, def)
		}
	}

	var buf bytes.Buffer
	project(opCtx, &buf, value, field.Selections)
	return buf.Bytes()
}

// project writes value as JSON shaped by sel.
func project(opCtx *graphql.OperationContext, buf *bytes.Buffer, value any, sel ast.SelectionSet) {
	switch v := value.(type) {
	case nil:
		buf.Write(jsonNull)
	case *introObject:
		if v == nil {
			buf.Write(jsonNull)
			return
		}
		buf.WriteByte('{')
		for i, f := range graphql.CollectFields(opCtx, sel, []string{v.typename}) {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(f.Alias)
			buf.Write(key)
			buf.WriteByte(':')
			if f.Name == "__typename" {
				buf.Write(marshalValue(v.typename))
				continue
			}
			resolve, ok := v.fields[f.Name]
			if !ok {
				buf.Write(jsonNull)
				continue
			}
			project(opCtx, buf, resolve(f.ArgumentMap(opCtx.Variables)), f.Selections)
		}
		buf.WriteByte('}')
	case []*introObject:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			project(opCtx, buf, item, sel)
		}
		buf.WriteByte(']')
	default:
		buf.Write(marshalValue(v))
	}
}

func schemaObject(s *ast.Schema) *introObject {
	return &introObject{typename: "__Schema", fields: map[string]func(map[string]any) any{
		"description": func(map[string]any) any { return optString(s.Description) },
		"types": func(map[string]any) any {
			names := make([]string, 0, len(s.Types))
			for name := range s.Types {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]*introObject, 0, len(names))
			for _, name := range names {
				out = append(out, typeObject(s, s.Types[name]))
			}
			return out
		},
		"queryType":        func(map[string]any) any { return typeObject(s, s.Query) },
		"mutationType":     func(map[string]any) any { return typeObject(s, s.Mutation) },
		"subscriptionType": func(map[string]any) any { return typeObject(s, s.Subscription) },
		"directives": func(map[string]any) any {
			names := make([]string, 0, len(s.Directives))
			for name := range s.Directives {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]*introObject, 0, len(names))
			for _, name := range names {
				out = append(out, directiveObject(s, s.Directives[name]))
			}
			return out
		},
	}}
}

func typeObject(s *ast.Schema, def *ast.Definition) *introObject {
	if def == nil {
		return nil
	}
	hasFields := def.Kind == ast.Object || def.Kind == ast.Interface
	return &introObject{typename: "__Type", fields: map[string]func(map[string]any) any{
		"kind":        func(map[string]any) any { return string(def.Kind) },
		"name":        func(map[string]any) any { return def.Name },
		"description": func(map[string]any) any { return optString(def.Description) },
		"specifiedByURL": func(map[string]any) any {
			if d := def.Directives.ForName("specifiedBy"); d != nil {
				if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
					return arg.Value.Raw
				}
			}
			return nil
		},
		"isOneOf": func(map[string]any) any {
			if def.Kind != ast.InputObject {
				return nil
			}
			return def.Directives.ForName("oneOf") != nil
		},
		"fields": func(args map[string]any) any {
			if !hasFields {
				return nil
			}
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := []*introObject{}
			for _, f := range def.Fields {
				if strings.HasPrefix(f.Name, "__") || (!includeDeprecated && isDeprecated(f.Directives)) {
					continue
				}
				out = append(out, fieldObject(s, f))
			}
			return out
		},
		"inputFields": func(args map[string]any) any {
			if def.Kind != ast.InputObject {
				return nil
			}
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := []*introObject{}
			for _, f := range def.Fields {
				if !includeDeprecated && isDeprecated(f.Directives) {
					continue
				}
				out = append(out, inputValueObject(s, f.Name, f.Description, f.Type, f.DefaultValue, f.Directives))
			}
			return out
		},
		"interfaces": func(map[string]any) any {
			if !hasFields {
				return nil
			}
			out := []*introObject{}
			for _, name := range def.Interfaces {
				out = append(out, typeObject(s, s.Types[name]))
			}
			return out
		},
		"possibleTypes": func(map[string]any) any {
			if def.Kind != ast.Interface && def.Kind != ast.Union {
				return nil
			}
			out := []*introObject{}
			for _, possible := range s.GetPossibleTypes(def) {
				out = append(out, typeObject(s, possible))
			}
			return out
		},
		"enumValues": func(args map[string]any) any {
			if def.Kind != ast.Enum {
				return nil
			}
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := []*introObject{}
			for _, v := range def.EnumValues {
				if !includeDeprecated && isDeprecated(v.Directives) {
					continue
				}
				out = append(out, enumValueObject(v))
			}
			return out
		},
		"ofType": func(map[string]any) any { return nil },
	}}
}

// typeRefObject unwraps non-null and list modifiers into wrapper types.
func typeRefObject(s *ast.Schema, t *ast.Type) *introObject {
	if t == nil {
		return nil
	}
	switch {
	case t.NonNull:
		inner := *t
		inner.NonNull = false
		return wrapperObject(s, "NON_NULL", &inner)
	case t.Elem != nil:
		return wrapperObject(s, "LIST", t.Elem)
	default:
		return typeObject(s, s.Types[t.NamedType])
	}
}

func wrapperObject(s *ast.Schema, kind string, of *ast.Type) *introObject {
	null := func(map[string]any) any { return nil }
	return &introObject{typename: "__Type", fields: map[string]func(map[string]any) any{
		"kind":           func(map[string]any) any { return kind },
		"ofType":         func(map[string]any) any { return typeRefObject(s, of) },
		"name":           null,
		"description":    null,
		"specifiedByURL": null,
		"isOneOf":        null,
		"fields":         null,
		"inputFields":    null,
		"interfaces":     null,
		"possibleTypes":  null,
		"enumValues":     null,
	}}
}

func fieldObject(s *ast.Schema, f *ast.FieldDefinition) *introObject {
	return &introObject{typename: "__Field", fields: map[string]func(map[string]any) any{
		"name":        func(map[string]any) any { return f.Name },
		"description": func(map[string]any) any { return optString(f.Description) },
		"args": func(args map[string]any) any {
			return argumentObjects(s, f.Arguments, args)
		},
		"type":              func(map[string]any) any { return typeRefObject(s, f.Type) },
		"isDeprecated":      func(map[string]any) any { return isDeprecated(f.Directives) },
		"deprecationReason": func(map[string]any) any { return deprecationReason(f.Directives) },
	}}
}

func argumentObjects(s *ast.Schema, list ast.ArgumentDefinitionList, args map[string]any) []*introObject {
	includeDeprecated, _ := args["includeDeprecated"].(bool)
	out := []*introObject{}
	for _, a := range list {
		if !includeDeprecated && isDeprecated(a.Directives) {
			continue
		}
		out = append(out, inputValueObject(s, a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
	}
	return out
}

func inputValueObject(s *ast.Schema, name, description string, t *ast.Type, defaultValue *ast.Value, directives ast.DirectiveList) *introObject {
	return &introObject{typename: "__InputValue", fields: map[string]func(map[string]any) any{
		"name":        func(map[string]any) any { return name },
		"description": func(map[string]any) any { return optString(description) },
		"type":        func(map[string]any) any { return typeRefObject(s, t) },
		"defaultValue": func(map[string]any) any {
			if defaultValue == nil {
				return nil
			}
			return defaultValue.String()
		},
		"isDeprecated":      func(map[string]any) any { return isDeprecated(directives) },
		"deprecationReason": func(map[string]any) any { return deprecationReason(directives) },
	}}
}

func enumValueObject(v *ast.EnumValueDefinition) *introObject {
	return &introObject{typename: "__EnumValue", fields: map[string]func(map[string]any) any{
		"name":              func(map[string]any) any { return v.Name },
		"description":       func(map[string]any) any { return optString(v.Description) },
		"isDeprecated":      func(map[string]any) any { return isDeprecated(v.Directives) },
		"deprecationReason": func(map[string]any) any { return deprecationReason(v.Directives) },
	}}
}

func directiveObject(s *ast.Schema, d *ast.DirectiveDefinition) *introObject {
	return &introObject{typename: "__Directive", fields: map[string]func(map[string]any) any{
		"name":        func(map[string]any) any { return d.Name },
		"description": func(map[string]any) any { return optString(d.Description) },
		"locations": func(map[string]any) any {
			out := make([]string, 0, len(d.Locations))
			for _, loc := range d.Locations {
				out = append(out, string(loc))
			}
			return out
		},
		"args": func(args map[string]any) any {
			return argumentObjects(s, d.Arguments, args)
		},
		"isRepeatable": func(map[string]any) any { return d.IsRepeatable },
	}}
}

func isDeprecated(list ast.DirectiveList) bool {
	return list.ForName("deprecated") != nil
}

func deprecationReason(list ast.DirectiveList) any {
	d := list.ForName("deprecated")
	if d == nil {
		return nil
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return "No longer supported"
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
