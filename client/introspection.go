package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"

	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
)

const IntrospectionQuery = `
query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types { ...FullType }
    directives {
      name
      description
      locations
      isRepeatable
      args { ...InputValue }
    }
  }
}
fragment FullType on __Type {
  kind
  name
  description
  fields(includeDeprecated: true) {
    name
    description
    args { ...InputValue }
    type { ...TypeRef }
    isDeprecated
    deprecationReason
  }
  inputFields { ...InputValue }
  interfaces { ...TypeRef }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes { ...TypeRef }
}
fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
}
fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType { kind name }
            }
          }
        }
      }
    }
  }
}
`

type introspectionResult struct {
	Schema introspectedSchema `json:"__schema"`
}

type introspectedSchema struct {
	QueryType        *namedRef               `json:"queryType"`
	MutationType     *namedRef               `json:"mutationType"`
	SubscriptionType *namedRef               `json:"subscriptionType"`
	Types            []introspectedType      `json:"types"`
	Directives       []introspectedDirective `json:"directives"`
}

type namedRef struct {
	Name string `json:"name"`
}

type typeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name"`
	OfType *typeRef `json:"ofType"`
}

type introspectedType struct {
	Kind          string                   `json:"kind"`
	Name          string                   `json:"name"`
	Description   *string                  `json:"description"`
	Fields        []introspectedField      `json:"fields"`
	InputFields   []introspectedInputValue `json:"inputFields"`
	Interfaces    []typeRef                `json:"interfaces"`
	EnumValues    []introspectedEnumValue  `json:"enumValues"`
	PossibleTypes []typeRef                `json:"possibleTypes"`
}

type introspectedField struct {
	Name              string                   `json:"name"`
	Description       *string                  `json:"description"`
	Args              []introspectedInputValue `json:"args"`
	Type              typeRef                  `json:"type"`
	IsDeprecated      bool                     `json:"isDeprecated"`
	DeprecationReason *string                  `json:"deprecationReason"`
}

type introspectedInputValue struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Type         typeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

type introspectedEnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type introspectedDirective struct {
	Name         string                   `json:"name"`
	Description  *string                  `json:"description"`
	Locations    []string                 `json:"locations"`
	IsRepeatable bool                     `json:"isRepeatable"`
	Args         []introspectedInputValue `json:"args"`
}

// predeclared names come from the gqlparser prelude and must not be redeclared.
var (
	builtinScalars    = map[string]bool{"String": true, "Int": true, "Float": true, "Boolean": true, "ID": true}
	builtinDirectives = map[string]bool{"skip": true, "include": true, "deprecated": true, "specifiedBy": true, "defer": true, "oneOf": true}
)

// Introspect fetches the remote schema with the given secret and returns it
// as an SDL source named "remote.graphql".
func Introspect(ctx context.Context, c *GraphQLClient, secret string) (*ast.Source, error) {
	resp, err := c.Do(ctx, secret, Request{Query: IntrospectionQuery, OperationName: "IntrospectionQuery"})
	if err != nil {
		return nil, errors.Wrap(err, "error introspecting remote schema")
	}
	if len(resp.Errors) > 0 {
		return nil, errors.Wrap(&RemoteError{Errors: resp.Errors}, "error introspecting remote schema")
	}
	sdl, err := SDLFromIntrospection(resp.Data)
	if err != nil {
		return nil, err
	}
	return &ast.Source{Name: "remote.graphql", Input: sdl}, nil
}

// SDLFromIntrospection renders the data of an introspection response as
// schema definition language.
func SDLFromIntrospection(data json.RawMessage) (string, error) {
	result := introspectionResult{}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errors.Wrap(err, "error decoding introspection result")
	}
	s := result.Schema
	if len(s.Types) == 0 {
		return "", errors.Wrap(domainErr.ErrSchemaUnavailable, "introspection returned no types")
	}

	var b strings.Builder
	writeSchemaBlock(&b, s)
	for _, d := range s.Directives {
		if builtinDirectives[d.Name] {
			continue
		}
		writeDescription(&b, d.Description, "")
		fmt.Fprintf(&b, "directive @%s%s", d.Name, argsSDL(d.Args))
		if d.IsRepeatable {
			b.WriteString(" repeatable")
		}
		fmt.Fprintf(&b, " on %s\n\n", strings.Join(d.Locations, " | "))
	}
	for _, t := range s.Types {
		if strings.HasPrefix(t.Name, "__") || (t.Kind == "SCALAR" && builtinScalars[t.Name]) {
			continue
		}
		writeType(&b, t)
	}
	return b.String(), nil
}

func writeSchemaBlock(b *strings.Builder, s introspectedSchema) {
	custom := (s.QueryType != nil && s.QueryType.Name != "Query") ||
		(s.MutationType != nil && s.MutationType.Name != "Mutation") ||
		(s.SubscriptionType != nil && s.SubscriptionType.Name != "Subscription")
	if !custom {
		return
	}
	b.WriteString("schema {\n")
	if s.QueryType != nil {
		fmt.Fprintf(b, "  query: %s\n", s.QueryType.Name)
	}
	if s.MutationType != nil {
		fmt.Fprintf(b, "  mutation: %s\n", s.MutationType.Name)
	}
	if s.SubscriptionType != nil {
		fmt.Fprintf(b, "  subscription: %s\n", s.SubscriptionType.Name)
	}
	b.WriteString("}\n\n")
}

func writeType(b *strings.Builder, t introspectedType) {
	writeDescription(b, t.Description, "")
	switch t.Kind {
	case "SCALAR":
		fmt.Fprintf(b, "scalar %s\n\n", t.Name)
	case "OBJECT", "INTERFACE":
		keyword := "type"
		if t.Kind == "INTERFACE" {
			keyword = "interface"
		}
		fmt.Fprintf(b, "%s %s", keyword, t.Name)
		if len(t.Interfaces) > 0 {
			names := make([]string, 0, len(t.Interfaces))
			for _, i := range t.Interfaces {
				names = append(names, typeRefSDL(i))
			}
			fmt.Fprintf(b, " implements %s", strings.Join(names, " & "))
		}
		b.WriteString(" {\n")
		for _, f := range t.Fields {
			writeDescription(b, f.Description, "  ")
			fmt.Fprintf(b, "  %s%s: %s%s\n", f.Name, argsSDL(f.Args), typeRefSDL(f.Type), deprecatedSDL(f.IsDeprecated, f.DeprecationReason))
		}
		b.WriteString("}\n\n")
	case "UNION":
		names := make([]string, 0, len(t.PossibleTypes))
		for _, p := range t.PossibleTypes {
			names = append(names, typeRefSDL(p))
		}
		fmt.Fprintf(b, "union %s = %s\n\n", t.Name, strings.Join(names, " | "))
	case "ENUM":
		fmt.Fprintf(b, "enum %s {\n", t.Name)
		for _, v := range t.EnumValues {
			writeDescription(b, v.Description, "  ")
			fmt.Fprintf(b, "  %s%s\n", v.Name, deprecatedSDL(v.IsDeprecated, v.DeprecationReason))
		}
		b.WriteString("}\n\n")
	case "INPUT_OBJECT":
		fmt.Fprintf(b, "input %s {\n", t.Name)
		for _, f := range t.InputFields {
			writeDescription(b, f.Description, "  ")
			fmt.Fprintf(b, "  %s\n", inputValueSDL(f))
		}
		b.WriteString("}\n\n")
	}
}

func writeDescription(b *strings.Builder, desc *string, indent string) {
	if desc == nil || *desc == "" {
		return
	}
	quoted, _ := json.Marshal(*desc)
	fmt.Fprintf(b, "%s%s\n", indent, quoted)
}

func argsSDL(args []introspectedInputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, inputValueSDL(a))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// defaultValue is already a GraphQL literal in introspection output.
func inputValueSDL(v introspectedInputValue) string {
	s := v.Name + ": " + typeRefSDL(v.Type)
	if v.DefaultValue != nil {
		s += " = " + *v.DefaultValue
	}
	return s
}

func deprecatedSDL(deprecated bool, reason *string) string {
	if !deprecated {
		return ""
	}
	if reason == nil || *reason == "" {
		return " @deprecated"
	}
	quoted, _ := json.Marshal(*reason)
	return fmt.Sprintf(" @deprecated(reason: %s)", quoted)
}

func typeRefSDL(t typeRef) string {
	switch t.Kind {
	case "NON_NULL":
		if t.OfType == nil {
			return ""
		}
		return typeRefSDL(*t.OfType) + "!"
	case "LIST":
		if t.OfType == nil {
			return "[]"
		}
		return "[" + typeRefSDL(*t.OfType) + "]"
	default:
		if t.Name == nil {
			return ""
		}
		return *t.Name
	}
}
