// Package schema bundles the SDL the gateway needs at runtime: the local
// overlay and a snapshot of the hosted backend's generated schema.
package schema

import (
	_ "embed"

	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed overlay.graphql
var overlaySDL string

//go:embed remote.graphql
var remoteSDL string

// Overlay declares the fields the gateway resolves itself.
func Overlay() *ast.Source {
	return &ast.Source{Name: "overlay.graphql", Input: overlaySDL}
}

// RemoteSnapshot is the hosted schema as last downloaded. It is used when
// live introspection is switched off.
func RemoteSnapshot() *ast.Source {
	return &ast.Source{Name: "remote.graphql", Input: remoteSDL}
}
