package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Tanmoy095/authgate/client"
	"github.com/Tanmoy095/authgate/internal/session"
	"github.com/Tanmoy095/authgate/shared/config"
)

// FromConfig wires a Gateway against the hosted backend described by cfg.
// The server and lambda entry points share it.
func FromConfig(cfg config.Gateway, log *zap.Logger) *Gateway {
	backend := client.NewFaunaBackend(client.FaunaConfig{
		PublicKey:       cfg.PublicKey,
		GraphQLEndpoint: cfg.GraphQLEndpoint,
		FaunaEndpoint:   cfg.FaunaEndpoint,
		HTTPClient:      &http.Client{Timeout: cfg.BackendTimeout},
	})
	return NewGateway(Options{
		LoadSchema:    NewSchemaLoader(cfg.RemoteSchema, backend),
		Backend:       backend,
		Codec:         session.Codec{Secure: cfg.Production()},
		Logger:        log,
		LoggedInDelay: cfg.LoggedInDelay,
		Introspection: cfg.Introspection,
	})
}
