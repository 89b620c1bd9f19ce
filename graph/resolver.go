package graph

import (
	"context"
	"time"

	"github.com/Tanmoy095/authgate/client"
	"github.com/Tanmoy095/authgate/internal/session"
	"github.com/Tanmoy095/authgate/shared/contracts"
)

// Backend is everything the gateway needs from the hosted database.
// client.FaunaBackend is the production implementation.
type Backend interface {
	// CurrentIdentity resolves the identity owning secret.
	CurrentIdentity(ctx context.Context, secret string) (*contracts.User, error)
	// Login exchanges credentials for a session secret.
	Login(ctx context.Context, input contracts.LoginInput) (string, error)
	// Logout invalidates secret.
	Logout(ctx context.Context, secret string) error
	// Execute forwards a GraphQL request; an empty secret means anonymous.
	Execute(ctx context.Context, secret string, req client.Request) (*client.Response, error)
}

// Resolver holds dependencies for the auth resolvers.
type Resolver struct {
	backend       Backend
	codec         session.Codec
	loggedInDelay time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLoggedInDelay sets how long loggedIn waits before answering. Zero
// answers immediately.
func WithLoggedInDelay(d time.Duration) Option {
	return func(r *Resolver) { r.loggedInDelay = d }
}

// NewResolver initializes the resolver with the backend and cookie codec.
func NewResolver(backend Backend, codec session.Codec, opts ...Option) *Resolver {
	r := &Resolver{backend: backend, codec: codec, loggedInDelay: 800 * time.Millisecond}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FieldResolvers is the dispatch table handed to the executor. Fields not
// listed here are forwarded to the backend.
func (r *Resolver) FieldResolvers() map[string]FieldResolver {
	return map[string]FieldResolver{
		"Query.loggedIn": func(ctx context.Context, _ map[string]any) (any, error) {
			return r.LoggedIn(ctx)
		},
		"Mutation.login": func(ctx context.Context, args map[string]any) (any, error) {
			data, err := decodeLoginInput(args)
			if err != nil {
				return nil, err
			}
			return r.Login(ctx, data)
		},
		"Mutation.logout": func(ctx context.Context, _ map[string]any) (any, error) {
			return r.Logout(ctx)
		},
	}
}
