// client/fauna.client.go
package client

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net/http"

	f "github.com/fauna/faunadb-go/v4/faunadb"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"

	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
	"github.com/Tanmoy095/authgate/internal/metrics"
	"github.com/Tanmoy095/authgate/shared/contracts"
)

const (
	loginMutation  = `mutation Login($data: LoginInput) { login(data: $data) }`
	logoutMutation = `mutation Logout { logout }`
)

// Helper function to process faunadb driver errors
func handleFaunaError(err error, serviceName string) error {
	var fe f.FaunaError
	if !stdErrors.As(err, &fe) {
		// Not a response from the database, so the call never completed
		return errors.Wrapf(domainErr.ErrBackendUnavailable, "%s: %v", serviceName, err)
	}

	switch status := fe.Status(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Wrapf(domainErr.ErrUnauthorized, "%s: %v", serviceName, err)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return errors.Wrapf(domainErr.ErrBackendUnavailable, "%s: %v", serviceName, err)
	default:
		return errors.Wrapf(err, "%s query failed", serviceName)
	}
}

// FaunaConfig configures a FaunaBackend.
type FaunaConfig struct {
	PublicKey       string
	GraphQLEndpoint string
	FaunaEndpoint   string
	HTTPClient      *http.Client
}

// FaunaBackend is the gateway's view of the hosted database: the GraphQL
// endpoint for login, logout and pass-through, and the FQL driver for the
// identity check.
type FaunaBackend struct {
	graphql   *GraphQLClient
	fauna     *f.FaunaClient
	publicKey string
}

func NewFaunaBackend(cfg FaunaConfig) *FaunaBackend {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &FaunaBackend{
		graphql:   NewGraphQLClient(cfg.GraphQLEndpoint, httpClient),
		fauna:     f.NewFaunaClient(cfg.PublicKey, f.Endpoint(cfg.FaunaEndpoint), f.HTTP(httpClient)),
		publicKey: cfg.PublicKey,
	}
}

// CurrentIdentity resolves the document that owns secret. A token that is
// not attached to a User document still succeeds with an empty email.
func (b *FaunaBackend) CurrentIdentity(ctx context.Context, secret string) (user *contracts.User, err error) {
	defer func() { metrics.BackendCalls.WithLabelValues("current_identity", metrics.Outcome(err)).Inc() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := b.fauna.NewSessionClient(secret).Query(f.Get(f.CurrentIdentity()))
	if err != nil {
		return nil, handleFaunaError(err, "current identity")
	}

	user = &contracts.User{}
	var ref f.RefV
	if res.At(f.ObjKey("ref")).Get(&ref) == nil {
		user.ID = ref.ID
	}
	_ = res.At(f.ObjKey("ts")).Get(&user.TS)
	_ = res.At(f.ObjKey("data", "email")).Get(&user.Email)
	return user, nil
}

// Login runs the remote login mutation with the public key and returns the
// issued secret.
func (b *FaunaBackend) Login(ctx context.Context, input contracts.LoginInput) (secret string, err error) {
	defer func() { metrics.BackendCalls.WithLabelValues("login", metrics.Outcome(err)).Inc() }()

	resp, err := b.graphql.Do(ctx, b.publicKey, Request{
		Query:         loginMutation,
		OperationName: "Login",
		Variables:     map[string]any{"data": input},
	})
	if err != nil {
		return "", errors.Wrap(err, "login")
	}
	if len(resp.Errors) > 0 {
		return "", errors.Wrap(domainErr.ErrInvalidCredentials, (&RemoteError{Errors: resp.Errors}).Error())
	}

	out := struct {
		Login *string `json:"login"`
	}{}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return "", errors.Wrap(err, "error decoding login result")
	}
	if out.Login == nil || *out.Login == "" {
		return "", domainErr.ErrMissingSecret
	}
	return *out.Login, nil
}

// Logout invalidates secret on the backend.
func (b *FaunaBackend) Logout(ctx context.Context, secret string) (err error) {
	defer func() { metrics.BackendCalls.WithLabelValues("logout", metrics.Outcome(err)).Inc() }()

	resp, err := b.graphql.Do(ctx, secret, Request{Query: logoutMutation, OperationName: "Logout"})
	if err != nil {
		return errors.Wrap(err, "logout")
	}
	if len(resp.Errors) > 0 {
		return &RemoteError{Errors: resp.Errors}
	}
	return nil
}

// Execute forwards a GraphQL request. Anonymous callers use the public key.
func (b *FaunaBackend) Execute(ctx context.Context, secret string, req Request) (resp *Response, err error) {
	defer func() { metrics.BackendCalls.WithLabelValues("execute", metrics.Outcome(err)).Inc() }()

	if secret == "" {
		secret = b.publicKey
	}
	return b.graphql.Do(ctx, secret, req)
}

// Introspect loads the remote schema using the public key.
func (b *FaunaBackend) Introspect(ctx context.Context) (*ast.Source, error) {
	return Introspect(ctx, b.graphql, b.publicKey)
}
