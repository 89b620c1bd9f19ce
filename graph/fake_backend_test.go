package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/stretchr/testify/require"

	"github.com/Tanmoy095/authgate/client"
	"github.com/Tanmoy095/authgate/graph/schema"
	"github.com/Tanmoy095/authgate/internal/session"
	"github.com/Tanmoy095/authgate/shared/contracts"
)

// fakeBackend is a hand-written Backend that records every call.
type fakeBackend struct {
	mu sync.Mutex

	identity    *contracts.User
	identityErr error
	loginSecret string
	loginErr    error
	logoutErr   error
	respond     func(req client.Request) (*client.Response, error)

	identityCalls []string
	loginCalls    []contracts.LoginInput
	logoutCalls   []string
	executeCalls  []executeCall
}

type executeCall struct {
	Secret  string
	Request client.Request
}

func (f *fakeBackend) CurrentIdentity(_ context.Context, secret string) (*contracts.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identityCalls = append(f.identityCalls, secret)
	return f.identity, f.identityErr
}

func (f *fakeBackend) Login(_ context.Context, input contracts.LoginInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls = append(f.loginCalls, input)
	return f.loginSecret, f.loginErr
}

func (f *fakeBackend) Logout(_ context.Context, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls = append(f.logoutCalls, secret)
	return f.logoutErr
}

func (f *fakeBackend) Execute(_ context.Context, secret string, req client.Request) (*client.Response, error) {
	f.mu.Lock()
	f.executeCalls = append(f.executeCalls, executeCall{Secret: secret, Request: req})
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return &client.Response{Data: json.RawMessage(`{}`)}, nil
	}
	return respond(req)
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.identityCalls) + len(f.loginCalls) + len(f.logoutCalls) + len(f.executeCalls)
}

func (f *fakeBackend) executed() []executeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]executeCall(nil), f.executeCalls...)
}

// gqlResult is a decoded GraphQL response.
type gqlResult struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Path    []any  `json:"path"`
	} `json:"errors"`
}

type testGateway struct {
	t       *testing.T
	handler http.Handler
	lastCtx *RequestContext
}

func newTestGateway(t *testing.T, backend *fakeBackend, introspect bool) *testGateway {
	t.Helper()
	composed, err := Compose(schema.RemoteSnapshot(), FilteredRootFields)
	require.NoError(t, err)

	resolver := NewResolver(backend, session.Codec{}, WithLoggedInDelay(0))
	srv := handler.New(NewExecutableSchema(composed, resolver.FieldResolvers(), backend))
	srv.AddTransport(transport.POST{})
	if introspect {
		srv.Use(extension.Introspection{})
	}

	gw := &testGateway{t: t}
	gw.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := NewRequestContext(r)
		gw.lastCtx = rc
		srv.ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
	})
	return gw
}

func (g *testGateway) do(token, query string, variables map[string]any) gqlResult {
	g.t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	require.NoError(g.t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)

	out := gqlResult{}
	require.NoError(g.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
