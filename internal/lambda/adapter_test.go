package lambda

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

func TestAdaptRoundTrip(t *testing.T) {
	var seen *http.Request
	var seenBody string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		b, _ := io.ReadAll(r.Body)
		seenBody = string(b)
		http.SetCookie(w, &http.Cookie{Name: "fauna-token", Value: "S1", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: "other", Value: "x"})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"data":{"loggedIn":true}}`))
	})

	res, err := Adapt(h)(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/.netlify/functions/graphql",
		QueryStringParameters: map[string]string{"a": "1"},
		Headers:               map[string]string{"Content-Type": "application/json", "Cookie": "fauna-token=fnUser"},
		Body:                  base64.StdEncoding.EncodeToString([]byte(`{"query":"{ loggedIn }"}`)),
		IsBase64Encoded:       true,
		RequestContext: events.APIGatewayProxyRequestContext{
			Identity: events.APIGatewayRequestIdentity{SourceIP: "10.0.0.1"},
		},
	})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, seen.Method)
	require.Equal(t, "/.netlify/functions/graphql", seen.URL.Path)
	require.Equal(t, "1", seen.URL.Query().Get("a"))
	require.Equal(t, "10.0.0.1", seen.RemoteAddr)
	require.Equal(t, `{"query":"{ loggedIn }"}`, seenBody)
	ck, err := seen.Cookie("fauna-token")
	require.NoError(t, err)
	require.Equal(t, "fnUser", ck.Value)

	require.Equal(t, http.StatusAccepted, res.StatusCode)
	require.Equal(t, `{"data":{"loggedIn":true}}`, res.Body)
	require.False(t, res.IsBase64Encoded)
	require.Equal(t, []string{"fauna-token=S1; HttpOnly", "other=x"}, res.MultiValueHeaders["Set-Cookie"])
	require.Equal(t, []string{"application/json"}, res.MultiValueHeaders["Content-Type"])
}

func TestNewRequestMultiValue(t *testing.T) {
	req, err := NewRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:                      http.MethodGet,
		Path:                            "/graphql",
		QueryStringParameters:           map[string]string{"query": "ignored"},
		MultiValueQueryStringParameters: map[string][]string{"query": {"{ loggedIn }"}},
		Headers:                         map[string]string{"Cookie": "a=1"},
		MultiValueHeaders:               map[string][]string{"Cookie": {"a=1", "fauna-token=fnUser"}},
	})
	require.NoError(t, err)
	require.Equal(t, "{ loggedIn }", req.URL.Query().Get("query"))
	require.Len(t, req.Cookies(), 2)
}

func TestNewRequestDefaultsAndBadBody(t *testing.T) {
	req, err := NewRequest(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	require.Equal(t, http.MethodGet, req.Method)
	require.Equal(t, "/", req.URL.Path)

	_, err = NewRequest(context.Background(), events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true})
	require.Error(t, err)
}

func TestAdaptBinaryBody(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0xff, 0xfe})
	})
	res, err := Adapt(h)(context.Background(), events.APIGatewayProxyRequest{Path: "/"})
	require.NoError(t, err)
	require.True(t, res.IsBase64Encoded)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe}), res.Body)
}
