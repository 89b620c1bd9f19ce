// client/graphql.client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/gqlerror"

	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
)

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is a GraphQL-over-HTTP response body. Data is kept raw so the
// gateway can copy remote results without re-encoding them.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors gqlerror.List   `json:"errors,omitempty"`
}

// RemoteError is returned by typed calls (login, logout) when the backend
// answered but reported GraphQL errors.
type RemoteError struct {
	Errors gqlerror.List
}

func (e *RemoteError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, gerr := range e.Errors {
		msgs = append(msgs, gerr.Message)
	}
	return "remote errors: " + strings.Join(msgs, "; ")
}

func (e *RemoteError) Unwrap() error {
	return domainErr.ErrRemote
}

// Helper function to turn an HTTP status into a domain error
func handleHTTPError(status int, serviceName string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Wrapf(domainErr.ErrUnauthorized, "%s rejected the secret (status %d)", serviceName, status)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return errors.Wrapf(domainErr.ErrBackendUnavailable, "%s returned status %d", serviceName, status)
	default:
		return errors.Errorf("unexpected status %d from %s", status, serviceName)
	}
}

// GraphQLClient talks to the hosted GraphQL endpoint. Every call carries
// the caller's secret as a bearer token.
type GraphQLClient struct {
	endpoint string
	http     *http.Client
}

func NewGraphQLClient(endpoint string, httpClient *http.Client) *GraphQLClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GraphQLClient{endpoint: endpoint, http: httpClient}
}

// Do sends req with the given secret. Transport failures and 5xx statuses
// wrap ErrBackendUnavailable; GraphQL errors in a decodable body are returned
// inside the Response, not as an error.
func (c *GraphQLClient) Do(ctx context.Context, secret string, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding graphql request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "error building graphql request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if secret != "" {
		httpReq.Header.Set("Authorization", "Bearer "+secret)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(domainErr.ErrBackendUnavailable, "graphql endpoint: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(domainErr.ErrBackendUnavailable, "reading graphql response: %v", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, handleHTTPError(resp.StatusCode, "graphql endpoint")
	}

	out := &Response{}
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, handleHTTPError(resp.StatusCode, "graphql endpoint")
		}
		return nil, errors.Wrap(err, "error decoding graphql response")
	}
	if resp.StatusCode != http.StatusOK && len(out.Errors) == 0 {
		return nil, handleHTTPError(resp.StatusCode, "graphql endpoint")
	}
	return out, nil
}
