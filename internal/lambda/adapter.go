// Package lambda adapts an http.Handler to API Gateway proxy events so the
// gateway can run as a serverless function.
package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// Handler is the function signature lambda.Start expects.
type Handler func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Adapt runs h for each proxy event.
func Adapt(h http.Handler) Handler {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		req, err := NewRequest(ctx, event)
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return NewResponse(rec), nil
	}
}

// NewRequest converts a proxy event into an inbound HTTP request.
func NewRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, errors.Wrap(err, "decode event body")
		}
		body = decoded
	}

	path := event.Path
	if path == "" {
		path = "/"
	}
	u := &url.URL{Path: path, RawQuery: eventQuery(event).Encode()}

	method := event.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request from event")
	}

	for key, value := range event.Headers {
		req.Header.Set(key, value)
	}
	for key, values := range event.MultiValueHeaders {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Host = req.Header.Get("Host")
	req.RemoteAddr = event.RequestContext.Identity.SourceIP
	req.RequestURI = u.RequestURI()
	return req, nil
}

func eventQuery(event events.APIGatewayProxyRequest) url.Values {
	q := url.Values{}
	for key, value := range event.QueryStringParameters {
		q.Set(key, value)
	}
	for key, values := range event.MultiValueQueryStringParameters {
		q[key] = append([]string(nil), values...)
	}
	return q
}

// NewResponse converts a recorded response into a proxy response. Each
// Set-Cookie line stays a separate header value.
func NewResponse(rec *httptest.ResponseRecorder) events.APIGatewayProxyResponse {
	res := rec.Result()
	headers := map[string][]string{}
	for key, values := range res.Header {
		headers[key] = append([]string(nil), values...)
	}

	body := rec.Body.Bytes()
	out := events.APIGatewayProxyResponse{
		StatusCode:        res.StatusCode,
		MultiValueHeaders: headers,
	}
	if utf8.Valid(body) {
		out.Body = string(body)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(body)
		out.IsBase64Encoded = true
	}
	return out
}
