package graph

import (
	"context"
	"net/http"

	"github.com/Tanmoy095/authgate/internal/session"
)

// RequestContext is the per-request state resolvers read and write: the
// inbound request, the session token it carried, and the pending response
// mutations.
type RequestContext struct {
	Request *http.Request
	Token   string
	Pending *session.Pending
}

type requestContextKey struct{}

// NewRequestContext reads the session token from r and starts an empty
// pending buffer.
func NewRequestContext(r *http.Request) *RequestContext {
	return &RequestContext{
		Request: r,
		Token:   session.TokenFromRequest(r),
		Pending: session.NewPending(),
	}
}

func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// ForContext returns the request state, or an anonymous state with a
// throwaway buffer when none was attached.
func ForContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok && rc != nil {
		return rc
	}
	return &RequestContext{Pending: session.NewPending()}
}
