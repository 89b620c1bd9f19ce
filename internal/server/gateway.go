// Package server turns the composed schema into an http.Handler. The schema
// is built on first use and reused for every later request.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Tanmoy095/authgate/graph"
	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
	"github.com/Tanmoy095/authgate/internal/metrics"
	"github.com/Tanmoy095/authgate/internal/pkg/logger"
	"github.com/Tanmoy095/authgate/internal/session"
)

const RequestIDHeader = "X-Request-Id"

// Options configures a Gateway.
type Options struct {
	LoadSchema    SchemaLoader
	Backend       graph.Backend
	Codec         session.Codec
	Logger        *zap.Logger
	LoggedInDelay time.Duration
	Introspection bool
}

// Gateway serves GraphQL requests against the composed schema.
type Gateway struct {
	opts  Options
	log   *zap.Logger
	group singleflight.Group
	srv   atomic.Pointer[handler.Server]
}

func NewGateway(opts Options) *Gateway {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{opts: opts, log: log}
}

// Warm builds the schema ahead of the first request. A failure is not
// cached; the next request tries again.
func (g *Gateway) Warm(ctx context.Context) error {
	_, err := g.server(ctx)
	return err
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, requestID)

	log := g.log.With(zap.String("request_id", requestID))
	ctx := logger.ToContext(r.Context(), log)

	rc := graph.NewRequestContext(r)
	fw := newFlushingWriter(w, rc.Pending)
	defer fw.finish()

	srv, err := g.server(ctx)
	if err != nil {
		log.Error("gateway schema unavailable", zap.Error(err))
		writeError(fw, http.StatusServiceUnavailable, domainErr.ErrSchemaUnavailable.Error())
		return
	}
	srv.ServeHTTP(fw, r.WithContext(graph.WithRequestContext(ctx, rc)))
}

// server returns the built handler. Concurrent first callers share one build.
func (g *Gateway) server(ctx context.Context) (*handler.Server, error) {
	if srv := g.srv.Load(); srv != nil {
		return srv, nil
	}
	v, err, _ := g.group.Do("schema", func() (any, error) {
		if srv := g.srv.Load(); srv != nil {
			return srv, nil
		}
		// one caller going away must not fail the build for the others
		srv, err := g.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		g.srv.Store(srv)
		return srv, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*handler.Server), nil
}

func (g *Gateway) build(ctx context.Context) (*handler.Server, error) {
	if g.opts.LoadSchema == nil {
		return nil, errors.Wrap(domainErr.ErrSchemaUnavailable, "no schema loader configured")
	}
	start := time.Now()
	src, err := g.opts.LoadSchema(ctx)
	if err != nil {
		return nil, errors.Wrapf(domainErr.ErrSchemaUnavailable, "load remote schema: %v", err)
	}
	composed, err := graph.Compose(src, graph.FilteredRootFields)
	if err != nil {
		return nil, errors.Wrapf(domainErr.ErrSchemaUnavailable, "compose schema: %v", err)
	}

	resolver := graph.NewResolver(g.opts.Backend, g.opts.Codec, graph.WithLoggedInDelay(g.opts.LoggedInDelay))
	srv := handler.New(graph.NewExecutableSchema(composed, resolver.FieldResolvers(), g.opts.Backend))
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.SetQueryCache(lru.New[*ast.QueryDocument](1000))
	if g.opts.Introspection {
		srv.Use(extension.Introspection{})
	}
	srv.Use(extension.AutomaticPersistedQuery{Cache: lru.New[string](100)})
	srv.SetRecoverFunc(func(ctx context.Context, v any) error {
		logger.FromContext(ctx).Error("resolver panic", zap.Any("panic", v), zap.Stack("stack"))
		return gqlerror.Errorf("internal server error")
	})
	srv.AroundOperations(instrumentOperation)

	g.log.Info("gateway schema ready",
		zap.Int("types", len(composed.Types)),
		zap.Duration("took", time.Since(start)))
	return srv, nil
}

func instrumentOperation(ctx context.Context, next graphql.OperationHandler) graphql.ResponseHandler {
	opType := "unknown"
	if op := graphql.GetOperationContext(ctx).Operation; op != nil {
		opType = string(op.Operation)
	}
	start := time.Now()
	responses := next(ctx)
	return func(ctx context.Context) *graphql.Response {
		resp := responses(ctx)
		if resp == nil {
			return nil
		}
		outcome := "ok"
		if len(resp.Errors) > 0 {
			outcome = "error"
		}
		metrics.Operations.WithLabelValues(opType, outcome).Inc()
		metrics.OperationDuration.WithLabelValues(opType).Observe(time.Since(start).Seconds())
		return resp
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(graphql.Response{Errors: gqlerror.List{{Message: message}}})
}
