package dihttp

import (
	"context"
	"net/http"

	"github.com/sectrean/inject-kit"
	"github.com/sectrean/inject-kit/internal/errors"
)

type requestContextKey struct{}

// requestHolder is set after the request is created with the new context.
type requestHolder struct {
	r *http.Request
}

func withRequestHolder(ctx context.Context) (context.Context, *requestHolder) {
	h := &requestHolder{}
	return context.WithValue(ctx, requestContextKey{}, h), h
}

// Request returns the current [*http.Request] stored on the context by the request scope middleware.
// This is the request passed to the next handler, and its context carries the request scope.
//
// It is used as the provider for [WithRequestBinding].
func Request(ctx context.Context) (*http.Request, error) {
	if h, ok := ctx.Value(requestContextKey{}).(*requestHolder); ok && h.r != nil {
		return h.r, nil
	}

	return nil, errors.New("dihttp.Request: request not found on context")
}

// WithRequestBinding binds the current [*http.Request] with [di.RequestLifetime]
// so it can be a dependency of request bindings.
//
// The request is only available when resolving from a request handled by
// the middleware returned from [NewRequestScopeMiddleware].
func WithRequestBinding() di.ContainerOption {
	return di.WithBinding(Request, di.RequestLifetime)
}
