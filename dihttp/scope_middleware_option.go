package dihttp

import (
	"github.com/sectrean/inject-kit/internal/errors"
)

// RequestScopeMiddlewareOption is used to configure the middleware when calling [NewRequestScopeMiddleware].
type RequestScopeMiddlewareOption interface {
	applyRequestScopeMiddleware(*requestScopeMiddleware) error
}

type requestScopeMiddlewareOption func(*requestScopeMiddleware) error

func (o requestScopeMiddlewareOption) applyRequestScopeMiddleware(m *requestScopeMiddleware) error {
	return o(m)
}

// WithNewScopeErrorHandler sets the error handler for when there is an error entering a new scope.
func WithNewScopeErrorHandler(h NewScopeErrorHandler) RequestScopeMiddlewareOption {
	return requestScopeMiddlewareOption(func(m *requestScopeMiddleware) error {
		if h == nil {
			return errors.New("with new scope error handler: h is nil")
		}

		m.newScopeHandler = h
		return nil
	})
}

// WithScopeExitErrorHandler sets the error handler for when there is an error exiting the scope.
func WithScopeExitErrorHandler(h ScopeExitErrorHandler) RequestScopeMiddlewareOption {
	return requestScopeMiddlewareOption(func(m *requestScopeMiddleware) error {
		if h == nil {
			return errors.New("with scope exit error handler: h is nil")
		}

		m.exitHandler = h
		return nil
	})
}
