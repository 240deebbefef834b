package dihttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sectrean/inject-kit"
	"github.com/sectrean/inject-kit/dicontext"
	"github.com/sectrean/inject-kit/internal/errors"
)

// NewRequestScopeMiddleware creates middleware that enters a new request [di.Scope] for each request.
// The scope is exited after the request has been handled, even if the handler panics.
//
// The scope is stored on the request context and can be accessed using [dicontext.Resolver],
// [dicontext.Resolve], [dicontext.MustResolve], or [dicontext.Invoke].
// Use [WithRequestBinding] to bind the current [*http.Request] for request bindings.
//
// Available options:
//   - [WithNewScopeErrorHandler] sets the error handler for when there is an error entering a new scope.
//   - [WithScopeExitErrorHandler] sets the error handler for when there is an error exiting the scope.
func NewRequestScopeMiddleware(
	c *di.Container,
	opts ...RequestScopeMiddlewareOption,
) (func(http.Handler) http.Handler, error) {
	if c == nil {
		return nil, errors.New("dihttp.NewRequestScopeMiddleware: container is nil")
	}

	mw := &requestScopeMiddleware{
		c:               c,
		newScopeHandler: defaultNewScopeErrorHandler,
		exitHandler:     defaultScopeExitErrorHandler,
	}

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyRequestScopeMiddleware(mw))
	}
	if err := errs.Wrap("dihttp.NewRequestScopeMiddleware"); err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mw.serveHTTP(w, r, next)
		})
	}, nil
}

// NewScopeErrorHandler is a function that writes an error response to the client.
// This is called by the middleware when there is an error entering a new request scope.
//
// The default handler logs the error to [slog.Default] and writes a 500 Internal Server Error response.
type NewScopeErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultNewScopeErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error entering HTTP request scope", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// ScopeExitErrorHandler is a function that handles errors when exiting the request scope
// after the request has completed.
//
// The default handler logs the error to [slog.Default].
type ScopeExitErrorHandler = func(r *http.Request, err error)

func defaultScopeExitErrorHandler(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error exiting HTTP request scope", "error", err)
}

type requestScopeMiddleware struct {
	c               *di.Container
	newScopeHandler NewScopeErrorHandler
	exitHandler     ScopeExitErrorHandler
}

func (m *requestScopeMiddleware) serveHTTP(w http.ResponseWriter, r *http.Request, next http.Handler) {
	scope, err := m.c.NewScope()
	if err != nil {
		m.newScopeHandler(w, r, err)
		return
	}

	ctx, holder := withRequestHolder(r.Context())
	ctx = dicontext.WithResolver(ctx, scope)
	r = r.WithContext(ctx)
	holder.r = r

	defer func() {
		// Instances are closed even if the request was canceled
		exitErr := scope.Exit(context.WithoutCancel(ctx))
		if exitErr != nil {
			m.exitHandler(r, exitErr)
		}
	}()

	next.ServeHTTP(w, r)
}
