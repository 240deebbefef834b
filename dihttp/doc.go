/*
Package dihttp provides HTTP middleware that creates a request [di.Scope] for each request.

Example:

	package main

	import (
		"log/slog"
		"net/http"

		"github.com/sectrean/inject-kit"
		"github.com/sectrean/inject-kit/dicontext"
		"github.com/sectrean/inject-kit/dihttp"
	)

	func main() {
		c, err := di.NewContainer(
			di.WithBinding(NewDatabasePool, di.As[DatabasePool]()),
			di.WithBinding(NewUserModel, di.RequestLifetime),
			dihttp.WithRequestBinding(),
		)
		if err != nil {
			slog.Error("error creating container", "error", err)
			return
		}

		// Create a new request scope middleware
		scopeMiddleware, err := dihttp.NewRequestScopeMiddleware(c)
		if err != nil {
			slog.Error("error creating middleware", "error", err)
			return
		}

		// Create a handler function
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			users := dicontext.MustResolve[*UserModel](r.Context())

			users.HandleRequest(w, r)
		})

		// Wrap the handler with the scope middleware
		http.Handle("/", scopeMiddleware(handler))
		_ = http.ListenAndServe(":8080", nil)
	}
*/
package dihttp
