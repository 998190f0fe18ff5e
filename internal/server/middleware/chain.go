// Package middleware wraps the relay handler with request scoped concerns.
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain combines mws into a single Middleware.
// Chain(a, b)(h) results in a(b(h)), so a is the outermost.
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
