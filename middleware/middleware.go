// Package middleware implements the onion-model middleware chain for the
// engine.io client's outbound HTTP calls.
//
// Middleware wraps one HTTP round trip (request → response) to add
// cross-cutting concerns — timeout enforcement, structured logging, retry —
// without the handshake/poll/write call sites needing to know about any of
// them. This generalizes the request/response shape of an RPC middleware
// chain to a single *http.Request → *http.Response exchange.
//
// Onion model execution order:
//
//	Chain(A, B, C)(next)  →  A(B(C(next)))
//
//	Request:   A.before → B.before → C.before → next
//	Response:  next → C.after → B.after → A.after
package middleware

import "net/http"

// RoundTripFunc performs one HTTP round trip.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

// RoundTripMiddleware wraps a RoundTripFunc with additional behavior.
type RoundTripMiddleware func(next RoundTripFunc) RoundTripFunc

// Chain composes middlewares into one, built right-to-left so the first
// middleware listed is the outermost layer (runs first on the way in, last
// on the way out).
func Chain(mw ...RoundTripMiddleware) RoundTripMiddleware {
	return func(next RoundTripFunc) RoundTripFunc {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}
