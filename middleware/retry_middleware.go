package middleware

import (
	"errors"
	"net"
	"net/http"
	"time"
)

// RetryMiddleware retries a round trip on transport-level failures only
// (connection refused, dial timeout, and similar net.Error conditions),
// using exponential backoff. It inspects net.Error rather than matching an
// error message substring, so callers don't need to keep a wrapped-error
// string in sync with a particular transport's wording. A non-nil
// *http.Response (even a non-2xx one) is never retried here — that's a
// protocol-level outcome for the caller to interpret, not a transport
// failure.
//
// Intended for the handshake call site only; the poll and write loops must
// not use this middleware, since their transport failures are meant to
// surface as fatal or be swallowed, never silently retried.
func RetryMiddleware(maxRetries int, baseDelay time.Duration) RoundTripMiddleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			for attempt := 0; attempt < maxRetries; attempt++ {
				if err == nil {
					return resp, nil
				}
				var netErr net.Error
				if !errors.As(err, &netErr) {
					return resp, err
				}
				time.Sleep(baseDelay * time.Duration(1<<attempt))
				resp, err = next(req)
			}
			return resp, err
		}
	}
}
