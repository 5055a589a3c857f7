package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/PhilippGackstatter/engineio/eioerr"
)

// TimeoutMiddleware bounds a single HTTP round trip to d. An *http.Request
// carries its own context, so racing a goroutine against a timer isn't
// needed here: attaching a deadline to the request context is enough for
// http.Client.Do to return as soon as it expires.
func TimeoutMiddleware(d time.Duration) RoundTripMiddleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			if d <= 0 {
				return next(req)
			}
			ctx, cancel := context.WithTimeout(req.Context(), d)
			defer cancel()
			resp, err := next(req.WithContext(ctx))
			if err != nil {
				if ctx.Err() != nil {
					return nil, eioerr.Transportf(err, "request to %s timed out after %s", req.URL.Path, d)
				}
				return nil, err
			}
			return resp, nil
		}
	}
}
