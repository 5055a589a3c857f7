package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware records method, path, duration, and outcome for each
// outbound HTTP call. The sid query parameter, if present, is redacted to
// its first 6 characters so full session tokens never land in logs.
func LoggingMiddleware(logger *zap.Logger) RoundTripMiddleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			duration := time.Since(start)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("sid", redactSID(req.URL.Query().Get("sid"))),
				zap.Duration("duration", duration),
			}
			if err != nil {
				logger.Warn("engineio http round trip failed", append(fields, zap.Error(err))...)
				return resp, err
			}
			logger.Debug("engineio http round trip", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		}
	}
}

func redactSID(sid string) string {
	if len(sid) <= 6 {
		return sid
	}
	return sid[:6] + "…"
}
