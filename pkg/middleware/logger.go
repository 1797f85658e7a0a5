package middleware

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Logger writes one access log entry per request. Handler errors are rendered first so the
// logged status is the one the client sees. Server errors log at error level and client
// errors at warn.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			latency := time.Since(start)

			req := c.Request()
			res := c.Response()
			ctx := req.Context()

			entry := logger.WithContext(ctx).WithFields(map[string]any{
				"request_id":    context.GetRequestID(ctx),
				"trace_id":      tracing.GetTraceID(ctx),
				"span_id":       tracing.GetSpanID(ctx),
				"method":        context.GetMethod(ctx),
				"uri":           req.RequestURI,
				"route":         context.GetRoute(ctx),
				"status":        res.Status,
				"remote_ip":     context.GetRemoteIP(ctx),
				"user_agent":    req.UserAgent(),
				"latency_ms":    latency.Milliseconds(),
				"request_size":  req.ContentLength,
				"response_size": res.Size,
			})

			switch {
			case res.Status >= http.StatusInternalServerError:
				entry.Error("Request")
			case res.Status >= http.StatusBadRequest:
				entry.Warn("Request")
			default:
				entry.Info("Request")
			}

			return nil
		}
	}
}
