package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/context"
)

// Context records the inbound request on the request context. A client supplied X-Request-Id
// is kept, otherwise a new one is generated; either way it is echoed in the response.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := context.WithRequest(req.Context(), context.Request{
				ID:       requestID,
				Method:   req.Method,
				Route:    c.Path(),
				RemoteIP: c.RealIP(),
			})
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
