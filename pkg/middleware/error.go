package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/context"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// Error renders errors as ErrorResponse. With redact set, server faults carry their title as
// the message instead of the driver text.
func Error(logger ectologger.Logger, redact bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		// Check if the response is already committed
		if c.Response().Committed {
			return
		}

		code, title, message := classify(err, redact)

		entry := logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"status": code,
		})
		if code >= http.StatusInternalServerError {
			entry.Error("api is returning an error")
		} else {
			entry.Debug("api is returning an error")
		}

		resp := ErrorResponse{
			Error:     title,
			Message:   message,
			RequestID: context.GetRequestID(ctx),
			TraceID:   tracing.GetTraceID(ctx),
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func classify(err error, redact bool) (int, string, string) {
	if appErr, ok := apperrors.As(err); ok {
		message := appErr.Message
		if redact && appErr.IsServerFault() {
			message = appErr.Title
		}
		return appErr.StatusCode(), appErr.Title, message
	}

	if httperror.IsHTTPError(err) {
		code := httperror.GetStatusCode(err)
		return code, http.StatusText(code), httperror.ToHTTPError(err).Error()
	}

	if he, ok := err.(*echo.HTTPError); ok {
		message := http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
		return he.Code, http.StatusText(he.Code), message
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), "Internal Server Error"
}
