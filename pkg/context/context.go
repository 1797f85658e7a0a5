// Package context carries what the HTTP middleware learned about the inbound request.
package context

import "context"

type requestKey struct{}

// Request identifies the inbound HTTP request a context belongs to.
type Request struct {
	ID     string
	Method string
	// Route is the matched route template (e.g. /api/tools/:id), not the raw path.
	Route    string
	RemoteIP string
}

func WithRequest(ctx context.Context, req Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

// RequestFrom returns the request stored on ctx, the zero Request when there is none.
func RequestFrom(ctx context.Context) Request {
	req, _ := ctx.Value(requestKey{}).(Request)
	return req
}

func GetRequestID(ctx context.Context) string {
	return RequestFrom(ctx).ID
}

func GetMethod(ctx context.Context) string {
	return RequestFrom(ctx).Method
}

func GetRoute(ctx context.Context) string {
	return RequestFrom(ctx).Route
}

func GetRemoteIP(ctx context.Context) string {
	return RequestFrom(ctx).RemoteIP
}
