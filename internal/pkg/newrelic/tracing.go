package newrelic

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middleware starts a transaction per request, or does nothing when app is nil
func Middleware(app *newrelic.Application) echo.MiddlewareFunc {
	if app == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return nrecho.Middleware(app)
}

// TraceHandler names the request transaction and reports returned errors
func TraceHandler(name string, handler echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		txn := nrecho.FromContext(c)
		if txn != nil {
			txn.SetName(name)
		}

		err := handler(c)
		if err != nil && txn != nil {
			txn.NoticeError(err)
		}
		return err
	}
}

// WithSegment runs fn inside a segment of the transaction carried by ctx
func WithSegment(ctx context.Context, name string, fn func() error) error {
	if txn := newrelic.FromContext(ctx); txn != nil {
		defer txn.StartSegment(name).End()
	}
	return fn()
}

// WithSegmentAndReturn is WithSegment for functions returning a value
func WithSegmentAndReturn[T any](ctx context.Context, name string, fn func() (T, error)) (T, error) {
	if txn := newrelic.FromContext(ctx); txn != nil {
		defer txn.StartSegment(name).End()
	}
	return fn()
}

// AddAttribute attaches key=value to the transaction carried by ctx
func AddAttribute(ctx context.Context, key string, value interface{}) {
	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.AddAttribute(key, value)
	}
}
