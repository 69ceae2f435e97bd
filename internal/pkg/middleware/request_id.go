package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/piresc/ridertrack/internal/pkg/requestcontext"
)

// RequestIDMiddleware propagates X-Request-ID, generating one when absent. The
// id is also put on the request context for the context aware loggers.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			c.Set("request_id", id)
			req := c.Request()
			c.SetRequest(req.WithContext(requestcontext.WithRequestID(req.Context(), id)))
			return next(c)
		}
	}
}
