package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/utils"
)

// PanicRecoveryMiddleware turns handler panics into a logged 500
func PanicRecoveryMiddleware(zapLogger *logger.ZapLogger) echo.MiddlewareFunc {
	if zapLogger == nil {
		panic("PanicRecoveryMiddleware requires a logger")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				handlePanic(c, r, zapLogger)
				err = nil
			}()

			return next(c)
		}
	}
}

func handlePanic(c echo.Context, r interface{}, zapLogger *logger.ZapLogger) {
	stack := string(debug.Stack())
	req := c.Request()

	userID := "anonymous"
	if uid := c.Get("user_id"); uid != nil {
		userID = fmt.Sprintf("%v", uid)
	}
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = req.Header.Get(echo.HeaderXRequestID)
	}

	txn := newrelic.FromContext(req.Context())
	if txn != nil {
		txn.NoticeError(newrelic.Error{
			Message: fmt.Sprintf("Panic recovered: %v", r),
			Class:   "PanicError",
			Attributes: map[string]interface{}{
				"panic.type":  fmt.Sprintf("%T", r),
				"http.method": req.Method,
				"http.path":   req.URL.Path,
				"request_id":  requestID,
			},
		})
	}

	zapLogger.WithNewRelicContext(txn).Error("Panic recovered during request processing",
		logger.Any("panic_value", r),
		logger.String("panic_type", fmt.Sprintf("%T", r)),
		logger.String("stack_trace", stack),
		logger.String("method", req.Method),
		logger.String("path", req.URL.Path),
		logger.String("client_ip", c.RealIP()),
		logger.String("user_id", userID),
		logger.String("request_id", requestID),
	)

	if !c.Response().Committed {
		_ = utils.InternalServerErrorResponse(c, "An unexpected error occurred while processing your request")
	}
}
