package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPanicRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		panicValue interface{}
	}{
		{name: "string panic", panicValue: "test panic message"},
		{name: "error panic", panicValue: errors.New("test error panic")},
		{name: "int panic", panicValue: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			core, logs := observer.New(zapcore.DebugLevel)
			zl := logger.NewFromCore("test", core)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			req.Header.Set(echo.HeaderXRequestID, "req-1")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := PanicRecoveryMiddleware(zl)(func(c echo.Context) error {
				panic(tt.panicValue)
			})

			// Act
			err := h(c)

			// Assert
			assert.NoError(t, err)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])

			require.Equal(t, 1, logs.Len())
			fields := logs.All()[0].ContextMap()
			assert.Equal(t, "req-1", fields["request_id"])
			assert.Equal(t, "/boom", fields["path"])
			assert.NotEmpty(t, fields["stack_trace"])
		})
	}
}

func TestPanicRecoveryMiddleware_NoPanic(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	h := PanicRecoveryMiddleware(logger.NewFromCore("test", core))(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, logs.Len())
}

func TestPanicRecoveryMiddleware_RequiresLogger(t *testing.T) {
	assert.Panics(t, func() { PanicRecoveryMiddleware(nil) })
}
