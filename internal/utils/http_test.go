package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := SuccessResponse(c, http.StatusOK, "ok", map[string]interface{}{"id": "1"})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, "ok", response.Message)
	assert.Equal(t, map[string]interface{}{"id": "1"}, response.Data)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		respond  func(c echo.Context) error
		status   int
		expected string
	}{
		{
			name:     "bad request",
			respond:  func(c echo.Context) error { return BadRequestResponse(c, "lat is required") },
			status:   http.StatusBadRequest,
			expected: "lat is required",
		},
		{
			name:     "unauthorized default",
			respond:  func(c echo.Context) error { return UnauthorizedResponse(c, "") },
			status:   http.StatusUnauthorized,
			expected: "Unauthorized",
		},
		{
			name:     "internal default",
			respond:  func(c echo.Context) error { return InternalServerErrorResponse(c, "") },
			status:   http.StatusInternalServerError,
			expected: "Internal server error",
		},
		{
			name:     "service unavailable",
			respond:  func(c echo.Context) error { return ServiceUnavailableResponse(c, "db down") },
			status:   http.StatusServiceUnavailable,
			expected: "db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			assert.NoError(t, tt.respond(c))
			assert.Equal(t, tt.status, rec.Code)

			var response ErrorResponse
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.False(t, response.Success)
			assert.Equal(t, tt.expected, response.Error)
			assert.Equal(t, tt.status, response.Code)
		})
	}
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "envelope", body: `{"success":false,"error":"Invalid token","code":401}`, expected: "request failed with status 401: Invalid token"},
		{name: "plain text", body: `upstream timeout`, expected: "request failed with status 401"},
		{name: "empty", body: ``, expected: "request failed with status 401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseErrorResponse(http.StatusUnauthorized, []byte(tt.body))
			assert.EqualError(t, err, tt.expected)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		})
	}
}
