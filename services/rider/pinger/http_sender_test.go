package pinger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/piresc/ridertrack/internal/pkg/circuitbreaker"
	httpclient "github.com/piresc/ridertrack/internal/pkg/http"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingRequest() models.PingRequest {
	return PingRequest(models.Fix{TimestampMs: 1700000000000, Lat: 19.0760, Lng: 72.8777}, "dev1")
}

func TestHTTPSender_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PingPath, r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1700000000000), body["tsMs"])
		assert.Equal(t, "dev1", body["deviceId"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted":true,"serverTsMs":1700000000500,"fraudSignals":["mocked"],"fraudScore":35}`))
	}))
	defer server.Close()

	sender := NewHTTPSender(httpclient.NewClient(server.URL, time.Second), nil)

	resp, err := sender.Send(context.Background(), Session{Token: "token-1", DeviceID: "dev1"}, pingRequest())

	require.NoError(t, err)
	assert.True(t, resp.Accepted)
	assert.Equal(t, 35, resp.FraudScore)
	assert.Equal(t, []string{"mocked"}, resp.FraudSignals)
}

func TestHTTPSender_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false,"error":"Invalid token","code":401}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"success":false,"error":"failed to record location","code":500}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			sender := NewHTTPSender(httpclient.NewClient(server.URL, time.Second), nil)

			resp, err := sender.Send(context.Background(), Session{Token: "t"}, pingRequest())

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrPingFailed)
		})
	}
}

func TestHTTPSender_Unreachable(t *testing.T) {
	sender := NewHTTPSender(httpclient.NewClient("http://127.0.0.1:1", time.Second), nil)

	_, err := sender.Send(context.Background(), Session{Token: "t"}, pingRequest())

	assert.ErrorIs(t, err, ErrPingFailed)
}

func TestHTTPSender_BreakerShedsPings(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:             "tracking-api",
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		IsFailure:        IsServerFailure,
	}, nil)
	sender := NewHTTPSender(httpclient.NewClient(server.URL, time.Second), breaker)

	for i := 0; i < 5; i++ {
		_, err := sender.Send(context.Background(), Session{Token: "t"}, pingRequest())
		assert.ErrorIs(t, err, ErrPingFailed)
	}

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())
}

func TestIsServerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "client error", err: &utils.StatusError{StatusCode: http.StatusUnauthorized}, want: false},
		{name: "server error", err: &utils.StatusError{StatusCode: http.StatusServiceUnavailable}, want: true},
		{name: "transport error", err: errors.New("connection refused"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsServerFailure(tt.err))
		})
	}
}
