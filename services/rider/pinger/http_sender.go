package pinger

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/piresc/ridertrack/internal/pkg/circuitbreaker"
	httpclient "github.com/piresc/ridertrack/internal/pkg/http"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/internal/utils"
)

// PingPath is the ingestion endpoint
const PingPath = "/api/v1/rider/location/ping"

// HTTPSender posts pings with the session bearer token. An optional breaker
// sheds pings while the service keeps failing.
type HTTPSender struct {
	client  *httpclient.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewHTTPSender creates a sender. breaker may be nil.
func NewHTTPSender(client *httpclient.Client, breaker *circuitbreaker.CircuitBreaker) *HTTPSender {
	return &HTTPSender{client: client, breaker: breaker}
}

// Send posts req. Every failure is returned wrapping ErrPingFailed.
func (s *HTTPSender) Send(ctx context.Context, session Session, req models.PingRequest) (*models.PingResponse, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + session.Token,
	}

	var resp models.PingResponse
	call := func(ctx context.Context) error {
		return s.client.PostJSON(ctx, PingPath, headers, req, &resp)
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPingFailed, err)
	}
	return &resp, nil
}

// IsServerFailure reports whether err means the service itself is unhealthy.
// Client errors such as an expired token do not count.
func IsServerFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
