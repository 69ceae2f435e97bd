package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/ridertrack/internal/pkg/metrics"
	"github.com/piresc/ridertrack/internal/pkg/middleware"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/services/tracking"
	httpHandler "github.com/piresc/ridertrack/services/tracking/handler/http"
)

// HTTPHandler combines all handlers of the tracking service
type HTTPHandler struct {
	trackingHTTP *httpHandler.TrackingHandler
	cfg          *models.Config
	metrics      *metrics.TrackingMetrics
}

// NewHTTPHandler creates a new combined handler. m may be nil.
func NewHTTPHandler(trackingUC tracking.TrackingUC, cfg *models.Config, m *metrics.TrackingMetrics) *HTTPHandler {
	return &HTTPHandler{
		trackingHTTP: httpHandler.NewTrackingHandler(trackingUC),
		cfg:          cfg,
		metrics:      m,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *HTTPHandler) RegisterRoutes(e *echo.Echo) {
	// Rider routes (JWT required)
	var onReject func()
	if h.metrics != nil {
		onReject = func() { h.metrics.ObservePing(metrics.ResultUnauthorized) }
	}
	rider := e.Group("/api/v1/rider", middleware.JWTAuthMiddleware(h.cfg.JWT, onReject))
	rider.POST("/location/ping", h.trackingHTTP.Ping)
}
