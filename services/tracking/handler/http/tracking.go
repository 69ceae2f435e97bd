package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/ridertrack/internal/pkg/lock"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/middleware"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/internal/utils"
	"github.com/piresc/ridertrack/services/tracking"
)

// TrackingHandler handles rider location pings
type TrackingHandler struct {
	trackingUC tracking.TrackingUC
}

// NewTrackingHandler creates a new tracking HTTP handler
func NewTrackingHandler(trackingUC tracking.TrackingUC) *TrackingHandler {
	return &TrackingHandler{
		trackingUC: trackingUC,
	}
}

// Ping ingests one location ping of the authenticated rider
func (h *TrackingHandler) Ping(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "Authentication required")
	}

	var req models.PingRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Failed to bind ping request",
			logger.String("user_id", principal.UserID),
			logger.Err(err))
		return utils.BadRequestResponse(c, "invalid request body")
	}

	resp, err := h.trackingUC.IngestPing(c.Request().Context(), principal, &req)
	if err != nil {
		return h.handleError(c, principal, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *TrackingHandler) handleError(c echo.Context, principal models.Principal, err error) error {
	var verr *tracking.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.BadRequestResponse(c, verr.Error())
	case errors.Is(err, tracking.ErrUnauthenticated):
		return utils.UnauthorizedResponse(c, "Authentication required")
	case errors.Is(err, lock.ErrLockTimeout):
		logger.Warn("Binding busy, ping not scored",
			logger.String("user_id", principal.UserID),
			logger.Err(err))
		return utils.ServiceUnavailableResponse(c, "binding busy, retry later")
	}

	logger.Error("Failed to ingest ping",
		logger.String("user_id", principal.UserID),
		logger.String("device_id", principal.DeviceID),
		logger.Err(err))
	return utils.InternalServerErrorResponse(c, "failed to record location")
}
