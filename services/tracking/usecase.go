package tracking

import (
	"context"

	"github.com/piresc/ridertrack/internal/pkg/models"
)

// TrackingUC defines the ping ingestion business logic
type TrackingUC interface {
	// IngestPing scores and stores one ping of the authenticated rider
	IngestPing(ctx context.Context, principal models.Principal, req *models.PingRequest) (*models.PingResponse, error)
}
