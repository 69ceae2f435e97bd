package tracking

import (
	"context"

	"github.com/piresc/ridertrack/internal/pkg/models"
)

// TrackingGW defines the outbound event gateway
type TrackingGW interface {
	// PublishScoredEvent fans a persisted event out to downstream consumers
	PublishScoredEvent(ctx context.Context, event *models.LocationEvent) error
}
