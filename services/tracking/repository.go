package tracking

import (
	"context"
	"time"

	"github.com/piresc/ridertrack/internal/pkg/models"
)

// TrackingRepo defines the append-only location event store
type TrackingRepo interface {
	// InsertEvent persists a scored event. Events are never updated.
	InsertEvent(ctx context.Context, event *models.LocationEvent) error
	// GetLatestEvent returns the last received event of the binding, or nil when there is none
	GetLatestEvent(ctx context.Context, riderUserID, deviceID string) (*models.LocationEvent, error)
}

// LastEventCache is the key-value store fronting the latest event lookup
type LastEventCache interface {
	// Get returns nil, nil on a miss
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
