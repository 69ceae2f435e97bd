package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/services/tracking"
)

// CachedRepo fronts a TrackingRepo with a write-through LastEventCache.
// The store stays authoritative: cache failures are logged and fall back to it.
type CachedRepo struct {
	store tracking.TrackingRepo
	cache tracking.LastEventCache
	ttl   time.Duration
}

// NewCachedRepository wraps store with cache
func NewCachedRepository(store tracking.TrackingRepo, cache tracking.LastEventCache, ttl time.Duration) *CachedRepo {
	return &CachedRepo{store: store, cache: cache, ttl: ttl}
}

// InsertEvent writes to the store, then refreshes the cached latest event
func (r *CachedRepo) InsertEvent(ctx context.Context, event *models.LocationEvent) error {
	if err := r.store.InsertEvent(ctx, event); err != nil {
		return err
	}
	r.put(ctx, event)
	return nil
}

// GetLatestEvent serves from the cache and loads through on a miss
func (r *CachedRepo) GetLatestEvent(ctx context.Context, riderUserID, deviceID string) (*models.LocationEvent, error) {
	key := CacheKey(riderUserID, deviceID)

	data, err := r.cache.Get(ctx, key)
	if err != nil {
		logger.WarnCtx(ctx, "Last event cache read failed",
			logger.String("key", key),
			logger.Err(err))
	}
	if data != nil {
		var event models.LocationEvent
		if err := json.Unmarshal(data, &event); err == nil {
			return &event, nil
		}
		logger.WarnCtx(ctx, "Discarding undecodable cached event", logger.String("key", key))
	}

	event, err := r.store.GetLatestEvent(ctx, riderUserID, deviceID)
	if err != nil {
		return nil, err
	}
	if event != nil {
		r.put(ctx, event)
	}
	return event, nil
}

func (r *CachedRepo) put(ctx context.Context, event *models.LocationEvent) {
	key := CacheKey(event.RiderUserID, event.DeviceID)
	data, err := json.Marshal(event)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to encode event for cache", logger.String("key", key), logger.Err(err))
		return
	}
	if err := r.cache.Put(ctx, key, data, r.ttl); err != nil {
		logger.WarnCtx(ctx, "Last event cache write failed",
			logger.String("key", key),
			logger.Err(err))
	}
}
