package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/piresc/ridertrack/internal/pkg/constants"
	"github.com/piresc/ridertrack/internal/pkg/lock"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/metrics"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/internal/pkg/newrelic"
	"github.com/piresc/ridertrack/internal/utils"
	"github.com/piresc/ridertrack/services/tracking"
	"github.com/piresc/ridertrack/services/tracking/fraud"
)

// TrackingUC implements the tracking.TrackingUC interface
type TrackingUC struct {
	repo      tracking.TrackingRepo
	gw        tracking.TrackingGW
	scorer    *fraud.Scorer
	locker    lock.Locker
	metrics   *metrics.TrackingMetrics
	precision uint
	now       func() int64
}

// NewTrackingUC creates a new tracking use case. A nil locker leaves
// bindings unserialized and nil metrics disables instrumentation.
func NewTrackingUC(
	cfg *models.Config,
	repo tracking.TrackingRepo,
	gw tracking.TrackingGW,
	locker lock.Locker,
	m *metrics.TrackingMetrics,
) *TrackingUC {
	if locker == nil {
		locker = lock.Noop{}
	}
	precision := cfg.Tracking.GeohashPrecision
	if precision == 0 || precision > 12 {
		precision = 9
	}
	return &TrackingUC{
		repo:      repo,
		gw:        gw,
		scorer:    fraud.NewScorer(cfg.Fraud),
		locker:    locker,
		metrics:   m,
		precision: precision,
		now:       models.NowMillis,
	}
}

// IngestPing validates, scores and persists one ping. High scores are
// recorded, never rejected.
func (uc *TrackingUC) IngestPing(ctx context.Context, principal models.Principal, req *models.PingRequest) (*models.PingResponse, error) {
	if principal.UserID == "" {
		uc.observe(metrics.ResultUnauthorized)
		return nil, tracking.ErrUnauthenticated
	}

	fix, err := tracking.FixFromRequest(req)
	if err != nil {
		uc.observe(metrics.ResultInvalid)
		return nil, err
	}
	deviceID, err := tracking.ResolveDeviceID(principal, req)
	if err != nil {
		uc.observe(metrics.ResultInvalid)
		return nil, err
	}

	event, err := uc.scoreAndStore(ctx, principal, deviceID, strings.TrimSpace(req.DeviceID), fix)
	if err != nil {
		uc.observe(metrics.ResultError)
		return nil, err
	}

	if err := uc.gw.PublishScoredEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish scored location event",
			logger.String("event_id", event.ID),
			logger.Err(err))
	}

	uc.observe(metrics.ResultAccepted)
	if uc.metrics != nil {
		uc.metrics.ObserveScore(event.FraudScore, event.FraudSignals)
	}
	newrelic.AddAttribute(ctx, "fraud.score", event.FraudScore)

	if event.FraudScore > 0 {
		logger.InfoCtx(ctx, "Ping scored with fraud signals",
			logger.String("rider_user_id", event.RiderUserID),
			logger.String("device_id", event.DeviceID),
			logger.Int("fraud_score", event.FraudScore),
			logger.Strings("fraud_signals", event.FraudSignals))
	}

	return &models.PingResponse{
		Accepted:     true,
		ServerTsMs:   event.ServerReceivedAtMs,
		FraudSignals: event.FraudSignals,
		FraudScore:   event.FraudScore,
	}, nil
}

// scoreAndStore runs load, score and insert while holding the binding lock
func (uc *TrackingUC) scoreAndStore(ctx context.Context, principal models.Principal, deviceID, bodyDeviceID string, fix models.Fix) (*models.LocationEvent, error) {
	unlock, err := uc.locker.Lock(ctx, fmt.Sprintf(constants.KeyBindingLock, principal.UserID, deviceID))
	if err != nil {
		return nil, fmt.Errorf("failed to acquire binding lock: %w", err)
	}
	defer unlock()

	prev, err := newrelic.WithSegmentAndReturn(ctx, "tracking.GetLatestEvent", func() (*models.LocationEvent, error) {
		return uc.repo.GetLatestEvent(ctx, principal.UserID, deviceID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load previous event: %w", err)
	}

	serverNow := uc.now()
	result := uc.scorer.Score(prev, fix, principal.DeviceID, bodyDeviceID, serverNow)

	event := &models.LocationEvent{
		ID:                 uuid.NewString(),
		RiderUserID:        principal.UserID,
		DeviceID:           deviceID,
		Fix:                fix,
		Geohash:            utils.EncodeFix(fix, uc.precision),
		FraudScore:         result.Score,
		FraudSignals:       result.SignalNames(),
		Meta:               result.Meta,
		ServerReceivedAtMs: serverNow,
	}

	err = newrelic.WithSegment(ctx, "tracking.InsertEvent", func() error {
		return uc.repo.InsertEvent(ctx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store location event: %w", err)
	}
	return event, nil
}

func (uc *TrackingUC) observe(result string) {
	if uc.metrics != nil {
		uc.metrics.ObservePing(result)
	}
}
