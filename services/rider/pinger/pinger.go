// Package pinger relays tracker fixes to the tracking service, at most one
// ping per minimum interval. Pings are telemetry: failures are dropped.
package pinger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/services/rider/tracker"
)

// ErrPingFailed marks a ping that did not reach the service
var ErrPingFailed = errors.New("ping failed")

const (
	DefaultMinInterval = 3000 * time.Millisecond
	defaultSendTimeout = 10 * time.Second
)

// Session is the rider session issued by the external auth provider
type Session struct {
	Token    string
	DeviceID string
}

// SessionProvider returns the current session, false when signed out
type SessionProvider interface {
	Session() (Session, bool)
}

// StaticSession always returns the same session
type StaticSession Session

func (s StaticSession) Session() (Session, bool) {
	return Session(s), s.Token != ""
}

// Sender posts one ping
type Sender interface {
	Send(ctx context.Context, session Session, req models.PingRequest) (*models.PingResponse, error)
}

// Result is the scoring feedback of an accepted ping
type Result struct {
	FraudScore   int
	FraudSignals []string
}

// Config holds pinger settings
type Config struct {
	MinInterval time.Duration
	SendTimeout time.Duration
	Dispatcher  Dispatcher
	OnResult    func(Result)
	Now         func() time.Time
}

// Stats counts pinger outcomes
type Stats struct {
	Dispatched int64
	Succeeded  int64
	Dropped    int64
}

// Pinger throttles tracker updates into pings
type Pinger struct {
	sender   Sender
	sessions SessionProvider
	cfg      Config

	mu         sync.Mutex
	lastSentAt time.Time
	lastFix    *models.Fix

	dispatched atomic.Int64
	succeeded  atomic.Int64
	dropped    atomic.Int64
}

// New creates a pinger
func New(sender Sender, sessions SessionProvider, cfg Config) *Pinger {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = &GoDispatcher{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pinger{sender: sender, sessions: sessions, cfg: cfg}
}

// Attach feeds every tracker state change into HandleState
func (p *Pinger) Attach(t *tracker.Tracker) (detach func()) {
	return t.Subscribe(func(s tracker.State) {
		p.HandleState(s)
	})
}

// HandleState dispatches a ping for a fresh fix when the interval allows and
// reports whether it did. lastSentAt moves before the send starts.
func (p *Pinger) HandleState(s tracker.State) bool {
	state, ok := s.(tracker.Tracking)
	if !ok || state.LastFix == nil {
		return false
	}
	session, ok := p.sessions.Session()
	if !ok {
		return false
	}
	fix := *state.LastFix

	p.mu.Lock()
	now := p.cfg.Now()
	if p.lastFix != nil && sameFix(*p.lastFix, fix) {
		p.mu.Unlock()
		return false
	}
	if !p.lastSentAt.IsZero() && now.Sub(p.lastSentAt) < p.cfg.MinInterval {
		p.mu.Unlock()
		return false
	}
	p.lastSentAt = now
	p.lastFix = &fix
	p.mu.Unlock()

	req := PingRequest(fix, session.DeviceID)
	p.dispatched.Add(1)
	p.cfg.Dispatcher.Dispatch(func() {
		p.send(session, req)
	})
	return true
}

func (p *Pinger) send(session Session, req models.PingRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.SendTimeout)
	defer cancel()

	resp, err := p.sender.Send(ctx, session, req)
	if err != nil {
		p.dropped.Add(1)
		logger.Debug("Ping dropped",
			logger.Int64("ts_ms", req.TsMs),
			logger.Err(err))
		return
	}

	p.succeeded.Add(1)
	if p.cfg.OnResult != nil && resp != nil {
		p.cfg.OnResult(Result{FraudScore: resp.FraudScore, FraudSignals: resp.FraudSignals})
	}
}

// Stats returns the outcome counters
func (p *Pinger) Stats() Stats {
	return Stats{
		Dispatched: p.dispatched.Load(),
		Succeeded:  p.succeeded.Load(),
		Dropped:    p.dropped.Load(),
	}
}

// PingRequest builds the wire body of fix
func PingRequest(fix models.Fix, deviceID string) models.PingRequest {
	lat, lng := fix.Lat, fix.Lng
	return models.PingRequest{
		TsMs:       fix.TimestampMs,
		Lat:        &lat,
		Lng:        &lng,
		AccuracyM:  fix.AccuracyM,
		AltitudeM:  fix.AltitudeM,
		SpeedMps:   fix.SpeedMps,
		HeadingDeg: fix.HeadingDeg,
		Mocked:     fix.Mocked,
		Provider:   string(fix.Provider),
		DeviceID:   deviceID,
	}
}

func sameFix(a, b models.Fix) bool {
	return a.TimestampMs == b.TimestampMs && a.Lat == b.Lat && a.Lng == b.Lng
}
