// Package tracker owns the device GPS subscription and exposes one current
// State with publish/subscribe.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/piresc/ridertrack/internal/pkg/config"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/models"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrServicesDisabled = errors.New("location services disabled")
)

const defaultInitialFixTimeout = 10 * time.Second

// Config holds tracker settings
type Config struct {
	AccuracyCeilingM  float64
	InitialFixTimeout time.Duration
}

// Tracker is the location state machine. Subscribers are called one at a
// time and must not call Start or Stop themselves.
type Tracker struct {
	platform Platform
	cfg      Config

	// deliverMu serializes state changes together with their notifications
	deliverMu sync.Mutex

	mu        sync.Mutex
	state     State
	gen       uint64
	starting  bool
	stopWatch func()
	subs      map[int]func(State)
	nextSub   int
}

// New creates an idle tracker
func New(platform Platform, cfg Config) *Tracker {
	if cfg.AccuracyCeilingM <= 0 {
		cfg.AccuracyCeilingM = config.DefaultAccuracyCeilingM
	}
	if cfg.InitialFixTimeout <= 0 {
		cfg.InitialFixTimeout = defaultInitialFixTimeout
	}
	return &Tracker{
		platform: platform,
		cfg:      cfg,
		state:    Idle{},
		subs:     make(map[int]func(State)),
	}
}

// State returns the current state
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe registers fn for every subsequent state change
func (t *Tracker) Subscribe(fn func(State)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// Start requests permission, checks location services and opens the watch.
// It is a no-op while tracking or while another Start is in flight.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.starting || t.stopWatch != nil {
		t.mu.Unlock()
		return nil
	}
	t.starting = true
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	granted, err := t.platform.RequestPermission(ctx)
	if err != nil {
		t.finishStart(gen, Idle{})
		return fmt.Errorf("failed to request location permission: %w", err)
	}
	if !granted {
		t.finishStart(gen, PermissionDenied{})
		return ErrPermissionDenied
	}

	enabled, err := t.platform.ServicesEnabled(ctx)
	if err != nil {
		t.finishStart(gen, Idle{})
		return fmt.Errorf("failed to check location services: %w", err)
	}
	if !enabled {
		t.finishStart(gen, ServicesDisabled{})
		return ErrServicesDisabled
	}

	if !t.transition(gen, Tracking{}) {
		return nil
	}

	t.initialFix(ctx, gen)

	stop, err := t.platform.Watch(ctx, AccuracyHigh, func(raw RawSample) {
		t.handleSample(gen, raw, t.cfg.AccuracyCeilingM)
	}, func(err error) {
		t.handleWatchEnd(gen, err)
	})
	if err != nil {
		t.finishStart(gen, Idle{})
		return fmt.Errorf("failed to start location watch: %w", err)
	}

	t.mu.Lock()
	if t.gen != gen {
		// stopped while the watch was opening
		t.mu.Unlock()
		stop()
		return nil
	}
	t.stopWatch = stop
	t.starting = false
	t.mu.Unlock()

	logger.Info("Location tracking started", logger.Float64("accuracy_ceiling_m", t.cfg.AccuracyCeilingM))
	return nil
}

// initialFix places the rider fast with one low power sample. It tolerates
// twice the usual accuracy ceiling.
func (t *Tracker) initialFix(ctx context.Context, gen uint64) {
	fixCtx, cancel := context.WithTimeout(ctx, t.cfg.InitialFixTimeout)
	defer cancel()

	raw, err := t.platform.CurrentFix(fixCtx, AccuracyLow)
	if err != nil {
		logger.Debug("No initial fix", logger.Err(err))
		return
	}
	t.handleSample(gen, raw, 2*t.cfg.AccuracyCeilingM)
}

// Stop cancels the watch and goes Idle. No notification is delivered after
// Stop returns.
func (t *Tracker) Stop() {
	t.mu.Lock()
	_, idle := t.state.(Idle)
	if idle && !t.starting && t.stopWatch == nil {
		t.mu.Unlock()
		return
	}
	t.gen++
	t.starting = false
	stop := t.stopWatch
	t.stopWatch = nil
	t.mu.Unlock()

	if stop != nil {
		stop()
	}

	t.deliverMu.Lock()
	defer t.deliverMu.Unlock()
	t.mu.Lock()
	t.state = Idle{}
	subs := t.snapshot()
	t.mu.Unlock()
	notify(subs, Idle{})

	logger.Info("Location tracking stopped")
}

func (t *Tracker) handleSample(gen uint64, raw RawSample, ceiling float64) {
	fix, err := NormalizeFix(raw)
	if err != nil {
		logger.Debug("Discarding malformed sample", logger.Err(err))
		return
	}
	if !Accept(fix, ceiling) {
		logger.Debug("Discarding inaccurate sample",
			logger.Float64("accuracy_m", *fix.AccuracyM),
			logger.Float64("ceiling_m", ceiling))
		return
	}

	t.deliverMu.Lock()
	defer t.deliverMu.Unlock()

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		return
	}
	if _, ok := t.state.(Tracking); !ok {
		t.mu.Unlock()
		return
	}
	next := Tracking{LastFix: &fix}
	t.state = next
	subs := t.snapshot()
	t.mu.Unlock()

	notify(subs, next)
}

// handleWatchEnd reports a watch that ended on its own as ServicesDisabled.
// The next Start opens a fresh watch.
func (t *Tracker) handleWatchEnd(gen uint64, err error) {
	t.deliverMu.Lock()
	defer t.deliverMu.Unlock()

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		return
	}
	t.gen++
	t.starting = false
	t.stopWatch = nil
	t.state = ServicesDisabled{}
	subs := t.snapshot()
	t.mu.Unlock()

	logger.Warn("Location watch ended", logger.Err(err))
	notify(subs, ServicesDisabled{})
}

// transition moves to s if gen is still current
func (t *Tracker) transition(gen uint64, s State) bool {
	t.deliverMu.Lock()
	defer t.deliverMu.Unlock()

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		return false
	}
	t.state = s
	subs := t.snapshot()
	t.mu.Unlock()

	notify(subs, s)
	return true
}

func (t *Tracker) finishStart(gen uint64, s State) {
	t.mu.Lock()
	if t.gen == gen {
		t.starting = false
	}
	t.mu.Unlock()
	t.transition(gen, s)
}

// snapshot must be called with mu held
func (t *Tracker) snapshot() []func(State) {
	subs := make([]func(State), 0, len(t.subs))
	for i := 0; i < t.nextSub; i++ {
		if fn, ok := t.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s)
	}
}

// LastFix is a convenience for callers that only need the current position
func (t *Tracker) LastFix() (models.Fix, bool) {
	if tr, ok := t.State().(Tracking); ok && tr.LastFix != nil {
		return *tr.LastFix, true
	}
	return models.Fix{}, false
}
