// Package fraud scores a location ping against the previous event of the same
// rider device. Scoring is pure: the same inputs always give the same result.
package fraud

import (
	"math"

	"github.com/piresc/ridertrack/internal/pkg/config"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/internal/utils"
)

// Signal names a single anomaly detected on a ping
type Signal string

const (
	SignalDeviceMismatch Signal = "device_mismatch"
	SignalMocked         Signal = "mocked"
	SignalLowAccuracy    Signal = "low_accuracy"
	SignalOutOfOrder     Signal = "out_of_order"
	SignalStale          Signal = "stale"
	SignalTeleport       Signal = "teleport"
	SignalSpeedMismatch  Signal = "speed_mismatch"
)

// MaxScore caps the summed signal weights
const MaxScore = 100

// canonical emission order of signals in a Result
var signalOrder = []Signal{
	SignalDeviceMismatch,
	SignalMocked,
	SignalLowAccuracy,
	SignalOutOfOrder,
	SignalStale,
	SignalTeleport,
	SignalSpeedMismatch,
}

var weights = map[Signal]int{
	SignalTeleport:       40,
	SignalMocked:         35,
	SignalDeviceMismatch: 25,
	SignalOutOfOrder:     15,
	SignalSpeedMismatch:  15,
	SignalStale:          10,
	SignalLowAccuracy:    10,
}

// Weight returns the score contribution of s
func Weight(s Signal) int {
	return weights[s]
}

// Meta keys set on Result.Meta
const (
	MetaDistanceM       = "distance_m"
	MetaElapsedMs       = "elapsed_ms"
	MetaImpliedSpeedMps = "implied_speed_mps"
	MetaStalenessMs     = "staleness_ms"
	MetaTokenDeviceID   = "token_device_id"
	MetaBodyDeviceID    = "body_device_id"
)

// Result is the outcome of scoring one ping
type Result struct {
	Score   int
	Signals []Signal
	Meta    map[string]interface{}
}

// Has reports whether s fired
func (r Result) Has(s Signal) bool {
	for _, got := range r.Signals {
		if got == s {
			return true
		}
	}
	return false
}

// SignalNames returns the signals as plain strings, never nil
func (r Result) SignalNames() []string {
	names := make([]string, 0, len(r.Signals))
	for _, s := range r.Signals {
		names = append(names, string(s))
	}
	return names
}

// Scorer applies the fraud rules with fixed thresholds
type Scorer struct {
	cfg models.FraudConfig
}

// NewScorer returns a scorer for cfg. Zero thresholds take their defaults.
func NewScorer(cfg models.FraudConfig) *Scorer {
	if cfg.AccuracyCeilingM <= 0 {
		cfg.AccuracyCeilingM = config.DefaultAccuracyCeilingM
	}
	if cfg.StalenessBudgetMs <= 0 {
		cfg.StalenessBudgetMs = config.DefaultStalenessBudgetMs
	}
	if cfg.MaxPlausibleSpeedMps <= 0 {
		cfg.MaxPlausibleSpeedMps = config.DefaultMaxPlausibleSpeedMps
	}
	if cfg.SpeedMismatchTolerance <= 0 {
		cfg.SpeedMismatchTolerance = config.DefaultSpeedMismatchTolerance
	}
	return &Scorer{cfg: cfg}
}

// Config returns the effective thresholds
func (s *Scorer) Config() models.FraudConfig {
	return s.cfg
}

// Score evaluates curr against prev, the latest event of the same binding or
// nil for its first ping. serverNowMs is the server receipt time.
func (s *Scorer) Score(prev *models.LocationEvent, curr models.Fix, tokenDeviceID, bodyDeviceID string, serverNowMs int64) Result {
	active := make(map[Signal]bool, len(signalOrder))
	meta := make(map[string]interface{})

	if tokenDeviceID != "" {
		meta[MetaTokenDeviceID] = tokenDeviceID
	}
	if bodyDeviceID != "" {
		meta[MetaBodyDeviceID] = bodyDeviceID
	}
	if tokenDeviceID != "" && bodyDeviceID != "" && tokenDeviceID != bodyDeviceID {
		active[SignalDeviceMismatch] = true
	}

	if curr.IsMocked() {
		active[SignalMocked] = true
	}

	if curr.AccuracyM != nil && *curr.AccuracyM > s.cfg.AccuracyCeilingM {
		active[SignalLowAccuracy] = true
	}

	staleness := serverNowMs - curr.TimestampMs
	meta[MetaStalenessMs] = staleness
	if staleness > s.cfg.StalenessBudgetMs {
		active[SignalStale] = true
	}

	if prev != nil {
		s.scoreMovement(prev.Fix, curr, active, meta)
	}

	res := Result{Signals: make([]Signal, 0, len(active)), Meta: meta}
	for _, sig := range signalOrder {
		if active[sig] {
			res.Signals = append(res.Signals, sig)
			res.Score += weights[sig]
		}
	}
	if res.Score > MaxScore {
		res.Score = MaxScore
	}
	return res
}

func (s *Scorer) scoreMovement(prev, curr models.Fix, active map[Signal]bool, meta map[string]interface{}) {
	elapsedMs := curr.TimestampMs - prev.TimestampMs
	distance := utils.DistanceBetweenFixes(prev, curr)
	meta[MetaElapsedMs] = elapsedMs
	meta[MetaDistanceM] = round2(distance)

	if elapsedMs <= 0 {
		active[SignalOutOfOrder] = true
		return
	}

	implied := distance / (float64(elapsedMs) / 1000.0)
	meta[MetaImpliedSpeedMps] = round2(implied)

	if implied > s.cfg.MaxPlausibleSpeedMps {
		active[SignalTeleport] = true
	}

	if prev.SpeedMps != nil && curr.SpeedMps != nil {
		if speedDiverges(*curr.SpeedMps, implied, s.cfg.SpeedMismatchTolerance) {
			active[SignalSpeedMismatch] = true
		}
	}
}

// speedDiverges measures the reported speed relative to the implied one. A
// device reporting motion between identical positions always diverges.
func speedDiverges(reported, implied, tolerance float64) bool {
	if implied == 0 {
		return reported > 0
	}
	return math.Abs(reported-implied)/implied > tolerance
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
