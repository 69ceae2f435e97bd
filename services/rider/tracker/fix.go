package tracker

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/piresc/ridertrack/internal/pkg/models"
)

// ErrInvalidFix is returned for samples that cannot become a Fix
var ErrInvalidFix = errors.New("invalid fix")

// RawSample is a position as reported by the platform location API
type RawSample struct {
	TimestampMs int64
	Lat         float64
	Lng         float64
	AccuracyM   *float64
	AltitudeM   *float64
	SpeedMps    *float64
	HeadingDeg  *float64
	Mocked      *bool
	Provider    string
}

// NormalizeFix turns a raw sample into a canonical Fix. Coordinates must be
// in range. Unusable optionals are dropped rather than rejected.
func NormalizeFix(raw RawSample) (models.Fix, error) {
	if raw.TimestampMs <= 0 {
		return models.Fix{}, fmt.Errorf("%w: missing timestamp", ErrInvalidFix)
	}
	if !finite(raw.Lat) || raw.Lat < -90 || raw.Lat > 90 {
		return models.Fix{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidFix, raw.Lat)
	}
	if !finite(raw.Lng) || raw.Lng < -180 || raw.Lng > 180 {
		return models.Fix{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidFix, raw.Lng)
	}

	fix := models.Fix{
		TimestampMs: raw.TimestampMs,
		Lat:         raw.Lat,
		Lng:         raw.Lng,
		AccuracyM:   nonNegative(raw.AccuracyM),
		AltitudeM:   finitePtr(raw.AltitudeM),
		SpeedMps:    nonNegative(raw.SpeedMps),
		Mocked:      raw.Mocked,
		Provider:    normalizeProvider(raw.Provider),
	}
	if h := finitePtr(raw.HeadingDeg); h != nil {
		heading := math.Mod(*h, 360)
		if heading < 0 {
			heading += 360
		}
		fix.HeadingDeg = &heading
	}
	return fix, nil
}

// Accept reports whether fix may become the current fix under ceilingM.
// A fix without accuracy is accepted.
func Accept(fix models.Fix, ceilingM float64) bool {
	return fix.AccuracyM == nil || *fix.AccuracyM <= ceilingM
}

func normalizeProvider(p string) models.Provider {
	provider := models.Provider(strings.ToLower(strings.TrimSpace(p)))
	if !provider.Valid() {
		return models.ProviderUnknown
	}
	return provider
}

func nonNegative(v *float64) *float64 {
	if v == nil || !finite(*v) || *v < 0 {
		return nil
	}
	out := *v
	return &out
}

func finitePtr(v *float64) *float64 {
	if v == nil || !finite(*v) {
		return nil
	}
	out := *v
	return &out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
