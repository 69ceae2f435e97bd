package tracking

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/piresc/ridertrack/internal/pkg/models"
)

// ErrUnauthenticated is returned when a ping carries no rider principal
var ErrUnauthenticated = errors.New("unauthenticated rider")

// ValidationError reports a malformed ping. The ping is rejected and not scored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is, or wraps, a ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// FixFromRequest validates req and converts it into a Fix.
// A missing provider becomes "unknown".
func FixFromRequest(req *models.PingRequest) (models.Fix, error) {
	if req == nil {
		return models.Fix{}, invalid("body", "missing")
	}
	if req.TsMs <= 0 {
		return models.Fix{}, invalid("tsMs", "must be a positive unix millisecond timestamp")
	}
	if req.Lat == nil || !finite(*req.Lat) || *req.Lat < -90 || *req.Lat > 90 {
		return models.Fix{}, invalid("lat", "must be within [-90, 90]")
	}
	if req.Lng == nil || !finite(*req.Lng) || *req.Lng < -180 || *req.Lng > 180 {
		return models.Fix{}, invalid("lng", "must be within [-180, 180]")
	}
	if err := nonNegative("accuracyM", req.AccuracyM); err != nil {
		return models.Fix{}, err
	}
	if err := nonNegative("speedMps", req.SpeedMps); err != nil {
		return models.Fix{}, err
	}
	if req.AltitudeM != nil && !finite(*req.AltitudeM) {
		return models.Fix{}, invalid("altitudeM", "must be finite")
	}
	if req.HeadingDeg != nil && (!finite(*req.HeadingDeg) || *req.HeadingDeg < 0 || *req.HeadingDeg > 360) {
		return models.Fix{}, invalid("headingDeg", "must be within [0, 360]")
	}

	provider := models.ProviderUnknown
	if p := strings.TrimSpace(req.Provider); p != "" {
		provider = models.Provider(strings.ToLower(p))
		if !provider.Valid() {
			return models.Fix{}, invalid("provider", fmt.Sprintf("unsupported provider %q", req.Provider))
		}
	}

	return models.Fix{
		TimestampMs: req.TsMs,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		AccuracyM:   req.AccuracyM,
		AltitudeM:   req.AltitudeM,
		SpeedMps:    req.SpeedMps,
		HeadingDeg:  req.HeadingDeg,
		Mocked:      req.Mocked,
		Provider:    provider,
	}, nil
}

// ResolveDeviceID picks the binding device: the session device when present,
// the body device otherwise.
func ResolveDeviceID(principal models.Principal, req *models.PingRequest) (string, error) {
	if principal.DeviceID != "" {
		return principal.DeviceID, nil
	}
	if req != nil {
		if id := strings.TrimSpace(req.DeviceID); id != "" {
			return id, nil
		}
	}
	return "", invalid("deviceId", "required when the session carries no device")
}

func nonNegative(field string, v *float64) error {
	if v != nil && (!finite(*v) || *v < 0) {
		return invalid(field, "must be a non-negative number")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
