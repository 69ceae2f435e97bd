package models

// Provider identifies the positioning source that produced a fix
type Provider string

const (
	ProviderGPS     Provider = "gps"
	ProviderNetwork Provider = "network"
	ProviderFused   Provider = "fused"
	ProviderUnknown Provider = "unknown"
)

// Valid reports whether p is one of the recognised providers
func (p Provider) Valid() bool {
	switch p {
	case ProviderGPS, ProviderNetwork, ProviderFused, ProviderUnknown:
		return true
	}
	return false
}

// Fix is a single normalized GPS observation
type Fix struct {
	TimestampMs int64    `json:"tsMs"`                 // client clock, unix milliseconds
	Lat         float64  `json:"lat"`                  // degrees
	Lng         float64  `json:"lng"`                  // degrees
	AccuracyM   *float64 `json:"accuracyM,omitempty"`  // meters, 1 sigma
	AltitudeM   *float64 `json:"altitudeM,omitempty"`  // meters
	SpeedMps    *float64 `json:"speedMps,omitempty"`   // device reported
	HeadingDeg  *float64 `json:"headingDeg,omitempty"` // 0-360
	Mocked      *bool    `json:"mocked,omitempty"`     // OS mock location flag
	Provider    Provider `json:"provider,omitempty"`
}

// IsMocked reports whether the OS flagged the fix as a mock location
func (f Fix) IsMocked() bool {
	return f.Mocked != nil && *f.Mocked
}

// LocationEvent is one scored ping as persisted by the tracking service.
// Events are append-only: the core never updates or deletes them.
type LocationEvent struct {
	ID                 string                 `json:"id"`
	RiderUserID        string                 `json:"rider_user_id"`
	DeviceID           string                 `json:"device_id"`
	Fix                Fix                    `json:"fix"`
	Geohash            string                 `json:"geohash"`
	FraudScore         int                    `json:"fraud_score"`
	FraudSignals       []string               `json:"fraud_signals"`
	Meta               map[string]interface{} `json:"meta,omitempty"`
	ServerReceivedAtMs int64                  `json:"server_received_at_ms"`
}

// PingRequest is the wire body of a location ping
type PingRequest struct {
	TsMs       int64    `json:"tsMs"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	AccuracyM  *float64 `json:"accuracyM,omitempty"`
	AltitudeM  *float64 `json:"altitudeM,omitempty"`
	SpeedMps   *float64 `json:"speedMps,omitempty"`
	HeadingDeg *float64 `json:"headingDeg,omitempty"`
	Mocked     *bool    `json:"mocked,omitempty"`
	Provider   string   `json:"provider,omitempty"`
	DeviceID   string   `json:"deviceId,omitempty"`
}

// PingResponse is returned to the rider app for every accepted ping
type PingResponse struct {
	Accepted     bool     `json:"accepted"`
	ServerTsMs   int64    `json:"serverTsMs"`
	FraudSignals []string `json:"fraudSignals"`
	FraudScore   int      `json:"fraudScore"`
}

// Principal is the authenticated caller of a tracking request
type Principal struct {
	UserID   string
	DeviceID string
	Role     string
}
