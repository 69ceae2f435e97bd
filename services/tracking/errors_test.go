package tracking

import (
	"fmt"
	"math"
	"testing"

	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func validRequest() *models.PingRequest {
	return &models.PingRequest{TsMs: 1700000000000, Lat: ptr(19.0760), Lng: ptr(72.8777), AccuracyM: ptr(15)}
}

func TestFixFromRequest_Valid(t *testing.T) {
	mocked := true
	req := validRequest()
	req.Mocked = &mocked
	req.Provider = "GPS"
	req.HeadingDeg = ptr(360)

	fix, err := FixFromRequest(req)

	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), fix.TimestampMs)
	assert.Equal(t, 19.0760, fix.Lat)
	assert.Equal(t, 72.8777, fix.Lng)
	assert.Equal(t, models.ProviderGPS, fix.Provider)
	assert.True(t, fix.IsMocked())
}

func TestFixFromRequest_DefaultProvider(t *testing.T) {
	fix, err := FixFromRequest(validRequest())

	require.NoError(t, err)
	assert.Equal(t, models.ProviderUnknown, fix.Provider)
}

func TestFixFromRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.PingRequest)
		field  string
	}{
		{name: "missing timestamp", mutate: func(r *models.PingRequest) { r.TsMs = 0 }, field: "tsMs"},
		{name: "missing lat", mutate: func(r *models.PingRequest) { r.Lat = nil }, field: "lat"},
		{name: "lat above range", mutate: func(r *models.PingRequest) { r.Lat = ptr(90.0001) }, field: "lat"},
		{name: "lat NaN", mutate: func(r *models.PingRequest) { r.Lat = ptr(math.NaN()) }, field: "lat"},
		{name: "missing lng", mutate: func(r *models.PingRequest) { r.Lng = nil }, field: "lng"},
		{name: "lng below range", mutate: func(r *models.PingRequest) { r.Lng = ptr(-180.5) }, field: "lng"},
		{name: "negative accuracy", mutate: func(r *models.PingRequest) { r.AccuracyM = ptr(-1) }, field: "accuracyM"},
		{name: "negative speed", mutate: func(r *models.PingRequest) { r.SpeedMps = ptr(-3) }, field: "speedMps"},
		{name: "infinite altitude", mutate: func(r *models.PingRequest) { r.AltitudeM = ptr(math.Inf(1)) }, field: "altitudeM"},
		{name: "heading out of range", mutate: func(r *models.PingRequest) { r.HeadingDeg = ptr(361) }, field: "headingDeg"},
		{name: "unknown provider", mutate: func(r *models.PingRequest) { r.Provider = "satellite" }, field: "provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := FixFromRequest(req)

			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			verr := err.(*ValidationError)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFixFromRequest_NilBody(t *testing.T) {
	_, err := FixFromRequest(nil)
	assert.True(t, IsValidationError(err))
}

func TestIsValidationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("ingest: %w", &ValidationError{Field: "lat", Reason: "bad"})

	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(assert.AnError))
	assert.Equal(t, "ingest: invalid lat: bad", err.Error())
}

func TestResolveDeviceID(t *testing.T) {
	tests := []struct {
		name      string
		principal models.Principal
		body      string
		want      string
		wantErr   bool
	}{
		{name: "session device wins", principal: models.Principal{UserID: "u", DeviceID: "dev1"}, body: "dev2", want: "dev1"},
		{name: "body fallback", principal: models.Principal{UserID: "u"}, body: " dev2 ", want: "dev2"},
		{name: "no device", principal: models.Principal{UserID: "u"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.DeviceID = tt.body

			got, err := ResolveDeviceID(tt.principal, req)

			if tt.wantErr {
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
