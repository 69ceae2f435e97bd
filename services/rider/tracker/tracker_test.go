package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	mu         sync.Mutex
	granted    bool
	permErr    error
	enabled    bool
	enabledErr error
	current    RawSample
	currentErr error
	watchErr   error

	permissionCalls int
	watchCalls      int
	stopCalls       int
	watchAccuracy   Accuracy
	onSample        func(RawSample)
	onEnd           func(error)
}

func grantedPlatform() *fakePlatform {
	return &fakePlatform{granted: true, enabled: true, currentErr: errors.New("no fix yet")}
}

func (p *fakePlatform) RequestPermission(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permissionCalls++
	return p.granted, p.permErr
}

func (p *fakePlatform) ServicesEnabled(ctx context.Context) (bool, error) {
	return p.enabled, p.enabledErr
}

func (p *fakePlatform) CurrentFix(ctx context.Context, accuracy Accuracy) (RawSample, error) {
	return p.current, p.currentErr
}

func (p *fakePlatform) Watch(ctx context.Context, accuracy Accuracy, onSample func(RawSample), onEnd func(error)) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watchErr != nil {
		return nil, p.watchErr
	}
	p.watchCalls++
	p.watchAccuracy = accuracy
	p.onSample = onSample
	p.onEnd = onEnd
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.stopCalls++
		p.onSample = nil
	}, nil
}

func (p *fakePlatform) emit(raw RawSample) {
	p.mu.Lock()
	fn := p.onSample
	p.mu.Unlock()
	if fn != nil {
		fn(raw)
	}
}

// end simulates the platform losing the receiver
func (p *fakePlatform) end(err error) {
	p.mu.Lock()
	fn := p.onEnd
	p.onSample = nil
	p.onEnd = nil
	p.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (p *fakePlatform) callback() func(RawSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onSample
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.states))
	for _, s := range r.states {
		names = append(names, s.Name())
	}
	return names
}

func acc(v float64) *float64 { return &v }

func sample(ts int64, accuracy *float64) RawSample {
	return RawSample{TimestampMs: ts, Lat: 19.0760, Lng: 72.8777, AccuracyM: accuracy, Provider: "gps"}
}

func newTracker(p Platform) (*Tracker, *recorder) {
	tr := New(p, Config{AccuracyCeilingM: 80})
	rec := &recorder{}
	tr.Subscribe(rec.record)
	return tr, rec
}

func TestStart_PermissionDenied(t *testing.T) {
	// Arrange
	p := &fakePlatform{granted: false, enabled: true}
	tr, rec := newTracker(p)

	// Act
	err := tr.Start(context.Background())

	// Assert
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.IsType(t, PermissionDenied{}, tr.State())
	assert.Equal(t, 0, p.watchCalls)
	assert.Equal(t, []string{"permission_denied"}, rec.names())
}

func TestStart_ServicesDisabled(t *testing.T) {
	p := &fakePlatform{granted: true, enabled: false}
	tr, rec := newTracker(p)

	err := tr.Start(context.Background())

	assert.ErrorIs(t, err, ErrServicesDisabled)
	assert.IsType(t, ServicesDisabled{}, tr.State())
	assert.Equal(t, 0, p.watchCalls)
	assert.Equal(t, []string{"services_disabled"}, rec.names())
}

func TestStart_PlatformErrors(t *testing.T) {
	tests := []struct {
		name     string
		platform *fakePlatform
		wantMsg  string
	}{
		{
			name:     "permission request fails",
			platform: &fakePlatform{permErr: errors.New("binder died")},
			wantMsg:  "failed to request location permission",
		},
		{
			name:     "services check fails",
			platform: &fakePlatform{granted: true, enabledErr: errors.New("settings unavailable")},
			wantMsg:  "failed to check location services",
		},
		{
			name:     "watch fails",
			platform: &fakePlatform{granted: true, enabled: true, currentErr: errors.New("none"), watchErr: errors.New("port closed")},
			wantMsg:  "failed to start location watch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTracker(tt.platform)

			err := tr.Start(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.IsType(t, Idle{}, tr.State())
		})
	}
}

func TestStart_RetryAfterDenial(t *testing.T) {
	p := &fakePlatform{granted: false, enabled: true, currentErr: errors.New("none")}
	tr, _ := newTracker(p)
	require.ErrorIs(t, tr.Start(context.Background()), ErrPermissionDenied)

	p.mu.Lock()
	p.granted = true
	p.mu.Unlock()

	require.NoError(t, tr.Start(context.Background()))
	assert.IsType(t, Tracking{}, tr.State())
	assert.Equal(t, 1, p.watchCalls)
}

func TestStart_OpensHighAccuracyWatch(t *testing.T) {
	p := grantedPlatform()
	tr, rec := newTracker(p)

	require.NoError(t, tr.Start(context.Background()))

	assert.Equal(t, 1, p.watchCalls)
	assert.Equal(t, AccuracyHigh, p.watchAccuracy)
	state, ok := tr.State().(Tracking)
	require.True(t, ok)
	assert.Nil(t, state.LastFix)
	assert.Equal(t, []string{"tracking"}, rec.names())
}

func TestStart_InitialFix(t *testing.T) {
	tests := []struct {
		name     string
		accuracy *float64
		wantFix  bool
	}{
		{name: "within twice the ceiling", accuracy: acc(160), wantFix: true},
		{name: "beyond twice the ceiling", accuracy: acc(160.5), wantFix: false},
		{name: "no accuracy reported", accuracy: nil, wantFix: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := grantedPlatform()
			p.current = sample(1000, tt.accuracy)
			p.currentErr = nil
			tr, _ := newTracker(p)

			require.NoError(t, tr.Start(context.Background()))

			_, ok := tr.LastFix()
			assert.Equal(t, tt.wantFix, ok)
		})
	}
}

func TestStart_NoopWhileTracking(t *testing.T) {
	p := grantedPlatform()
	tr, rec := newTracker(p)
	require.NoError(t, tr.Start(context.Background()))

	require.NoError(t, tr.Start(context.Background()))

	assert.Equal(t, 1, p.watchCalls)
	assert.Equal(t, 1, p.permissionCalls)
	assert.Equal(t, []string{"tracking"}, rec.names())
}

func TestWatch_AccuracyCeiling(t *testing.T) {
	p := grantedPlatform()
	tr, rec := newTracker(p)
	require.NoError(t, tr.Start(context.Background()))

	// accuracy equal to the ceiling is accepted
	p.emit(sample(2000, acc(80)))
	fix, ok := tr.LastFix()
	require.True(t, ok)
	assert.Equal(t, int64(2000), fix.TimestampMs)

	// just above the ceiling is dropped and the last fix is kept
	p.emit(sample(3000, acc(80.01)))
	fix, ok = tr.LastFix()
	require.True(t, ok)
	assert.Equal(t, int64(2000), fix.TimestampMs)

	p.emit(sample(4000, acc(5)))
	fix, _ = tr.LastFix()
	assert.Equal(t, int64(4000), fix.TimestampMs)

	assert.Equal(t, []string{"tracking", "tracking", "tracking"}, rec.names())
}

func TestWatch_MalformedSampleIgnored(t *testing.T) {
	p := grantedPlatform()
	tr, rec := newTracker(p)
	require.NoError(t, tr.Start(context.Background()))

	p.emit(RawSample{TimestampMs: 2000, Lat: 95, Lng: 10})

	_, ok := tr.LastFix()
	assert.False(t, ok)
	assert.Equal(t, []string{"tracking"}, rec.names())
}

func TestStop(t *testing.T) {
	p := grantedPlatform()
	tr, rec := newTracker(p)
	require.NoError(t, tr.Start(context.Background()))
	p.emit(sample(2000, acc(10)))
	stale := p.callback()

	tr.Stop()

	assert.IsType(t, Idle{}, tr.State())
	assert.Equal(t, 1, p.stopCalls)

	// a late callback from the cancelled watch is dropped
	stale(sample(3000, acc(10)))
	assert.IsType(t, Idle{}, tr.State())

	// idempotent
	tr.Stop()
	assert.Equal(t, 1, p.stopCalls)
	assert.Equal(t, []string{"tracking", "tracking", "idle"}, rec.names())
}

func TestStop_ThenRestart(t *testing.T) {
	p := grantedPlatform()
	tr, _ := newTracker(p)
	require.NoError(t, tr.Start(context.Background()))
	old := p.callback()
	tr.Stop()

	require.NoError(t, tr.Start(context.Background()))
	old(sample(5000, acc(10)))

	_, ok := tr.LastFix()
	assert.False(t, ok, "sample from the previous watch must not land")

	p.emit(sample(6000, acc(10)))
	fix, ok := tr.LastFix()
	require.True(t, ok)
	assert.Equal(t, int64(6000), fix.TimestampMs)
	assert.Equal(t, 2, p.watchCalls)
}

func TestWatch_EndedByPlatform(t *testing.T) {
	// Arrange
	p := grantedPlatform()
	tr, rec := newTracker(p)
	require.NoError(t, tr.Start(context.Background()))
	p.emit(sample(1000, acc(10)))
	stale := p.callback()

	// Act
	p.end(errors.New("receiver unplugged"))

	// Assert
	assert.IsType(t, ServicesDisabled{}, tr.State())
	assert.Equal(t, []string{"tracking", "tracking", "services_disabled"}, rec.names())
	_, ok := tr.LastFix()
	assert.False(t, ok)

	stale(sample(2000, acc(10)))
	assert.IsType(t, ServicesDisabled{}, tr.State())

	// stop has nothing to cancel, a restart opens a new watch
	require.NoError(t, tr.Start(context.Background()))
	assert.Equal(t, 2, p.watchCalls)
	assert.Equal(t, 0, p.stopCalls)
	assert.IsType(t, Tracking{}, tr.State())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	p := grantedPlatform()
	tr := New(p, Config{})
	rec := &recorder{}
	unsubscribe := tr.Subscribe(rec.record)

	require.NoError(t, tr.Start(context.Background()))
	unsubscribe()
	unsubscribe()
	p.emit(sample(2000, acc(10)))

	assert.Equal(t, []string{"tracking"}, rec.names())
}

func TestWatch_ConcurrentSamples(t *testing.T) {
	p := grantedPlatform()
	tr, _ := newTracker(p)
	require.NoError(t, tr.Start(context.Background()))

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.emit(sample(int64(i)*1000, acc(10)))
		}(i)
	}
	wg.Wait()

	_, ok := tr.LastFix()
	assert.True(t, ok)
}

func TestNormalizeFix(t *testing.T) {
	mocked := true

	tests := []struct {
		name    string
		raw     RawSample
		wantErr bool
		check   func(t *testing.T, fix models.Fix)
	}{
		{
			name: "full sample",
			raw: RawSample{TimestampMs: 1, Lat: 19.07, Lng: 72.87, AccuracyM: acc(5), AltitudeM: acc(-12),
				SpeedMps: acc(7), HeadingDeg: acc(90), Mocked: &mocked, Provider: "FUSED"},
			check: func(t *testing.T, fix models.Fix) {
				assert.Equal(t, 5.0, *fix.AccuracyM)
				assert.Equal(t, -12.0, *fix.AltitudeM)
				assert.Equal(t, 7.0, *fix.SpeedMps)
				assert.Equal(t, 90.0, *fix.HeadingDeg)
				assert.True(t, fix.IsMocked())
				assert.Equal(t, models.ProviderFused, fix.Provider)
			},
		},
		{
			name: "unknown optionals are dropped",
			raw:  RawSample{TimestampMs: 1, Lat: 1, Lng: 1, AccuracyM: acc(-1), SpeedMps: acc(-1), Provider: "bluetooth"},
			check: func(t *testing.T, fix models.Fix) {
				assert.Nil(t, fix.AccuracyM)
				assert.Nil(t, fix.SpeedMps)
				assert.Equal(t, models.ProviderUnknown, fix.Provider)
			},
		},
		{
			name: "heading wraps into range",
			raw:  RawSample{TimestampMs: 1, Lat: 1, Lng: 1, HeadingDeg: acc(-90)},
			check: func(t *testing.T, fix models.Fix) {
				assert.Equal(t, 270.0, *fix.HeadingDeg)
			},
		},
		{
			name: "heading of 360 is north",
			raw:  RawSample{TimestampMs: 1, Lat: 1, Lng: 1, HeadingDeg: acc(360)},
			check: func(t *testing.T, fix models.Fix) {
				assert.Equal(t, 0.0, *fix.HeadingDeg)
			},
		},
		{name: "latitude out of range", raw: RawSample{TimestampMs: 1, Lat: -90.5, Lng: 1}, wantErr: true},
		{name: "longitude out of range", raw: RawSample{TimestampMs: 1, Lat: 1, Lng: 181}, wantErr: true},
		{name: "missing timestamp", raw: RawSample{Lat: 1, Lng: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, err := NormalizeFix(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFix)
				return
			}
			require.NoError(t, err)
			tt.check(t, fix)
		})
	}
}

func TestAccept(t *testing.T) {
	assert.True(t, Accept(models.Fix{}, 80))
	assert.True(t, Accept(models.Fix{AccuracyM: acc(80)}, 80))
	assert.False(t, Accept(models.Fix{AccuracyM: acc(80.01)}, 80))
}
