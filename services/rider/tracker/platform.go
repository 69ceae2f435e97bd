package tracker

import "context"

// Accuracy is the power/precision trade-off requested from the platform
type Accuracy int

const (
	AccuracyLow Accuracy = iota
	AccuracyHigh
)

// Platform is the device location API the tracker drives
type Platform interface {
	// RequestPermission asks for foreground location access
	RequestPermission(ctx context.Context) (granted bool, err error)
	// ServicesEnabled reports whether device location services are on
	ServicesEnabled(ctx context.Context) (bool, error)
	// CurrentFix returns a single best-effort sample
	CurrentFix(ctx context.Context, accuracy Accuracy) (RawSample, error)
	// Watch delivers samples to onSample until the returned stop func is
	// called. stop must not return while onSample is still running. onEnd is
	// called at most once, when the watch ends without stop, e.g. the
	// receiver was unplugged.
	Watch(ctx context.Context, accuracy Accuracy, onSample func(RawSample), onEnd func(error)) (stop func(), err error)
}
