package gps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/piresc/ridertrack/services/rider/tracker"
)

var (
	// ErrNoFix is returned when the stream ended before a valid fix arrived
	ErrNoFix = errors.New("no gps fix")
	// ErrStreamEnded is passed to onEnd when the receiver stops sending
	ErrStreamEnded = errors.New("gps stream ended")
)

// Opener opens a fresh NMEA stream
type Opener func() (io.ReadCloser, error)

// NMEAPlatform implements tracker.Platform over an NMEA stream. A receiver
// has no notion of low power, so both accuracies read the same stream.
type NMEAPlatform struct {
	open Opener
	uere float64
}

// NewNMEAPlatform creates a platform that opens the stream with open
func NewNMEAPlatform(open Opener, uereMeters float64) *NMEAPlatform {
	return &NMEAPlatform{open: open, uere: uereMeters}
}

// RequestPermission opens the device once. Permission errors mean denied.
func (p *NMEAPlatform) RequestPermission(ctx context.Context) (bool, error) {
	rc, err := p.open()
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		// anything else is the services check's concern
		return true, nil
	}
	_ = rc.Close()
	return true, nil
}

// ServicesEnabled reports whether the receiver is present
func (p *NMEAPlatform) ServicesEnabled(ctx context.Context) (bool, error) {
	rc, err := p.open()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open gps receiver: %w", err)
	}
	_ = rc.Close()
	return true, nil
}

// CurrentFix reads until the first valid fix or until ctx is done
func (p *NMEAPlatform) CurrentFix(ctx context.Context, _ tracker.Accuracy) (tracker.RawSample, error) {
	rc, err := p.open()
	if err != nil {
		return tracker.RawSample{}, fmt.Errorf("failed to open gps receiver: %w", err)
	}

	type result struct {
		sample tracker.RawSample
		err    error
	}
	done := make(chan result, 1)
	go func() {
		var (
			res   result
			found bool
		)
		err := p.readLoop(rc, func(s tracker.RawSample) bool {
			res = result{sample: s}
			found = true
			return false
		})
		if !found {
			res.err = ErrNoFix
			if err != nil && !isStreamClosed(err) {
				res.err = fmt.Errorf("failed to read gps stream: %w", err)
			}
		}
		done <- res
	}()

	select {
	case res := <-done:
		_ = rc.Close()
		return res.sample, res.err
	case <-ctx.Done():
		_ = rc.Close()
		<-done
		return tracker.RawSample{}, ctx.Err()
	}
}

// Watch streams every valid fix to onSample until stop is called or ctx is
// done. If the stream ends first, onEnd receives ErrStreamEnded or the read
// error.
func (p *NMEAPlatform) Watch(ctx context.Context, _ tracker.Accuracy, onSample func(tracker.RawSample), onEnd func(error)) (func(), error) {
	rc, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open gps receiver: %w", err)
	}

	var (
		wg        sync.WaitGroup
		closeOnce sync.Once
		stopped   atomic.Bool
	)
	closeStream := func() {
		closeOnce.Do(func() { _ = rc.Close() })
	}
	quit := make(chan struct{})
	ended := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(ended)
		err := p.readLoop(rc, func(s tracker.RawSample) bool {
			onSample(s)
			return true
		})
		closeStream()
		if stopped.Load() || onEnd == nil {
			return
		}
		if err == nil || isStreamClosed(err) {
			err = ErrStreamEnded
		}
		onEnd(err)
	}()
	go func() {
		select {
		case <-ctx.Done():
			stopped.Store(true)
			closeStream()
		case <-quit:
		case <-ended:
		}
	}()

	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() {
			stopped.Store(true)
			close(quit)
			closeStream()
			wg.Wait()
		})
	}
	return stop, nil
}

// readLoop decodes lines until emit returns false or reading fails. It
// returns the read error, nil when emit stopped it.
func (p *NMEAPlatform) readLoop(r io.Reader, emit func(tracker.RawSample) bool) error {
	dec := NewDecoder(p.uere)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if sample, ok := dec.Feed(line); ok {
				if !emit(sample) {
					return nil
				}
			}
		}
		if err != nil {
			return err
		}
	}
}

func isStreamClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, fs.ErrClosed)
}
