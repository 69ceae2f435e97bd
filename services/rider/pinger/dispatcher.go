package pinger

import "sync"

// Dispatcher runs a send without the caller waiting on, or depending on, its
// outcome. Implementations must not block HandleState for the send itself.
type Dispatcher interface {
	Dispatch(send func())
}

// GoDispatcher runs every send on its own goroutine
type GoDispatcher struct {
	wg sync.WaitGroup
}

// Dispatch starts send in the background
func (d *GoDispatcher) Dispatch(send func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		send()
	}()
}

// Wait blocks until every dispatched send has finished
func (d *GoDispatcher) Wait() {
	d.wg.Wait()
}

// InlineDispatcher runs sends on the calling goroutine
type InlineDispatcher struct{}

func (InlineDispatcher) Dispatch(send func()) { send() }
