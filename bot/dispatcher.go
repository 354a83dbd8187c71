// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// ErrDispatcherClosed is returned by Dispatch after Shutdown has begun.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// DefaultEventTimeout bounds one event's workflow.
const DefaultEventTimeout = 30 * time.Second

// Task is one event workflow run to completion.
type Task func(ctx context.Context) error

// Dispatcher runs each inbound event as its own goroutine. Events for
// unrelated guilds never wait on each other; the only bound is the optional
// in-flight limit.
type Dispatcher struct {
	slots   chan struct{} // nil when unlimited
	timeout time.Duration

	base   context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. maxInFlight <= 0 means unlimited and
// timeout <= 0 means DefaultEventTimeout.
func NewDispatcher(maxInFlight int, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultEventTimeout
	}
	base, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{timeout: timeout, base: base, cancel: cancel}
	if maxInFlight > 0 {
		d.slots = make(chan struct{}, maxInFlight)
	}
	return d
}

// Dispatch starts task in a new goroutine. name identifies the event kind in
// logs. It never blocks on the in-flight limit; waiting happens inside the
// task's goroutine.
func (d *Dispatcher) Dispatch(name string, task Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	d.wg.Add(1)
	go d.run(name, task)
	return nil
}

func (d *Dispatcher) run(name string, task Task) {
	defer d.wg.Done()

	if d.slots != nil {
		select {
		case d.slots <- struct{}{}:
			defer func() { <-d.slots }()
		case <-d.base.Done():
			slog.Warn("event dropped during shutdown", "event", name)
			return
		}
	}

	ctx, cancel := context.WithTimeout(d.base, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event", name, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	start := time.Now()
	if err := task(ctx); err != nil {
		slog.Error("event handler failed", "event", name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	slog.Debug("event handled", "event", name, "duration_ms", time.Since(start).Milliseconds())
}

// Shutdown stops accepting events and waits for running ones. When ctx ends
// first, running events are cancelled and ctx.Err() is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
