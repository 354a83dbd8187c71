// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcher_RunsAllTasks(t *testing.T) {
	d := NewDispatcher(0, time.Second)

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		if err := d.Dispatch("test", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}

	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if ran.Load() != 20 {
		t.Errorf("ran %d tasks, want 20", ran.Load())
	}
}

func TestDispatcher_InFlightLimit(t *testing.T) {
	const limit = 3
	d := NewDispatcher(limit, time.Second)

	var current, peak, starts atomic.Int32
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(limit)

	for i := 0; i < 10; i++ {
		d.Dispatch("test", func(ctx context.Context) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			if starts.Add(1) <= limit {
				started.Done()
			}
			<-release
			current.Add(-1)
			return nil
		})
	}

	started.Wait()
	close(release)
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if peak.Load() > limit {
		t.Errorf("peak concurrency %d exceeds limit %d", peak.Load(), limit)
	}
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	d := NewDispatcher(1, time.Second)

	var after atomic.Bool
	d.Dispatch("panics", func(ctx context.Context) error {
		panic("boom")
	})
	d.Dispatch("fails", func(ctx context.Context) error {
		return errors.New("store unavailable")
	})
	d.Dispatch("after", func(ctx context.Context) error {
		after.Store(true)
		return nil
	})

	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !after.Load() {
		t.Error("a panicking task stopped later tasks")
	}
}

func TestDispatcher_ClosedAfterShutdown(t *testing.T) {
	d := NewDispatcher(0, time.Second)
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := d.Dispatch("late", func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("Dispatch() after shutdown error = %v, want ErrDispatcherClosed", err)
	}
}

func TestDispatcher_ShutdownDeadlineCancelsTasks(t *testing.T) {
	d := NewDispatcher(0, time.Minute)

	started := make(chan struct{})
	var cancelled atomic.Bool
	d.Dispatch("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := d.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want DeadlineExceeded", err)
	}
	if !cancelled.Load() {
		t.Error("running task was not cancelled")
	}
}

func TestDispatcher_TaskTimeout(t *testing.T) {
	d := NewDispatcher(0, 10*time.Millisecond)

	var deadline atomic.Bool
	d.Dispatch("timeout", func(ctx context.Context) error {
		<-ctx.Done()
		deadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	})

	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !deadline.Load() {
		t.Error("task context did not carry the event timeout")
	}
}
