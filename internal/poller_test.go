package internal

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoller_TicksImmediately(t *testing.T) {
	ticked := make(chan struct{}, 1)
	p := NewPoller(time.Hour, func(ctx context.Context) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})
	p.Start(context.Background())
	defer p.Stop()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("expected a tick right after Start")
	}
}

func TestPoller_RepeatsOnInterval(t *testing.T) {
	var count atomic.Int32
	p := NewPoller(5*time.Millisecond, func(ctx context.Context) {
		count.Add(1)
	})
	p.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for count.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	p.Stop()

	if count.Load() < 3 {
		t.Errorf("expected at least 3 ticks, got %d", count.Load())
	}
}

func TestPoller_NoTickAfterStop(t *testing.T) {
	var count atomic.Int32
	p := NewPoller(time.Millisecond, func(ctx context.Context) {
		count.Add(1)
	})
	p.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	after := count.Load()
	time.Sleep(20 * time.Millisecond)
	if got := count.Load(); got != after {
		t.Errorf("tick ran after Stop: %d -> %d", after, got)
	}
}

func TestPoller_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(time.Millisecond, func(ctx context.Context) {})

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
}

func TestPoller_StopIdempotent(t *testing.T) {
	p := NewPoller(0, func(ctx context.Context) {})
	if p.interval != DefaultPollInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultPollInterval)
	}
	p.Stop()
	p.Start(context.Background())
	p.Stop()
	p.Stop()
}
