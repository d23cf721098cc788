package internal

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval matches the refresh period of the document list
const DefaultPollInterval = 30 * time.Second

// Poller runs a tick function immediately and then on a fixed interval
// until its context is cancelled or Stop is called.
type Poller struct {
	interval time.Duration
	tick     func(ctx context.Context)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewPoller creates a poller; a non-positive interval uses DefaultPollInterval
func NewPoller(interval time.Duration, tick func(ctx context.Context)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, tick: tick}
}

// Start launches the polling loop. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	go p.loop(ctx, p.done)
}

// Run polls on the calling goroutine until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	p.Start(ctx)
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	<-done
}

// Stop cancels the loop and waits for an in-progress tick to return. No tick
// starts after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		p.tick(ctx)

		select {
		case <-ctx.Done():
			LogDebug("Poller stopped: %v", ctx.Err())
			return
		case <-ticker.C:
		}
	}
}
