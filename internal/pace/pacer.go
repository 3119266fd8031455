// Package pace spaces out sequential executions at a fixed rate.
package pace

import (
	"context"
	"sync"
	"time"
)

// Pacer schedules executions with a leaky bucket: a virtual drip time
// advances at the configured rate and each Wait returns once the next drip
// is due. A caller that falls behind is released immediately, but missed
// slots are never made up in a burst.
//
// A nil *Pacer never waits.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	now      func() time.Time
}

// New returns a Pacer allowing rate executions per second. A non-positive
// rate yields a nil Pacer.
func New(rate float64) *Pacer {
	if rate <= 0 {
		return nil
	}
	return &Pacer{
		interval: time.Duration(float64(time.Second) / rate),
		now:      time.Now,
	}
}

// Interval is the time between two scheduled executions.
func (p *Pacer) Interval() time.Duration {
	if p == nil {
		return 0
	}
	return p.interval
}

// Next reserves the next slot and returns when it starts. The first slot
// starts immediately.
func (p *Pacer) Next() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.next.Before(now) {
		p.next = now
	}
	at := p.next
	p.next = at.Add(p.interval)
	return at
}

// Wait blocks until the next slot or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}

	d := time.Until(p.Next())
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
