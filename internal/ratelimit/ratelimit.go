package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay enforces a fixed pause between consecutive crawl requests so a
// category run never hammers the source shop. The first call passes through
// immediately.
type FixedDelay struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay}
}

func (f *FixedDelay) Wait(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.delay > 0 && !f.lastAction.IsZero() {
		if elapsed := time.Since(f.lastAction); elapsed < f.delay {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.delay - elapsed):
			}
		}
	}

	f.lastAction = time.Now()
	return nil
}

// NoDelay is used in single-page mode and in tests.
type NoDelay struct{}

func (NoDelay) Wait(context.Context) error { return nil }
