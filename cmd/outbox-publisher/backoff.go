package main

import (
	"math/rand/v2"
	"time"
)

const (
	maxBackoff   = 10 * time.Second
	jitterWindow = 250 * time.Millisecond
)

// pollBackoff doubles the wait after each failed batch, capped at
// maxBackoff, and adds jitter so replicas drift apart.
type pollBackoff struct {
	base    time.Duration
	current time.Duration
	jitter  func(time.Duration) time.Duration
}

func newPollBackoff(base time.Duration) *pollBackoff {
	return &pollBackoff{base: base, jitter: randomJitter}
}

func (b *pollBackoff) fail() time.Duration {
	b.current = min(max(b.current, b.base)*2, maxBackoff)
	return b.current + b.jitter(jitterWindow)
}

func (b *pollBackoff) idle() time.Duration {
	return b.base + b.jitter(jitterWindow)
}

func (b *pollBackoff) reset() {
	b.current = 0
}

func randomJitter(window time.Duration) time.Duration {
	if window <= 0 {
		return 0
	}
	return rand.N(window)
}
