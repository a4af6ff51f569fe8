// Package ratelimit provides the blocking inter-request delay used
// between consecutive fetches.
package ratelimit

import (
	"math/rand"
	"time"
)

// Limiter defines the interface for pacing outbound requests
type Limiter interface {
	// Wait blocks until the next request may be sent
	Wait()
}

// FixedDelay sleeps for the same duration before every request.
type FixedDelay struct {
	delay time.Duration
	sleep func(time.Duration)
}

// NewFixedDelay creates a fixed-delay limiter
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay, sleep: time.Sleep}
}

// Wait blocks for the configured delay
func (f *FixedDelay) Wait() {
	if f.delay > 0 {
		f.sleep(f.delay)
	}
}

// JitterDelay sleeps for a duration drawn uniformly from
// [base, base+jitter] before every request.
type JitterDelay struct {
	base   time.Duration
	jitter time.Duration
	rng    *rand.Rand
	sleep  func(time.Duration)
}

// NewJitterDelay creates a jittered-delay limiter
func NewJitterDelay(base, jitter time.Duration) *JitterDelay {
	return &JitterDelay{
		base:   base,
		jitter: jitter,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  time.Sleep,
	}
}

// Next returns the next delay without sleeping
func (j *JitterDelay) Next() time.Duration {
	d := j.base
	if j.jitter > 0 {
		d += time.Duration(j.rng.Int63n(int64(j.jitter) + 1))
	}
	return d
}

// Wait blocks for the next drawn delay
func (j *JitterDelay) Wait() {
	if d := j.Next(); d > 0 {
		j.sleep(d)
	}
}

// FromConfig builds the limiter the process-wide configuration asks for:
// fixed when jitter is zero, jittered otherwise.
func FromConfig(delay, jitter time.Duration) Limiter {
	if jitter > 0 {
		return NewJitterDelay(delay, jitter)
	}
	return NewFixedDelay(delay)
}
