// Package ratelimit provides per-client token buckets for the unauthenticated
// auth endpoints (signup, signin, forgot and reset password).
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Rate is the refill speed and size of a bucket.
type Rate struct {
	RequestsPerSecond float64
	Burst             int
}

// Limiter is the token bucket of one client. A bucket starts full, refills
// continuously at the configured rate and never holds more than the burst.
// A zero rate never refills.
type Limiter struct {
	mu       sync.Mutex
	perSec   float64
	burst    float64
	level    float64
	observed time.Time
}

// NewLimiter returns a full bucket.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{
		perSec:   perSecond,
		burst:    float64(burst),
		level:    float64(burst),
		observed: time.Now(),
	}
}

// Reserve takes one token if the bucket has one. Otherwise it leaves the
// bucket alone and reports how long until a token is available; the wait is
// zero when the bucket never refills.
func (l *Limiter) Reserve() (bool, time.Duration) {
	return l.reserveAt(time.Now())
}

func (l *Limiter) reserveAt(now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill(now)

	if l.level >= 1 {
		l.level--
		return true, 0
	}
	if l.perSec <= 0 {
		return false, 0
	}

	missing := 1 - l.level
	return false, time.Duration(math.Ceil(missing * float64(time.Second) / l.perSec))
}

// refill credits the time since the last observation. A clock that moved
// backwards credits nothing.
func (l *Limiter) refill(now time.Time) {
	if elapsed := now.Sub(l.observed); elapsed > 0 {
		l.level = math.Min(l.burst, l.level+elapsed.Seconds()*l.perSec)
	}
	if now.After(l.observed) {
		l.observed = now
	}
}
