package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// Window allows at most Limit calls in any span of Per.
type Window struct {
	Limit int
	Per   time.Duration
}

// DevWindows are the personal/dev key quotas (20/s, 100/2min) with headroom.
func DevWindows() []Window {
	return []Window{
		{Limit: 15, Per: time.Second},     // Actual: 20
		{Limit: 90, Per: 2 * time.Minute}, // Actual: 100
	}
}

// ProductionWindows are the production key quotas (500/10s, 30000/10min) with headroom.
func ProductionWindows() []Window {
	return []Window{
		{Limit: 450, Per: 10 * time.Second},
		{Limit: 27000, Per: 10 * time.Minute},
	}
}

// Clock abstracts time so tests can advance it without real waits.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
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

// Limiter throttles outbound calls. It only ever delays: calls are admitted
// in the order Wait is called and none are dropped.
type Limiter struct {
	clock       Clock
	minInterval time.Duration
	windows     []Window

	mu      sync.Mutex
	history [][]time.Time // one slice of admitted call times per window
	last    time.Time
}

// New creates a limiter enforcing minInterval between calls and every window.
func New(clock Clock, minInterval time.Duration, windows ...Window) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Limiter{
		clock:       clock,
		minInterval: minInterval,
		windows:     windows,
		history:     make([][]time.Time, len(windows)),
	}
}

// Wait blocks until another call is allowed, then records it.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.clock.Now()

		var wait time.Duration
		if !l.last.IsZero() {
			wait = l.last.Add(l.minInterval).Sub(now)
		}

		windowBound := false
		for i, w := range l.windows {
			cutoff := now.Add(-w.Per)
			kept := l.history[i][:0]
			for _, t := range l.history[i] {
				if t.After(cutoff) {
					kept = append(kept, t)
				}
			}
			l.history[i] = kept

			if len(kept) >= w.Limit {
				if d := kept[0].Add(w.Per).Sub(now); d > wait {
					wait = d
					windowBound = true
				}
			}
		}

		if wait <= 0 {
			for i := range l.history {
				l.history[i] = append(l.history[i], now)
			}
			l.last = now
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if windowBound {
			log.Printf("[Rate limit] Window full, waiting %.1fs...", wait.Seconds())
		}
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Admitted returns how many recorded calls fall inside each window right now.
func (l *Limiter) Admitted() []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	counts := make([]int, len(l.windows))
	for i, w := range l.windows {
		cutoff := now.Add(-w.Per)
		for _, t := range l.history[i] {
			if t.After(cutoff) {
				counts[i]++
			}
		}
	}
	return counts
}
