// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hookexec

import (
	"sync"
	"time"
)

// BreakerState is the circuit breaker's own state machine, one instance
// per hook point.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// BreakerConfig tunes a single point's circuit breaker.
type BreakerConfig struct {
	// Enabled toggles the breaker off entirely (always Closed) when false.
	Enabled bool
	// Window is how many of the most recent executions are considered
	// when computing the failure ratio.
	Window int
	// FailureRatio trips Closed->Open once exceeded over Window.
	FailureRatio float64
	// MeanExecutionBudget trips Closed->Open when the mean duration over
	// Window exceeds this budget.
	MeanExecutionBudget time.Duration
	// Cooldown is how long the breaker stays Open before allowing one
	// trial execution (Open->HalfOpen).
	Cooldown time.Duration
}

// DefaultBreakerConfig mirrors the teacher's rate limiter defaults: a
// conservative window with a majority-failure trip threshold.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:             true,
		Window:              20,
		FailureRatio:        0.5,
		MeanExecutionBudget: 2 * time.Second,
		Cooldown:            10 * time.Second,
	}
}

// breaker is the per-point circuit breaker. All mutation happens under mu;
// the lock is only ever held for O(1) bookkeeping, never across hook
// execution.
type breaker struct {
	mu     sync.Mutex
	cfg    BreakerConfig
	state  BreakerState
	openAt time.Time

	results   []bool // true=success, ring buffer of the last Window outcomes
	durations []time.Duration
	pos       int

	skipped uint64
	trips   uint64
}

func newBreaker(cfg BreakerConfig) *breaker {
	if cfg.Window <= 0 {
		cfg.Window = 20
	}
	return &breaker{
		cfg:       cfg,
		state:     BreakerClosed,
		results:   make([]bool, 0, cfg.Window),
		durations: make([]time.Duration, 0, cfg.Window),
	}
}

// Allow reports whether a hook may run. It returns (allow, isTrial): when
// the breaker is HalfOpen, exactly one caller is told isTrial=true and
// must report its outcome; concurrent callers during that trial are
// skipped like an Open breaker.
func (b *breaker) Allow() (allow bool, isTrial bool) {
	if !b.cfg.Enabled {
		return true, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true, false
	case BreakerOpen:
		if time.Since(b.openAt) >= b.cfg.Cooldown {
			b.state = BreakerHalfOpen
			return true, true
		}
		b.skipped++
		return false, false
	case BreakerHalfOpen:
		// A trial is already in flight; treat as Open until it resolves.
		b.skipped++
		return false, false
	default:
		return true, false
	}
}

// Record reports the outcome of an execution that Allow() admitted.
func (b *breaker) Record(success bool, d time.Duration) {
	if !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		if success {
			b.state = BreakerClosed
			b.results = b.results[:0]
			b.durations = b.durations[:0]
		} else {
			b.state = BreakerOpen
			b.openAt = time.Now()
			b.trips++
		}
		return
	}

	if len(b.results) < b.cfg.Window {
		b.results = append(b.results, success)
		b.durations = append(b.durations, d)
	} else {
		b.results[b.pos] = success
		b.durations[b.pos] = d
		b.pos = (b.pos + 1) % b.cfg.Window
	}

	if b.state == BreakerClosed && b.shouldTripLocked() {
		b.state = BreakerOpen
		b.openAt = time.Now()
		b.trips++
	}
}

func (b *breaker) shouldTripLocked() bool {
	if len(b.results) < b.cfg.Window {
		return false
	}
	failures := 0
	var total time.Duration
	for i, ok := range b.results {
		if !ok {
			failures++
		}
		total += b.durations[i]
	}
	ratio := float64(failures) / float64(len(b.results))
	if ratio > b.cfg.FailureRatio {
		return true
	}
	if b.cfg.MeanExecutionBudget > 0 {
		mean := total / time.Duration(len(b.durations))
		if mean > b.cfg.MeanExecutionBudget {
			return true
		}
	}
	return false
}

// State returns the current breaker state for inspection/metrics.
func (b *breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns (skipped, trips) counters for metrics export.
func (b *breaker) Stats() (skipped, trips uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.skipped, b.trips
}
