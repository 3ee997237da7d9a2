// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PermitLimiter is the package's rate-limiting surface: it gates
// arbitrary units of work (tool calls, tokens, concurrent tasks). Three
// algorithms implement it below, each suited to a different shape of
// burst tolerance.
type PermitLimiter interface {
	// TryAcquire reports whether n permits are available right now,
	// consuming them if so. Never blocks.
	TryAcquire(n int64) bool

	// Acquire blocks until n permits are available or ctx is done.
	Acquire(ctx context.Context, n int64) error

	// AvailablePermits reports the current permit balance, best-effort.
	AvailablePermits() int64
}

// TokenBucketLimiter wraps golang.org/x/time/rate, the same token-bucket
// algorithm the broader Go ecosystem standardizes on.
type TokenBucketLimiter struct {
	limiter *rate.Limiter
}

// NewTokenBucketLimiter builds a limiter refilling at ratePerSecond with
// the given burst capacity.
func NewTokenBucketLimiter(ratePerSecond float64, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (l *TokenBucketLimiter) TryAcquire(n int64) bool {
	return l.limiter.AllowN(time.Now(), int(n))
}

func (l *TokenBucketLimiter) Acquire(ctx context.Context, n int64) error {
	return l.limiter.WaitN(ctx, int(n))
}

func (l *TokenBucketLimiter) AvailablePermits() int64 {
	return int64(l.limiter.TokensAt(time.Now()))
}

// SlidingWindowLimiter counts timestamped events within a trailing
// window, evicting entries that have aged out on each check. Smoother
// than a fixed window at the boundary, at the cost of O(limit) memory.
type SlidingWindowLimiter struct {
	mu     sync.Mutex
	limit  int64
	window time.Duration
	events []time.Time
}

// NewSlidingWindowLimiter allows up to limit events per window.
func NewSlidingWindowLimiter(limit int64, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{limit: limit, window: window}
}

func (l *SlidingWindowLimiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.events) && l.events[i].Before(cutoff) {
		i++
	}
	l.events = l.events[i:]
}

func (l *SlidingWindowLimiter) TryAcquire(n int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.evict(now)
	if int64(len(l.events))+n > l.limit {
		return false
	}
	for i := int64(0); i < n; i++ {
		l.events = append(l.events, now)
	}
	return true
}

func (l *SlidingWindowLimiter) Acquire(ctx context.Context, n int64) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if l.TryAcquire(n) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ratelimit: acquire %d permits: %w", n, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *SlidingWindowLimiter) AvailablePermits() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(time.Now())
	remaining := l.limit - int64(len(l.events))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FixedWindowLimiter counts events in discrete, aligned windows and
// resets the counter wholesale when the window rolls over. Cheapest of
// the three, with the classic boundary-burst tradeoff.
type FixedWindowLimiter struct {
	mu          sync.Mutex
	limit       int64
	window      time.Duration
	windowStart time.Time
	count       int64
}

// NewFixedWindowLimiter allows up to limit events per window duration.
func NewFixedWindowLimiter(limit int64, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{limit: limit, window: window, windowStart: time.Now()}
}

func (l *FixedWindowLimiter) rollover(now time.Time) {
	if now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}
}

func (l *FixedWindowLimiter) TryAcquire(n int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover(time.Now())
	if l.count+n > l.limit {
		return false
	}
	l.count += n
	return true
}

func (l *FixedWindowLimiter) Acquire(ctx context.Context, n int64) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if l.TryAcquire(n) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ratelimit: acquire %d permits: %w", n, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *FixedWindowLimiter) AvailablePermits() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover(time.Now())
	remaining := l.limit - l.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

var (
	_ PermitLimiter = (*TokenBucketLimiter)(nil)
	_ PermitLimiter = (*SlidingWindowLimiter)(nil)
	_ PermitLimiter = (*FixedWindowLimiter)(nil)
)
