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
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlidingWindowLimiter is a PermitLimiter backed by a Redis sorted
// set, so the permit balance for key is shared across every process
// pointed at the same Redis instance instead of living in one process's
// memory. Each acquired permit is a timestamped member; checking the
// balance means trimming expired members and counting what is left,
// exactly the sliding-window algorithm SlidingWindowLimiter runs
// in-process.
type RedisSlidingWindowLimiter struct {
	client *redis.Client
	key    string
	limit  int64
	window time.Duration
}

// NewRedisSlidingWindowLimiter builds a limiter allowing up to limit
// permits per window, keyed under key on client.
func NewRedisSlidingWindowLimiter(client *redis.Client, key string, limit int64, window time.Duration) *RedisSlidingWindowLimiter {
	return &RedisSlidingWindowLimiter{client: client, key: key, limit: limit, window: window}
}

// TryAcquire reports whether n permits are available right now,
// trimming expired members and, if there is room, recording n new ones
// atomically in a single pipeline.
func (l *RedisSlidingWindowLimiter) TryAcquire(n int64) bool {
	ctx := context.Background()
	now := time.Now()
	windowStart := now.Add(-l.window)

	if err := l.client.ZRemRangeByScore(ctx, l.key, "0", strconv.FormatInt(windowStart.UnixNano(), 10)).Err(); err != nil {
		return false
	}

	count, err := l.client.ZCard(ctx, l.key).Result()
	if err != nil {
		return false
	}
	if int64(count)+n > l.limit {
		return false
	}

	pipe := l.client.Pipeline()
	for i := int64(0); i < n; i++ {
		member := fmt.Sprintf("%d-%d", now.UnixNano(), i)
		pipe.ZAdd(ctx, l.key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	}
	pipe.Expire(ctx, l.key, 2*l.window)
	_, err = pipe.Exec(ctx)
	return err == nil
}

// Acquire polls TryAcquire until it succeeds or ctx is done.
func (l *RedisSlidingWindowLimiter) Acquire(ctx context.Context, n int64) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if l.TryAcquire(n) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ratelimit: acquire %d permits from %q: %w", n, l.key, ctx.Err())
		case <-ticker.C:
		}
	}
}

// AvailablePermits reports the current permit balance, best-effort; a
// Redis error is reported as zero available rather than panicking, since
// callers treat this as advisory.
func (l *RedisSlidingWindowLimiter) AvailablePermits() int64 {
	ctx := context.Background()
	windowStart := time.Now().Add(-l.window)
	if err := l.client.ZRemRangeByScore(ctx, l.key, "0", strconv.FormatInt(windowStart.UnixNano(), 10)).Err(); err != nil {
		return 0
	}
	count, err := l.client.ZCard(ctx, l.key).Result()
	if err != nil {
		return 0
	}
	remaining := l.limit - count
	if remaining < 0 {
		return 0
	}
	return remaining
}

var _ PermitLimiter = (*RedisSlidingWindowLimiter)(nil)
