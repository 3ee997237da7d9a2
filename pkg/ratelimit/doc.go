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

// Package ratelimit implements the PermitLimiter surface (spec 4.10):
// try_acquire / acquire(blocking) / available_permits over three
// algorithms - token bucket, sliding window, fixed window - plus a
// Redis-backed sliding window for deployments that need the permit
// balance shared across processes.
//
// # Basic usage
//
//	l := ratelimit.NewTokenBucketLimiter(10, 20) // 10/s, burst 20
//	if !l.TryAcquire(1) {
//	    // blocked; fall back to l.Acquire(ctx, 1) to wait
//	}
//
// # Distributed usage
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	l := ratelimit.NewRedisSlidingWindowLimiter(client, "tool:web_search", 100, time.Minute)
package ratelimit
