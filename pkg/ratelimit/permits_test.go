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
	"testing"
	"time"
)

func TestTokenBucketLimiter_TryAcquireRespectsBurst(t *testing.T) {
	l := NewTokenBucketLimiter(1, 2)
	if !l.TryAcquire(2) {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.TryAcquire(1) {
		t.Fatal("expected bucket to be exhausted")
	}
}

func TestSlidingWindowLimiter_TryAcquireEnforcesLimit(t *testing.T) {
	l := NewSlidingWindowLimiter(2, time.Hour)
	if !l.TryAcquire(1) || !l.TryAcquire(1) {
		t.Fatal("expected first two acquisitions to succeed")
	}
	if l.TryAcquire(1) {
		t.Fatal("expected third acquisition to be denied")
	}
	if got := l.AvailablePermits(); got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

func TestFixedWindowLimiter_ResetsAfterWindow(t *testing.T) {
	l := NewFixedWindowLimiter(1, 20*time.Millisecond)
	if !l.TryAcquire(1) {
		t.Fatal("expected first acquisition to succeed")
	}
	if l.TryAcquire(1) {
		t.Fatal("expected second acquisition in same window to fail")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.TryAcquire(1) {
		t.Fatal("expected acquisition after window rollover to succeed")
	}
}

func TestFixedWindowLimiter_AcquireBlocksUntilAvailable(t *testing.T) {
	l := NewFixedWindowLimiter(1, 20*time.Millisecond)
	if !l.TryAcquire(1) {
		t.Fatal("expected first acquisition to succeed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Acquire(ctx, 1); err != nil {
		t.Fatalf("expected blocking acquire to eventually succeed, got %v", err)
	}
}
