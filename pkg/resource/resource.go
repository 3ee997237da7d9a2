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

// Package resource caps per-invocation consumption of memory, CPU time,
// wall time, file size and concurrent operations, returning a typed
// error the moment any cap is exceeded.
package resource

import (
	"fmt"
	"sync"
	"time"

	"github.com/kadirpekel/hector/pkg/corerr"
)

// Limits bounds a single invocation. A zero field means "no cap".
type Limits struct {
	MaxMemoryBytes    int64
	MaxCPUTime        time.Duration
	MaxWallTime       time.Duration
	MaxFileSizeBytes  int64
	MaxConcurrentOps  int
}

// Usage is the running consumption measured against Limits.
type Usage struct {
	MemoryBytes   int64
	CPUTime       time.Duration
	WallTime      time.Duration
	FileSizeBytes int64
	ConcurrentOps int
}

// Tracker enforces Limits for a single invocation. One Tracker is
// created per invocation (tool call, agent step); it is not meant to
// outlive it.
type Tracker struct {
	limits    Limits
	mu        sync.Mutex
	usage     Usage
	startedAt time.Time
}

// NewTracker starts tracking wall time from now.
func NewTracker(limits Limits) *Tracker {
	return &Tracker{limits: limits, startedAt: time.Now()}
}

// exceeds reports which dimension first breaches its limit, or "" if none.
func (t *Tracker) exceeds() string {
	if t.limits.MaxMemoryBytes > 0 && t.usage.MemoryBytes > t.limits.MaxMemoryBytes {
		return "memory"
	}
	if t.limits.MaxCPUTime > 0 && t.usage.CPUTime > t.limits.MaxCPUTime {
		return "cpu_time"
	}
	if t.limits.MaxWallTime > 0 && time.Since(t.startedAt) > t.limits.MaxWallTime {
		return "wall_time"
	}
	if t.limits.MaxFileSizeBytes > 0 && t.usage.FileSizeBytes > t.limits.MaxFileSizeBytes {
		return "file_size"
	}
	if t.limits.MaxConcurrentOps > 0 && t.usage.ConcurrentOps > t.limits.MaxConcurrentOps {
		return "concurrent_ops"
	}
	return ""
}

// RecordMemory accounts additional memory usage and enforces the cap.
func (t *Tracker) RecordMemory(bytes int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.MemoryBytes += bytes
	return t.check()
}

// RecordCPU accounts additional CPU time and enforces the cap.
func (t *Tracker) RecordCPU(d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.CPUTime += d
	return t.check()
}

// RecordFileSize accounts a file write/read size and enforces the cap.
func (t *Tracker) RecordFileSize(bytes int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bytes > t.usage.FileSizeBytes {
		t.usage.FileSizeBytes = bytes
	}
	return t.check()
}

// BeginOp increments the concurrent-op count and enforces the cap. The
// returned func must be called exactly once to release the slot. When
// the cap is exceeded no slot is taken and the returned func is a no-op.
func (t *Tracker) BeginOp() (release func(), err error) {
	t.mu.Lock()
	t.usage.ConcurrentOps++
	err = t.check()
	if err != nil {
		t.usage.ConcurrentOps--
		t.mu.Unlock()
		return func() {}, err
	}
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.usage.ConcurrentOps--
		t.mu.Unlock()
	}, err
}

// CheckWallTime re-evaluates the wall-clock cap without recording
// anything, for callers that want to poll during a long operation.
func (t *Tracker) CheckWallTime() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.check()
}

func (t *Tracker) check() error {
	if dim := t.exceeds(); dim != "" {
		return corerr.New(corerr.QuotaExceeded, "resource_tracker",
			fmt.Errorf("%s limit exceeded", dim))
	}
	return nil
}

// Usage returns a snapshot of current consumption.
func (t *Tracker) Usage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.usage
	u.WallTime = time.Since(t.startedAt)
	return u
}
