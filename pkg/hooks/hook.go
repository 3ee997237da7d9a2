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

package hooks

import (
	"context"
	"time"
)

// Hook is the minimal extension point contract: execute against a mutable
// context and report metadata for ordering/discovery.
type Hook interface {
	Execute(ctx context.Context, hctx *Context) (Result, error)
	Metadata() Metadata
}

// ConditionalHook lets a hook opt out of running for a given context
// without being recorded as executed. should_execute in the spec.
type ConditionalHook interface {
	Hook
	ShouldExecute(hctx *Context) bool
}

// ReplayableHook additionally knows how to serialize/deserialize its
// context and report a stable replay identity, so the executor can
// persist and later replay its executions deterministically.
type ReplayableHook interface {
	Hook
	SerializeContext(hctx *Context) ([]byte, error)
	DeserializeContext(data []byte) (*Context, error)
	ReplayID() string
}

// MetricHook observes hook execution timing independent of its own
// Execute outcome -- used by built-in logging/metrics hooks.
type MetricHook interface {
	Hook
	RecordPre(hctx *Context)
	RecordPost(hctx *Context, d time.Duration, result Result)
}
