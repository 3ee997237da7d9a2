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

// Package replay persists hook executions durably and lets callers
// deterministically re-run them later (pkg/hookexec calls in through its
// Recorder interface; callers replay through Manager). Storage is layered on
// statestore.Store so any backend (memory or SQL) works unmodified.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/hector/pkg/corerr"
	"github.com/kadirpekel/hector/pkg/hookexec"
	"github.com/kadirpekel/hector/pkg/hooks"
	"github.com/kadirpekel/hector/pkg/statestore"
)

// SerializedHookExecution is the immutable, durable record of one hook
// run (spec 3, "SerializedHookExecution").
type SerializedHookExecution struct {
	ExecutionID           string              `json:"execution_id"`
	HookID                string              `json:"hook_id"`
	HookType              string              `json:"hook_type"`
	CorrelationID         string              `json:"correlation_id"`
	HookContext           []byte              `json:"hook_context"`
	Result                []byte              `json:"result"`
	Timestamp             time.Time           `json:"timestamp"`
	DurationMS            int64               `json:"duration_ms"`
	ComponentID           hooks.ComponentID   `json:"component_id"`
	ModifiedOperation     bool                `json:"modified_operation"`
	Tags                  []string            `json:"tags,omitempty"`
	RetentionPriority     int32               `json:"retention_priority"`
	ContextSize           int                 `json:"context_size"`
	ContainsSensitiveData bool                `json:"contains_sensitive_data"`
	Metadata              map[string]string   `json:"metadata,omitempty"`
}

// scope is the statestore scope replay records live in: a single custom
// "replay" scope, because executions are cross-cutting and indexed
// independently of any one agent/session scope.
var scope = statestore.Custom("replay")

const (
	execKeyPrefix = "exec/"
	corrKeyPrefix = "by_corr/"
	hookKeyPrefix = "by_hook/"
	typeKeyPrefix = "by_type/"
)

// Store is the append-only durable log of hook executions (I1: every
// execution is keyed by a unique execution_id and append-only).
type Store struct {
	backend statestore.Store
	mu      sync.Mutex // serializes index updates; backend itself may be concurrency-safe independently
}

// NewStore wraps a statestore.Store as a replay log.
func NewStore(backend statestore.Store) *Store {
	return &Store{backend: backend}
}

// Append persists one hook execution, assigning it a fresh execution_id.
// It satisfies hookexec.Recorder.
func (s *Store) Append(ctx context.Context, rec hookexec.RecordedExecution) error {
	exec := SerializedHookExecution{
		ExecutionID:       uuid.NewString(),
		HookID:            rec.HookID,
		HookType:          rec.HookType,
		CorrelationID:     rec.Correlation.String(),
		HookContext:       rec.ContextJSON,
		Result:            rec.ResultJSON,
		Timestamp:         rec.Timestamp,
		DurationMS:        rec.Duration.Milliseconds(),
		ComponentID:       rec.ComponentID,
		ModifiedOperation: rec.Modified,
		Tags:              rec.Tags,
		ContextSize:       len(rec.ContextJSON),
	}
	return s.AppendExecution(ctx, exec)
}

// AppendExecution persists a fully-formed execution record (used directly
// by tests and by callers that build their own SerializedHookExecution).
func (s *Store) AppendExecution(ctx context.Context, exec SerializedHookExecution) error {
	if exec.ExecutionID == "" {
		exec.ExecutionID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := statestore.WriteValue(ctx, s.backend, scope, execKeyPrefix+exec.ExecutionID, exec); err != nil {
		return corerr.New(corerr.Storage, "replay.append", err)
	}

	if err := s.appendIndex(ctx, corrKeyPrefix+exec.CorrelationID, exec.ExecutionID); err != nil {
		return err
	}
	if exec.HookID != "" {
		if err := s.appendIndex(ctx, hookKeyPrefix+exec.HookID, exec.ExecutionID); err != nil {
			return err
		}
	}
	if exec.HookType != "" {
		if err := s.appendIndex(ctx, typeKeyPrefix+exec.HookType, exec.ExecutionID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) appendIndex(ctx context.Context, key, executionID string) error {
	var ids []string
	_, err := statestore.ReadInto(ctx, s.backend, scope, key, &ids)
	if err != nil {
		return corerr.New(corerr.Storage, "replay.index", err)
	}
	ids = append(ids, executionID)
	if err := statestore.WriteValue(ctx, s.backend, scope, key, ids); err != nil {
		return corerr.New(corerr.Storage, "replay.index", err)
	}
	return nil
}

// Get fetches one execution by id.
func (s *Store) Get(ctx context.Context, executionID string) (*SerializedHookExecution, bool, error) {
	var exec SerializedHookExecution
	ok, err := statestore.ReadInto(ctx, s.backend, scope, execKeyPrefix+executionID, &exec)
	if err != nil {
		return nil, false, corerr.New(corerr.Storage, "replay.get", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &exec, true, nil
}

// ByCorrelation returns every execution for corr, ordered by wall-clock
// time ascending (I2).
func (s *Store) ByCorrelation(ctx context.Context, corr string) ([]SerializedHookExecution, error) {
	return s.byIndex(ctx, corrKeyPrefix+corr)
}

// ByHookID returns every execution of a given replayable hook id.
func (s *Store) ByHookID(ctx context.Context, hookID string) ([]SerializedHookExecution, error) {
	return s.byIndex(ctx, hookKeyPrefix+hookID)
}

// ByHookType returns every execution of hooks sharing a hook type/name.
func (s *Store) ByHookType(ctx context.Context, hookType string) ([]SerializedHookExecution, error) {
	return s.byIndex(ctx, typeKeyPrefix+hookType)
}

// InTimeRange filters executions within [from, to]. It scans the given
// candidate set (typically the result of ByCorrelation/ByHookID) since
// the backend has no native time index.
func InTimeRange(execs []SerializedHookExecution, from, to time.Time) []SerializedHookExecution {
	var out []SerializedHookExecution
	for _, e := range execs {
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) byIndex(ctx context.Context, key string) ([]SerializedHookExecution, error) {
	var ids []string
	_, err := statestore.ReadInto(ctx, s.backend, scope, key, &ids)
	if err != nil {
		return nil, corerr.New(corerr.Storage, "replay.byIndex", err)
	}
	out := make([]SerializedHookExecution, 0, len(ids))
	for _, id := range ids {
		exec, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, *exec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// RoundTrip verifies I3: deserializing a serialized execution's context
// reproduces an equivalent hooks.Context modulo the transient timestamp.
func RoundTrip(exec SerializedHookExecution, h hooks.ReplayableHook) (*hooks.Context, error) {
	hctx, err := h.DeserializeContext(exec.HookContext)
	if err != nil {
		return nil, fmt.Errorf("replay: deserialize context: %w", err)
	}
	return hctx, nil
}

// DecodeResult unmarshals a stored result JSON blob into a generic map for
// comparison (Manager decodes into hooks.Result and diffs with Compare
// instead).
func DecodeResult(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
