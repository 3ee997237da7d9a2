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

package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/kadirpekel/hector/pkg/hooks"
)

// Mode selects how a stored execution is replayed.
type Mode string

const (
	// ModeExact re-executes the hook against the original context.
	ModeExact Mode = "exact"
	// ModeModified applies ParameterModification entries before re-execution.
	ModeModified Mode = "modified"
	// ModeSimulate does not run the hook; it returns the stored result.
	ModeSimulate Mode = "simulate"
	// ModeDebug re-executes the hook exactly as ModeExact does; Replay
	// records nothing extra for it.
	ModeDebug Mode = "debug"
)

// PathHead is the closed set of supported dotted-path roots for
// ParameterModification, expressed as a typed AST rather than parsed at
// call time (spec 9, "Dotted-path parameter modification").
type PathHead string

const (
	HeadData     PathHead = "data"
	HeadMetadata PathHead = "metadata"
)

// Path is a parsed dotted path such as "context.data.key" ->
// {Head: data, Key: "key"}.
type Path struct {
	Head PathHead
	Key  string
}

// ParsePath parses "context.data.k" / "context.metadata.k" / "data.k" /
// "metadata.k". Unknown heads return ok=false so callers can surface a
// warning instead of failing the whole replay.
func ParsePath(raw string) (Path, bool) {
	parts := strings.Split(raw, ".")
	if len(parts) >= 1 && parts[0] == "context" {
		parts = parts[1:]
	}
	if len(parts) != 2 {
		return Path{}, false
	}
	switch PathHead(parts[0]) {
	case HeadData:
		return Path{Head: HeadData, Key: parts[1]}, true
	case HeadMetadata:
		return Path{Head: HeadMetadata, Key: parts[1]}, true
	default:
		return Path{}, false
	}
}

// ParameterModification describes one edit to apply before a Modified
// replay.
type ParameterModification struct {
	Path    string
	Value   any
	Enabled bool
}

// Apply mutates hctx per mods, skipping disabled or unparseable entries.
// It returns the list of warnings for paths it could not apply, and an
// error only when not a single modification could be applied.
func Apply(hctx *hooks.Context, mods []ParameterModification) ([]string, error) {
	var warnings []string
	applied := 0
	for _, m := range mods {
		if !m.Enabled {
			continue
		}
		p, ok := ParsePath(m.Path)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unsupported path %q", m.Path))
			continue
		}
		switch p.Head {
		case HeadData:
			hctx.Data[p.Key] = m.Value
		case HeadMetadata:
			if s, ok := m.Value.(string); ok {
				hctx.Metadata[p.Key] = s
			} else {
				warnings = append(warnings, fmt.Sprintf("metadata path %q requires a string value", m.Path))
				continue
			}
		}
		applied++
	}
	if applied == 0 && len(mods) > 0 {
		return warnings, fmt.Errorf("replay: no modification could be applied")
	}
	return warnings, nil
}

// HookLookup resolves a hook id to its live ReplayableHook implementation,
// since the store only has bytes.
type HookLookup func(hookID string) (hooks.ReplayableHook, bool)

// Manager enumerates persisted executions and replays them.
type Manager struct {
	store  *Store
	lookup HookLookup
}

// NewManager builds a Manager over store, resolving hook ids via lookup.
func NewManager(store *Store, lookup HookLookup) *Manager {
	return &Manager{store: store, lookup: lookup}
}

// ByExecutionID, ByCorrelationID, ByHookID, ByHookType enumerate
// persisted executions by each of the spec's selector dimensions.
func (m *Manager) ByExecutionID(ctx context.Context, id string) (*SerializedHookExecution, error) {
	exec, ok, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("replay: execution %q not found", id)
	}
	return exec, nil
}

func (m *Manager) ByCorrelationID(ctx context.Context, corr string) ([]SerializedHookExecution, error) {
	return m.store.ByCorrelation(ctx, corr)
}

func (m *Manager) ByHookID(ctx context.Context, hookID string) ([]SerializedHookExecution, error) {
	return m.store.ByHookID(ctx, hookID)
}

func (m *Manager) ByHookType(ctx context.Context, hookType string) ([]SerializedHookExecution, error) {
	return m.store.ByHookType(ctx, hookType)
}

// Request configures one replay invocation.
type Request struct {
	ExecutionID   string
	Mode          Mode
	Modifications []ParameterModification
}

// Outcome is the result of replaying one execution.
type Outcome struct {
	ExecutionID string
	Result      hooks.Result
	Warnings    []string
	Diff        *Diff
}

// Replay executes req against the stored execution per its Mode.
func (m *Manager) Replay(ctx context.Context, req Request) (*Outcome, error) {
	exec, err := m.ByExecutionID(ctx, req.ExecutionID)
	if err != nil {
		return nil, err
	}

	h, ok := m.lookup(exec.HookID)
	if !ok {
		return nil, fmt.Errorf("replay: hook %q not registered", exec.HookID)
	}

	origResult, err := decodeWireResult(exec.Result)
	if err != nil {
		return nil, fmt.Errorf("replay: decode stored result: %w", err)
	}

	if req.Mode == ModeSimulate {
		return &Outcome{ExecutionID: exec.ExecutionID, Result: origResult}, nil
	}

	hctx, err := h.DeserializeContext(exec.HookContext)
	if err != nil {
		return nil, fmt.Errorf("replay: deserialize context: %w", err)
	}

	var warnings []string
	if req.Mode == ModeModified {
		warnings, err = Apply(hctx, req.Modifications)
		if err != nil {
			return nil, err
		}
	}

	result, execErr := h.Execute(ctx, hctx)
	if execErr != nil {
		return nil, fmt.Errorf("replay: hook execution failed: %w", execErr)
	}

	diff := Compare(origResult, result, nil, hctx)

	return &Outcome{ExecutionID: exec.ExecutionID, Result: result, Warnings: warnings, Diff: diff}, nil
}

// BatchRequest configures a replay across many executions.
type BatchRequest struct {
	Requests      []Request
	MaxConcurrent int
	StopOnError   bool
	Sequential    bool
}

// BatchOutcome is one item's result in a batch replay.
type BatchOutcome struct {
	ExecutionID string
	Outcome     *Outcome
	Err         error
}

// ReplayBatch runs every request in br, sequentially or with bounded
// concurrency, honoring StopOnError.
func (m *Manager) ReplayBatch(ctx context.Context, br BatchRequest) []BatchOutcome {
	out := make([]BatchOutcome, len(br.Requests))

	if br.Sequential || br.MaxConcurrent <= 1 {
		for i, req := range br.Requests {
			o, err := m.Replay(ctx, req)
			out[i] = BatchOutcome{ExecutionID: req.ExecutionID, Outcome: o, Err: err}
			if err != nil && br.StopOnError {
				return out[:i+1]
			}
		}
		return out
	}

	sem := make(chan struct{}, br.MaxConcurrent)
	var wg sync.WaitGroup
	var stopped sync.Once
	var aborted bool
	var mu sync.Mutex

	for i, req := range br.Requests {
		mu.Lock()
		if aborted {
			mu.Unlock()
			break
		}
		mu.Unlock()

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, req Request) {
			defer wg.Done()
			defer func() { <-sem }()
			o, err := m.Replay(ctx, req)
			out[i] = BatchOutcome{ExecutionID: req.ExecutionID, Outcome: o, Err: err}
			if err != nil && br.StopOnError {
				stopped.Do(func() {
					mu.Lock()
					aborted = true
					mu.Unlock()
				})
			}
		}(i, req)
	}
	wg.Wait()
	return out
}

// Diff is a structured, value-level comparison between an original and a
// replayed HookResult (and optionally context).
type Diff struct {
	ResultChanged  bool
	OriginalResult hooks.Result
	ReplayedResult hooks.Result
	DataChanges    map[string][2]any // key -> [original, replayed]
}

// Compare builds a value-level Diff; origCtx may be nil when unavailable.
func Compare(orig, replayed hooks.Result, origCtx, replayedCtx *hooks.Context) *Diff {
	d := &Diff{
		OriginalResult: orig,
		ReplayedResult: replayed,
		ResultChanged:  !reflect.DeepEqual(orig, replayed),
		DataChanges:    make(map[string][2]any),
	}
	if origCtx == nil || replayedCtx == nil {
		return d
	}
	for k, v := range replayedCtx.Data {
		if ov, ok := origCtx.Data[k]; !ok || !reflect.DeepEqual(ov, v) {
			d.DataChanges[k] = [2]any{origCtx.Data[k], v}
		}
	}
	return d
}

func decodeWireResult(raw []byte) (hooks.Result, error) {
	var w struct {
		Kind             hooks.ResultKind  `json:"kind"`
		Value            any               `json:"value,omitempty"`
		Reason           string            `json:"reason,omitempty"`
		RetryDelayMS     int64             `json:"retry_delay_ms,omitempty"`
		RetryMaxAttempts int               `json:"retry_max_attempts,omitempty"`
		Target           hooks.ComponentID `json:"target,omitempty"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return hooks.Result{}, err
	}
	return hooks.Result{
		Kind:             w.Kind,
		Value:            w.Value,
		Reason:           w.Reason,
		RetryMaxAttempts: w.RetryMaxAttempts,
		Target:           w.Target,
	}, nil
}
