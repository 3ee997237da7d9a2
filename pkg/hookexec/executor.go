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

// Package hookexec runs a hook point's ordered hook list against a
// mutable hooks.Context, enforcing per-hook timeouts, per-point circuit
// breaking, panic isolation, and replay persistence. This is the hardest
// algorithm in the runtime (spec 4.3).
package hookexec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/hector/pkg/hooks"
)

// Recorder persists a completed, replayable hook execution. pkg/replay's
// Store satisfies this; kept as a narrow interface here to avoid an
// import cycle between hookexec and replay.
type Recorder interface {
	Append(ctx context.Context, exec RecordedExecution) error
}

// RecordedExecution is the subset of replay.SerializedHookExecution the
// executor can produce without knowing replay's storage format.
type RecordedExecution struct {
	HookID      string
	HookType    string
	Correlation hooks.CorrelationID
	ContextJSON []byte
	ResultJSON  []byte
	Timestamp   time.Time
	Duration    time.Duration
	ComponentID hooks.ComponentID
	Modified    bool
	Tags        []string
}

// OutcomeKind mirrors the hook Result kinds that stop the chain, plus
// "completed" for a chain that ran to the end.
type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeRetry     OutcomeKind = "retry"
	OutcomeRedirect  OutcomeKind = "redirect"
)

// Outcome is what callers of Fire receive once the chain stops or
// completes.
type Outcome struct {
	Kind OutcomeKind

	CancelReason string

	RetryDelay       time.Duration
	RetryMaxAttempts int
	RetryAttempt     int

	RedirectTarget hooks.ComponentID

	// FinalData is the (possibly Modified-replaced) in-flight payload.
	FinalData map[string]any
}

// Metrics is the minimal metrics sink the executor reports to.
// PrometheusMetrics is the concrete backend; tests can use a no-op.
type Metrics interface {
	HookExecuted(point string, success bool, d time.Duration)
	HookSkippedByBreaker(point string)
	HookTimedOut(point, hookID string)
	HookPanicked(point, hookID string)
}

type noopMetrics struct{}

func (noopMetrics) HookExecuted(string, bool, time.Duration) {}
func (noopMetrics) HookSkippedByBreaker(string)               {}
func (noopMetrics) HookTimedOut(string, string)               {}
func (noopMetrics) HookPanicked(string, string)               {}

// Config configures an Executor.
type Config struct {
	// DefaultTimeout bounds a single hook's Execute call.
	DefaultTimeout time.Duration
	// Breaker configures the per-point circuit breaker.
	Breaker BreakerConfig
	// Metrics receives execution telemetry; defaults to a no-op sink.
	Metrics Metrics
	// Recorder persists replayable executions; may be nil to disable
	// replay persistence entirely.
	Recorder Recorder
	// Logger receives structured execution logs; defaults to slog.Default().
	Logger *slog.Logger
	// Tracer produces OTel spans per hook execution; defaults to a no-op
	// tracer from the global provider.
	Tracer trace.Tracer
}

// Executor runs hooks.Registry-provided hook lists with the guarantees
// described in spec 4.3. One Executor typically backs an entire runtime;
// it keeps one circuit breaker per point.
type Executor struct {
	registry *hooks.Registry
	cfg      Config

	breakers map[string]*breaker
}

// New builds an Executor bound to registry. Hooks registered after
// construction are picked up automatically (HooksFor snapshots at fire
// time).
func New(registry *hooks.Registry, cfg Config) *Executor {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 5 * time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("hookexec")
	}
	return &Executor{
		registry: registry,
		cfg:      cfg,
		breakers: make(map[string]*breaker),
	}
}

func (e *Executor) breakerFor(point hooks.Point) *breaker {
	key := point.String()
	if b, ok := e.breakers[key]; ok {
		return b
	}
	b := newBreaker(e.cfg.Breaker)
	e.breakers[key] = b
	return b
}

// Fire executes every hook registered at point, in order, against hctx,
// applying the result-processing rules in spec 4.3 §"Result processing
// rules". With no hooks registered, Fire is a handful of map lookups and
// returns OutcomeCompleted immediately -- the zero-hooks overhead
// contract.
func (e *Executor) Fire(ctx context.Context, hctx *hooks.Context) Outcome {
	list := e.registry.HooksFor(hctx.Point)
	if len(list) == 0 {
		return Outcome{Kind: OutcomeCompleted, FinalData: hctx.Data}
	}

	b := e.breakerFor(hctx.Point)

	for _, h := range list {
		if cond, ok := h.(hooks.ConditionalHook); ok && !cond.ShouldExecute(hctx) {
			continue
		}

		allow, isTrial := b.Allow()
		if !allow {
			e.cfg.Metrics.HookSkippedByBreaker(hctx.Point.String())
			continue
		}

		result, d, err := e.runOne(ctx, hctx, h)
		timedOut := result.Kind == hooks.ResultCancel && result.Reason == "timeout"
		success := err == nil && !timedOut
		b.Record(success, d)
		e.cfg.Metrics.HookExecuted(hctx.Point.String(), success, d)
		_ = isTrial

		if err != nil {
			// Isolation: a panicking/erroring hook counts as a failure and
			// does not affect subsequent hooks.
			continue
		}

		if hr, ok := h.(hooks.ReplayableHook); ok && e.cfg.Recorder != nil {
			e.persist(ctx, hctx, hr, result, d)
		}

		switch result.Kind {
		case hooks.ResultContinue:
			continue
		case hooks.ResultModified:
			if m, ok := result.Value.(map[string]any); ok {
				hctx.Data = m
			} else {
				hctx.Data["_modified"] = result.Value
			}
			continue
		case hooks.ResultCancel:
			return Outcome{Kind: OutcomeCancelled, CancelReason: result.Reason, FinalData: hctx.Data}
		case hooks.ResultRetry:
			hctx.RetryAttempt++
			hctx.Metadata["retry_attempt"] = fmt.Sprintf("%d", hctx.RetryAttempt)
			return Outcome{
				Kind:             OutcomeRetry,
				RetryDelay:       result.RetryDelay,
				RetryMaxAttempts: result.RetryMaxAttempts,
				RetryAttempt:     hctx.RetryAttempt,
				FinalData:        hctx.Data,
			}
		case hooks.ResultRedirect:
			return Outcome{Kind: OutcomeRedirect, RedirectTarget: result.Target, FinalData: hctx.Data}
		}
	}

	return Outcome{Kind: OutcomeCompleted, FinalData: hctx.Data}
}

func (e *Executor) runOne(ctx context.Context, hctx *hooks.Context, h hooks.Hook) (result hooks.Result, d time.Duration, err error) {
	meta := h.Metadata()
	spanCtx, span := e.cfg.Tracer.Start(ctx, "hook."+meta.Name,
		trace.WithAttributes(
			attribute.String("hook.point", hctx.Point.String()),
			attribute.String("hook.component", hctx.ComponentID.String()),
			attribute.String("hook.correlation_id", hctx.CorrelationID.String()),
		))
	defer span.End()

	if mh, ok := h.(hooks.MetricHook); ok {
		mh.RecordPre(hctx)
	}

	timeout := e.cfg.DefaultTimeout
	deadlineCtx, cancel := context.WithTimeout(spanCtx, timeout)
	defer cancel()

	type execOutcome struct {
		result hooks.Result
		err    error
	}
	done := make(chan execOutcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.cfg.Metrics.HookPanicked(hctx.Point.String(), meta.Name)
				done <- execOutcome{err: fmt.Errorf("hook %q panicked: %v", meta.Name, r)}
			}
		}()
		res, execErr := h.Execute(deadlineCtx, hctx)
		done <- execOutcome{result: res, err: execErr}
	}()

	select {
	case out := <-done:
		d = time.Since(start)
		if mh, ok := h.(hooks.MetricHook); ok {
			mh.RecordPost(hctx, d, out.result)
		}
		if out.err != nil {
			e.cfg.Logger.Warn("hook failed", "hook", meta.Name, "point", hctx.Point.String(), "error", out.err)
			return hooks.Result{}, d, out.err
		}
		return out.result, d, nil
	case <-deadlineCtx.Done():
		d = time.Since(start)
		e.cfg.Metrics.HookTimedOut(hctx.Point.String(), meta.Name)
		e.cfg.Logger.Warn("hook timed out", "hook", meta.Name, "point", hctx.Point.String(), "timeout", timeout)
		return hooks.Cancel("timeout"), d, nil
	}
}

func (e *Executor) persist(ctx context.Context, hctx *hooks.Context, h hooks.ReplayableHook, result hooks.Result, d time.Duration) {
	ctxBytes, err := h.SerializeContext(hctx)
	if err != nil {
		e.cfg.Logger.Warn("failed to serialize hook context for replay", "hook", h.Metadata().Name, "error", err)
		return
	}
	resultBytes := encodeResult(result)

	rec := RecordedExecution{
		HookID:      h.ReplayID(),
		HookType:    h.Metadata().Name,
		Correlation: hctx.CorrelationID,
		ContextJSON: ctxBytes,
		ResultJSON:  resultBytes,
		Timestamp:   time.Now(),
		Duration:    d,
		ComponentID: hctx.ComponentID,
		Modified:    result.Kind == hooks.ResultModified,
		Tags:        h.Metadata().Tags,
	}
	if err := e.cfg.Recorder.Append(ctx, rec); err != nil {
		e.cfg.Logger.Warn("failed to persist hook execution", "hook", h.Metadata().Name, "error", err)
	}
}

// BreakerState reports the current state of the point's circuit breaker,
// for health/metrics endpoints.
func (e *Executor) BreakerState(point hooks.Point) BreakerState {
	return e.breakerFor(point).State()
}
