package hookexec

import (
	"context"
	"testing"
	"time"

	"github.com/kadirpekel/hector/pkg/hooks"
)

type fnHook struct {
	name     string
	priority int32
	fn       func(ctx context.Context, hctx *hooks.Context) (hooks.Result, error)
}

func (h *fnHook) Execute(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
	return h.fn(ctx, hctx)
}

func (h *fnHook) Metadata() hooks.Metadata {
	return hooks.Metadata{Name: h.name, Priority: h.priority}
}

func newTestExecutor(reg *hooks.Registry) *Executor {
	return New(reg, Config{DefaultTimeout: 200 * time.Millisecond, Breaker: DefaultBreakerConfig()})
}

// TestExecutor_Cancel exercises scenario S3: a hook cancelling
// BeforeToolExecution stops the chain and no further hook on that point
// fires.
func TestExecutor_Cancel(t *testing.T) {
	reg := hooks.NewRegistry()
	calledAfter := false

	_ = reg.Register(hooks.BeforeToolExecution, "quota", &fnHook{
		name: "quota",
		fn: func(context.Context, *hooks.Context) (hooks.Result, error) {
			return hooks.Cancel("quota"), nil
		},
	})
	_ = reg.Register(hooks.BeforeToolExecution, "never", &fnHook{
		name: "never",
		fn: func(context.Context, *hooks.Context) (hooks.Result, error) {
			calledAfter = true
			return hooks.Continue(), nil
		},
	})

	exec := newTestExecutor(reg)
	hctx := hooks.NewContext(hooks.BeforeToolExecution, hooks.ComponentID{Kind: hooks.ComponentTool, Name: "calculator"}, hooks.NewCorrelationID())

	outcome := exec.Fire(context.Background(), hctx)
	if outcome.Kind != OutcomeCancelled {
		t.Fatalf("got %v", outcome.Kind)
	}
	if outcome.CancelReason != "quota" {
		t.Fatalf("got reason %q", outcome.CancelReason)
	}
	if calledAfter {
		t.Fatal("second hook must not run after Cancel")
	}
}

func TestExecutor_ZeroHooksCompletesImmediately(t *testing.T) {
	reg := hooks.NewRegistry()
	exec := newTestExecutor(reg)
	hctx := hooks.NewContext(hooks.AfterAgentExecution, hooks.ComponentID{Kind: hooks.ComponentAgent, Name: "a"}, hooks.NewCorrelationID())
	outcome := exec.Fire(context.Background(), hctx)
	if outcome.Kind != OutcomeCompleted {
		t.Fatalf("got %v", outcome.Kind)
	}
}

func TestExecutor_ModifiedReplacesPayload(t *testing.T) {
	reg := hooks.NewRegistry()
	_ = reg.Register(hooks.BeforeAgentExecution, "m", &fnHook{
		name: "m",
		fn: func(context.Context, *hooks.Context) (hooks.Result, error) {
			return hooks.Modified(map[string]any{"replaced": true}), nil
		},
	})
	exec := newTestExecutor(reg)
	hctx := hooks.NewContext(hooks.BeforeAgentExecution, hooks.ComponentID{Kind: hooks.ComponentAgent, Name: "a"}, hooks.NewCorrelationID())
	outcome := exec.Fire(context.Background(), hctx)
	if outcome.Kind != OutcomeCompleted {
		t.Fatalf("got %v", outcome.Kind)
	}
	if v, ok := outcome.FinalData["replaced"]; !ok || v != true {
		t.Fatalf("payload not replaced: %v", outcome.FinalData)
	}
}

func TestExecutor_TimeoutCancelsAndCountsAsFailure(t *testing.T) {
	reg := hooks.NewRegistry()
	_ = reg.Register(hooks.BeforeToolExecution, "slow", &fnHook{
		name: "slow",
		fn: func(ctx context.Context, _ *hooks.Context) (hooks.Result, error) {
			<-ctx.Done()
			return hooks.Continue(), nil
		},
	})
	exec := New(reg, Config{DefaultTimeout: 20 * time.Millisecond, Breaker: DefaultBreakerConfig()})
	hctx := hooks.NewContext(hooks.BeforeToolExecution, hooks.ComponentID{Kind: hooks.ComponentTool, Name: "t"}, hooks.NewCorrelationID())
	outcome := exec.Fire(context.Background(), hctx)
	if outcome.Kind != OutcomeCancelled || outcome.CancelReason != "timeout" {
		t.Fatalf("got %+v", outcome)
	}
}

// TestExecutor_CircuitBreakerTripsAfterThreshold exercises property P5.
func TestExecutor_CircuitBreakerTripsAfterThreshold(t *testing.T) {
	reg := hooks.NewRegistry()
	calls := 0
	_ = reg.Register(hooks.ToolError, "always-fails", &fnHook{
		name: "always-fails",
		fn: func(context.Context, *hooks.Context) (hooks.Result, error) {
			calls++
			return hooks.Result{}, context.DeadlineExceeded
		},
	})

	cfg := DefaultBreakerConfig()
	cfg.Window = 4
	cfg.FailureRatio = 0.5
	cfg.Cooldown = time.Hour

	exec := New(reg, Config{DefaultTimeout: 200 * time.Millisecond, Breaker: cfg})

	for i := 0; i < cfg.Window; i++ {
		exec.Fire(context.Background(), hooks.NewContext(hooks.ToolError, hooks.ComponentID{Kind: hooks.ComponentTool, Name: "t"}, hooks.NewCorrelationID()))
	}
	if exec.BreakerState(hooks.ToolError) != BreakerOpen {
		t.Fatalf("expected breaker open after %d failures, got %v", cfg.Window, exec.BreakerState(hooks.ToolError))
	}

	callsBefore := calls
	exec.Fire(context.Background(), hooks.NewContext(hooks.ToolError, hooks.ComponentID{Kind: hooks.ComponentTool, Name: "t"}, hooks.NewCorrelationID()))
	if calls != callsBefore {
		t.Fatal("breaker open must short-circuit without invoking the hook")
	}
}
