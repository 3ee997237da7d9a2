package replay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kadirpekel/hector/pkg/hookexec"
	"github.com/kadirpekel/hector/pkg/hooks"
	"github.com/kadirpekel/hector/pkg/statestore"
)

// echoHook is a ReplayableHook that returns Modified(echo-of-data["n"])
// and can serialize/deserialize its context via plain JSON.
type echoHook struct{ id string }

func (h *echoHook) Execute(_ context.Context, hctx *hooks.Context) (hooks.Result, error) {
	n, _ := hctx.Data["n"].(float64)
	return hooks.Modified(map[string]any{"n": n + 1}), nil
}

func (h *echoHook) Metadata() hooks.Metadata { return hooks.Metadata{Name: h.id} }

func (h *echoHook) ReplayID() string { return h.id }

type wireCtx struct {
	Data     map[string]any    `json:"data"`
	Metadata map[string]string `json:"metadata"`
}

func (h *echoHook) SerializeContext(hctx *hooks.Context) ([]byte, error) {
	return json.Marshal(wireCtx{Data: hctx.Data, Metadata: hctx.Metadata})
}

func (h *echoHook) DeserializeContext(data []byte) (*hooks.Context, error) {
	var w wireCtx
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	hctx := hooks.NewContext(hooks.BeforeAgentExecution, hooks.ComponentID{Kind: hooks.ComponentAgent, Name: "a"}, hooks.NewCorrelationID())
	hctx.Data = w.Data
	hctx.Metadata = w.Metadata
	return hctx, nil
}

func setup(t *testing.T) (*Store, *echoHook) {
	t.Helper()
	store := NewStore(statestore.NewMemoryStore())
	h := &echoHook{id: "echo"}
	return store, h
}

func appendFixture(t *testing.T, store *Store, h *echoHook, corr hooks.CorrelationID, n float64) string {
	t.Helper()
	hctx := hooks.NewContext(hooks.BeforeAgentExecution, hooks.ComponentID{Kind: hooks.ComponentAgent, Name: "a"}, corr)
	hctx.Data["n"] = n
	ctxBytes, err := h.SerializeContext(hctx)
	if err != nil {
		t.Fatal(err)
	}
	result, _ := h.Execute(context.Background(), hctx)
	resultBytes := encodeResultForTest(result)

	err = store.Append(context.Background(), hookexec.RecordedExecution{
		HookID:      h.ReplayID(),
		HookType:    "echo",
		Correlation: corr,
		ContextJSON: ctxBytes,
		ResultJSON:  resultBytes,
		Timestamp:   time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return h.ReplayID()
}

func encodeResultForTest(r hooks.Result) []byte {
	b, _ := json.Marshal(map[string]any{"kind": r.Kind, "value": r.Value})
	return b
}

func TestStore_ByCorrelationOrdering(t *testing.T) {
	store, h := setup(t)
	corr := hooks.NewCorrelationID()
	appendFixture(t, store, h, corr, 1)
	time.Sleep(time.Millisecond)
	appendFixture(t, store, h, corr, 2)

	execs, err := store.ByCorrelation(context.Background(), corr.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(execs) != 2 {
		t.Fatalf("got %d executions", len(execs))
	}
	if execs[0].Timestamp.After(execs[1].Timestamp) {
		t.Fatal("expected ascending timestamp order")
	}
}

func TestManager_SimulateReturnsStoredResult(t *testing.T) {
	store, h := setup(t)
	corr := hooks.NewCorrelationID()
	appendFixture(t, store, h, corr, 5)

	execs, _ := store.ByCorrelation(context.Background(), corr.String())
	mgr := NewManager(store, func(id string) (hooks.ReplayableHook, bool) {
		if id == h.ReplayID() {
			return h, true
		}
		return nil, false
	})

	out, err := mgr.Replay(context.Background(), Request{ExecutionID: execs[0].ExecutionID, Mode: ModeSimulate})
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Kind != hooks.ResultModified {
		t.Fatalf("got %v", out.Result.Kind)
	}
}

func TestManager_ExactReplayIsIdempotent(t *testing.T) {
	store, h := setup(t)
	corr := hooks.NewCorrelationID()
	appendFixture(t, store, h, corr, 5)

	execs, _ := store.ByCorrelation(context.Background(), corr.String())
	mgr := NewManager(store, func(id string) (hooks.ReplayableHook, bool) {
		return h, true
	})

	out, err := mgr.Replay(context.Background(), Request{ExecutionID: execs[0].ExecutionID, Mode: ModeExact})
	if err != nil {
		t.Fatal(err)
	}
	if out.Diff.ResultChanged {
		t.Fatalf("exact replay of a side-effect-free hook changed the result: %+v", out.Diff)
	}
}

func TestApply_UnknownPathWarnsWithoutFailingWhenOthersApply(t *testing.T) {
	hctx := hooks.NewContext(hooks.BeforeAgentExecution, hooks.ComponentID{Kind: hooks.ComponentAgent, Name: "a"}, hooks.NewCorrelationID())
	warnings, err := Apply(hctx, []ParameterModification{
		{Path: "context.bogus.key", Value: 1, Enabled: true},
		{Path: "context.data.n", Value: 42.0, Enabled: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %v", warnings)
	}
	if hctx.Data["n"] != 42.0 {
		t.Fatalf("got %v", hctx.Data)
	}
}

func TestApply_AllUnknownPathsFail(t *testing.T) {
	hctx := hooks.NewContext(hooks.BeforeAgentExecution, hooks.ComponentID{Kind: hooks.ComponentAgent, Name: "a"}, hooks.NewCorrelationID())
	_, err := Apply(hctx, []ParameterModification{{Path: "context.bogus.key", Value: 1, Enabled: true}})
	if err == nil {
		t.Fatal("expected error when no modification could be applied")
	}
}
