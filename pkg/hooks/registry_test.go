package hooks

import (
	"context"
	"testing"
)

type namedHook struct {
	name     string
	priority int32
	order    *[]string
}

func (h *namedHook) Execute(_ context.Context, _ *Context) (Result, error) {
	*h.order = append(*h.order, h.name)
	return Continue(), nil
}

func (h *namedHook) Metadata() Metadata {
	return Metadata{Name: h.name, Priority: h.priority}
}

// TestRegistry_OrderingByPriorityThenRegistration exercises scenario S2
// from the spec: priorities 10, -5, 10 registered as A, B, C in that
// order must execute as B, A, C.
func TestRegistry_OrderingByPriorityThenRegistration(t *testing.T) {
	r := NewRegistry()
	var order []string

	a := &namedHook{name: "A", priority: 10, order: &order}
	b := &namedHook{name: "B", priority: -5, order: &order}
	c := &namedHook{name: "C", priority: 10, order: &order}

	if err := r.Register(BeforeAgentExecution, "A", a); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(BeforeAgentExecution, "B", b); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(BeforeAgentExecution, "C", c); err != nil {
		t.Fatal(err)
	}

	for _, h := range r.HooksFor(BeforeAgentExecution) {
		if _, err := h.Execute(context.Background(), nil); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"B", "A", "C"}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
}

func TestRegistry_DuplicateIDRejected(t *testing.T) {
	r := NewRegistry()
	h := &namedHook{name: "A", order: &[]string{}}
	if err := r.Register(BeforeAgentExecution, "dup", h); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(BeforeAgentExecution, "dup", h); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	h := &namedHook{name: "A", order: &[]string{}}
	_ = r.Register(BeforeAgentExecution, "a", h)
	r.Unregister(BeforeAgentExecution, "a")
	if got := r.Count(BeforeAgentExecution); got != 0 {
		t.Fatalf("got %d hooks after unregister", got)
	}
}
