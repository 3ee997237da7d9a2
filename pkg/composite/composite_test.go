package composite

import (
	"context"
	"fmt"
	"testing"
)

type stubAgent struct {
	id      string
	fail    bool
	events  []Event
	invoked int
}

func (a *stubAgent) ID() string { return a.id }

func (a *stubAgent) Invoke(_ context.Context, req Request) (Response, error) {
	a.invoked++
	if a.fail {
		return Response{}, fmt.Errorf("stub failure")
	}
	return Response{Payload: map[string]any{"by": a.id}}, nil
}

func (a *stubAgent) HandleEvent(_ context.Context, ev Event) error {
	a.events = append(a.events, ev)
	return nil
}

func TestHierarchicalAgent_AddChildAndDepth(t *testing.T) {
	tree := NewTree()
	root := NewRoot(tree, &stubAgent{id: "root"})
	child, err := root.AddChild(&stubAgent{id: "child"})
	if err != nil {
		t.Fatal(err)
	}
	if child.Depth() != 1 {
		t.Fatalf("got depth %d", child.Depth())
	}
	grandchild, err := child.AddChild(&stubAgent{id: "grandchild"})
	if err != nil {
		t.Fatal(err)
	}
	if grandchild.Depth() != 2 {
		t.Fatalf("got depth %d", grandchild.Depth())
	}
	if grandchild.Parent().ID() != "child" {
		t.Fatalf("got parent %v", grandchild.Parent())
	}
	if root.Parent() != nil {
		t.Fatal("root must have no parent")
	}
}

func TestHierarchicalAgent_PropagateDownDepthFirst(t *testing.T) {
	tree := NewTree()
	rootStub := &stubAgent{id: "root"}
	root := NewRoot(tree, rootStub)
	childStub := &stubAgent{id: "child"}
	child, _ := root.AddChild(childStub)
	grandchildStub := &stubAgent{id: "grandchild"}
	_, _ = child.AddChild(grandchildStub)

	ev := Event{Kind: EventLifecycle, State: "running"}
	if err := root.PropagateDown(context.Background(), ev, DepthFirst); err != nil {
		t.Fatal(err)
	}
	if len(childStub.events) != 1 || len(grandchildStub.events) != 1 {
		t.Fatalf("expected both descendants to receive the event, got child=%d grandchild=%d",
			len(childStub.events), len(grandchildStub.events))
	}
	if len(rootStub.events) != 0 {
		t.Fatal("root must not receive its own propagated event")
	}
}

func TestDelegatingAgent_RoundRobinCyclesSubAgents(t *testing.T) {
	a, b := &stubAgent{id: "a"}, &stubAgent{id: "b"}
	d := NewDelegatingAgent("d", RoundRobin, "", DelegationConfig{}, nil, []Agent{a, b})

	first, err := d.Invoke(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Invoke(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Payload["by"] == second.Payload["by"] {
		t.Fatalf("expected round robin to alternate, got %v then %v", first.Payload["by"], second.Payload["by"])
	}
}

func TestDelegatingAgent_RetriesOnFailure(t *testing.T) {
	failing := &stubAgent{id: "failing", fail: true}
	working := &stubAgent{id: "working"}
	cfg := DelegationConfig{RetryOnFailure: true, MaxRetries: 2}
	d := NewDelegatingAgent("d", RoundRobin, "", cfg, nil, []Agent{failing, working})

	resp, err := d.Invoke(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Payload["by"] != "working" {
		t.Fatalf("got %v", resp.Payload)
	}
	if failing.invoked != 1 {
		t.Fatalf("expected the failing agent to be tried exactly once, got %d", failing.invoked)
	}
}

func TestDelegatingAgent_FixedFailsWhenUnknown(t *testing.T) {
	a := &stubAgent{id: "a"}
	d := NewDelegatingAgent("d", Fixed, "nope", DelegationConfig{}, nil, []Agent{a})
	if _, err := d.Invoke(context.Background(), Request{}); err == nil {
		t.Fatal("expected an error for an unknown fixed target")
	}
}

func TestDelegatingAgent_CapabilityBasedPicksSatisfyingAgent(t *testing.T) {
	agg := NewAggregator()
	agg.Register("b", Capability{Name: "summarize", Category: Category{Kind: CategoryToolUsage}, Version: "1.0.0"})
	a, b := &stubAgent{id: "a"}, &stubAgent{id: "b"}
	d := NewDelegatingAgent("d", CapabilityBased, "", DelegationConfig{}, agg, []Agent{a, b})

	req := Request{RequiredCapabilities: []Requirement{{NameGlob: "summarize"}}}
	resp, err := d.Invoke(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Payload["by"] != "b" {
		t.Fatalf("got %v", resp.Payload)
	}
}

func TestAggregator_MatchScoring(t *testing.T) {
	agg := NewAggregator()
	agg.Register("owner1", Capability{Name: "search", Category: Category{Kind: CategoryToolUsage}, Version: "2.0.0"})
	agg.Register("owner2", Capability{Name: "search-extra", Category: Category{Kind: CategoryToolUsage}, Version: "1.0.0"})

	matches := agg.Query(Requirement{NameGlob: "search*", MinVersion: "1.5.0"})
	// owner1: glob(0.9) x category(1.0) x version-above(1.0) = 0.9, survives
	// owner2: glob(0.9) x category(1.0) x version-below(0) = 0, filtered out
	if len(matches) != 1 {
		t.Fatalf("got %d matches: %+v", len(matches), matches)
	}
	if matches[0].OwnerID != "owner1" || matches[0].Score <= 0 {
		t.Fatalf("got %+v", matches[0])
	}
}
