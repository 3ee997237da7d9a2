package agentfsm

import (
	"context"
	"testing"

	"github.com/kadirpekel/hector/pkg/hooks"
)

func testComponent() hooks.ComponentID {
	return hooks.ComponentID{Kind: hooks.ComponentAgent, Name: "a1"}
}

// TestMachine_ScenarioS1 exercises the exact spec scenario: with hooks
// disabled, initialize/start/pause/resume/stop drives the documented
// state sequence, and a further start is rejected leaving state
// unchanged.
func TestMachine_ScenarioS1(t *testing.T) {
	m := New(testComponent(), Config{}, nil)
	ctx := context.Background()

	steps := []struct {
		fire func(context.Context) error
		want State
	}{
		{m.Initialize, Initialized},
		{m.Start, Running},
		{m.Pause, Paused},
		{m.Resume, Running},
		{m.Stop, Stopped},
	}
	for _, s := range steps {
		if err := s.fire(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := m.Current(); got != s.want {
			t.Fatalf("got %v want %v", got, s.want)
		}
	}

	if err := m.Start(ctx); err == nil {
		t.Fatal("expected error calling start from Stopped")
	}
	if got := m.Current(); got != Stopped {
		t.Fatalf("state changed after rejected transition: %v", got)
	}
}

func TestMachine_FailFromAnyState(t *testing.T) {
	m := New(testComponent(), Config{}, nil)
	ctx := context.Background()
	_ = m.Initialize(ctx)
	if err := m.Fail(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if m.Current() != Failed {
		t.Fatalf("got %v", m.Current())
	}
	if err := m.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Current() != Uninitialized {
		t.Fatalf("got %v", m.Current())
	}
}

func TestMachine_RejectsUnlistedEvent(t *testing.T) {
	m := New(testComponent(), Config{}, nil)
	if err := m.Pause(context.Background()); err == nil {
		t.Fatal("expected pause from Uninitialized to fail")
	}
}
