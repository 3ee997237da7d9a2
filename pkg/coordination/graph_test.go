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

package coordination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kadirpekel/hector/pkg/corerr"
)

func TestGraph_ExecuteRunsStepsInOrderAndCompletes(t *testing.T) {
	g := NewGraph(Limits{})
	var order []string
	steps := []Step{
		{ComponentID: "a", Run: func(ctx context.Context) error { order = append(order, "a"); return nil }},
		{ComponentID: "b", Run: func(ctx context.Context) error { order = append(order, "b"); return nil }},
	}
	c, err := g.NewChain("pipeline", steps)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Execute(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	if c.State() != Completed {
		t.Fatalf("expected Completed, got %v", c.State())
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order: %v", order)
	}
	if g.Metrics("a").Executions != 1 {
		t.Fatalf("expected one execution recorded for component a")
	}
}

func TestGraph_ExecuteStopsAtFirstFailure(t *testing.T) {
	g := NewGraph(Limits{})
	var ran []string
	steps := []Step{
		{ComponentID: "a", Run: func(ctx context.Context) error { ran = append(ran, "a"); return errors.New("boom") }},
		{ComponentID: "b", Run: func(ctx context.Context) error { ran = append(ran, "b"); return nil }},
	}
	c, err := g.NewChain("pipeline", steps)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Execute(context.Background(), c); err == nil {
		t.Fatal("expected failure")
	}
	if c.State() != Failed {
		t.Fatalf("expected Failed, got %v", c.State())
	}
	if len(ran) != 1 {
		t.Fatalf("expected only first step to run, got %v", ran)
	}
}

func TestGraph_MaxActiveChainsEnforced(t *testing.T) {
	g := NewGraph(Limits{MaxActiveChains: 1})
	steps := []Step{{ComponentID: "a", Run: func(ctx context.Context) error { return nil }}}
	if _, err := g.NewChain("first", steps); err != nil {
		t.Fatal(err)
	}
	if _, err := g.NewChain("second", steps); !corerr.IsKind(err, corerr.QuotaExceeded) {
		t.Fatalf("expected QuotaExceeded, got %v", err)
	}
}

func TestGraph_MaxComponentExecutionTimeCancelsStep(t *testing.T) {
	g := NewGraph(Limits{MaxComponentExecutionTime: 10 * time.Millisecond})
	steps := []Step{
		{ComponentID: "slow", Run: func(ctx context.Context) error {
			select {
			case <-time.After(time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}},
	}
	c, err := g.NewChain("slow-chain", steps)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Execute(context.Background(), c); err == nil {
		t.Fatal("expected timeout failure")
	}
}
