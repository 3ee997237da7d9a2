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

package injection

import (
	"context"
	"testing"

	"github.com/kadirpekel/hector/pkg/coordination"
)

func TestCoordinationWorkflowAdapter_CreateExecuteRemove(t *testing.T) {
	graph := coordination.NewGraph(coordination.Limits{MaxActiveChains: 4})
	adapter := NewCoordinationWorkflowAdapter(graph)
	ctx := context.Background()

	id, err := adapter.Create(ctx, "ingest-pipeline", map[string]any{
		"steps": []any{"fetch", "parse", "store"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := adapter.Execute(ctx, id, "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := id + ":completed"
	if result != want {
		t.Fatalf("got %q, want %q", result, want)
	}

	if err := adapter.Remove(ctx, id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := graph.Get(id); ok {
		t.Fatal("expected chain to be gone after Remove")
	}
}

func TestCoordinationWorkflowAdapter_ExecuteUnknownIDReturnsNotFound(t *testing.T) {
	graph := coordination.NewGraph(coordination.Limits{})
	adapter := NewCoordinationWorkflowAdapter(graph)
	if _, err := adapter.Execute(context.Background(), "missing", ""); err == nil {
		t.Fatal("expected error for unknown workflow id")
	}
}
