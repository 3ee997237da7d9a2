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
	"fmt"

	"github.com/kadirpekel/hector/pkg/coordination"
	"github.com/kadirpekel/hector/pkg/corerr"
)

// CoordinationWorkflowAdapter implements WorkflowNamespace over a
// coordination.Graph. The actual work each step performs belongs to the
// scripting host on the other side of the injection surface (the script
// engine bridge is an opaque foreign runtime, not something this package
// calls into); Create here only scaffolds the chain's named components so
// Execute can track timing, failure and metrics the way a real workflow
// run would, even though every step body is a no-op placeholder.
type CoordinationWorkflowAdapter struct {
	graph *coordination.Graph
}

// NewCoordinationWorkflowAdapter builds a WorkflowNamespace over graph.
func NewCoordinationWorkflowAdapter(graph *coordination.Graph) *CoordinationWorkflowAdapter {
	return &CoordinationWorkflowAdapter{graph: graph}
}

// Create builds a chain named kind from the string component ids in
// params["steps"], if present, or a single component named kind
// otherwise.
func (a *CoordinationWorkflowAdapter) Create(ctx context.Context, kind string, params map[string]any) (string, error) {
	componentIDs := []string{kind}
	if raw, ok := params["steps"]; ok {
		if list, ok := raw.([]any); ok {
			componentIDs = componentIDs[:0]
			for _, v := range list {
				if s, ok := v.(string); ok {
					componentIDs = append(componentIDs, s)
				}
			}
		}
	}
	steps := make([]coordination.Step, len(componentIDs))
	for i, id := range componentIDs {
		steps[i] = coordination.Step{ComponentID: id, Run: func(context.Context) error { return nil }}
	}
	chain, err := a.graph.NewChain(kind, steps)
	if err != nil {
		return "", err
	}
	return chain.CorrelationID, nil
}

// Execute runs the chain identified by id and reports its terminal state.
// input is accepted for interface symmetry with Agent.Execute but isn't
// consumed: step bodies are host-supplied, not core-supplied.
func (a *CoordinationWorkflowAdapter) Execute(ctx context.Context, id string, input string) (string, error) {
	chain, ok := a.graph.Get(id)
	if !ok {
		return "", corerr.NotFoundf("workflow_execute", "no workflow %q", id)
	}
	if err := a.graph.Execute(ctx, chain); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s", id, chain.State()), nil
}

// Remove drops the chain from the graph.
func (a *CoordinationWorkflowAdapter) Remove(ctx context.Context, id string) error {
	a.graph.Remove(id)
	return nil
}

var _ WorkflowNamespace = (*CoordinationWorkflowAdapter)(nil)
