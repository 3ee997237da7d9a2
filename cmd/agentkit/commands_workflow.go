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

package main

import (
	"context"
	"fmt"
)

// WorkflowCmd drives pkg/injection.CoordinationWorkflowAdapter, the same
// Workflow.* surface a scripting host would be handed.
type WorkflowCmd struct {
	Create  WorkflowCreateCmd  `cmd:"" help:"Create a named chain of components."`
	Execute WorkflowExecuteCmd `cmd:"" help:"Execute a chain and print its terminal state."`
	Remove  WorkflowRemoveCmd  `cmd:"" help:"Remove a chain."`
}

type WorkflowCreateCmd struct {
	Kind  string   `arg:"" help:"Chain name."`
	Steps []string `arg:"" optional:"" help:"Component ids making up the chain."`
}

func (c *WorkflowCreateCmd) Run(rt *runtime) error {
	params := map[string]any{}
	if len(c.Steps) > 0 {
		steps := make([]any, len(c.Steps))
		for i, s := range c.Steps {
			steps[i] = s
		}
		params["steps"] = steps
	}
	id, err := rt.workflows.Create(context.Background(), c.Kind, params)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

type WorkflowExecuteCmd struct {
	ID string `arg:"" help:"Chain correlation id."`
}

func (c *WorkflowExecuteCmd) Run(rt *runtime) error {
	result, err := rt.workflows.Execute(context.Background(), c.ID, "")
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

type WorkflowRemoveCmd struct {
	ID string `arg:"" help:"Chain correlation id."`
}

func (c *WorkflowRemoveCmd) Run(rt *runtime) error {
	return rt.workflows.Remove(context.Background(), c.ID)
}
