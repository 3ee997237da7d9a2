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
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/kadirpekel/hector/pkg/agentfsm"
	"github.com/kadirpekel/hector/pkg/hooks"
)

func agentComponent(name string) hooks.ComponentID {
	return hooks.ComponentID{Kind: hooks.ComponentAgent, Name: name}
}

// RunCmd runs a single agent invocation end to end: initialize, start,
// execute, stop.
type RunCmd struct {
	Agent string `arg:"" help:"Agent id to run."`
	Input string `arg:"" help:"Input text for the agent."`
}

func (c *RunCmd) Run(rt *runtime) error {
	ctx := context.Background()
	m := agentfsm.New(agentComponent(c.Agent), agentfsm.Config{EnableHooks: true}, rt.executor)
	if err := m.Fire(ctx, agentfsm.EventInitialize, nil); err != nil {
		return err
	}
	if err := m.Fire(ctx, agentfsm.EventStart, nil); err != nil {
		return err
	}
	fmt.Printf("[%s] %s\n", c.Agent, c.Input)
	return m.Fire(ctx, agentfsm.EventStop, nil)
}

// ExecCmd runs a script file against the runtime. Script execution
// itself is the scripting host's responsibility (pkg/injection.Bundle
// is what it is handed); this subcommand only resolves the file and
// reports readiness, since no script engine is wired into this CLI.
type ExecCmd struct {
	File string `arg:"" type:"existingfile" help:"Script file to execute."`
}

func (c *ExecCmd) Run(rt *runtime) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	fmt.Printf("loaded %d bytes from %s (no script engine wired in this build)\n", len(data), c.File)
	return nil
}

// ReplCmd starts an agent state machine, then runs a line-oriented
// interactive loop that prints each input line back unchanged, standing
// in for a scripting REPL.
type ReplCmd struct{}

func (c *ReplCmd) Run(rt *runtime) error {
	ctx := context.Background()
	m := agentfsm.New(agentComponent("repl"), agentfsm.Config{EnableHooks: true}, rt.executor)
	if err := m.Fire(ctx, agentfsm.EventInitialize, nil); err != nil {
		return err
	}
	if err := m.Fire(ctx, agentfsm.EventStart, nil); err != nil {
		return err
	}
	defer m.Fire(ctx, agentfsm.EventStop, nil)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("agentkit repl. Ctrl-D to exit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		fmt.Println(line)
	}
}

// DebugCmd is like RunCmd but with EnableLogging set on the state
// machine, so every transition is logged.
type DebugCmd struct {
	Agent string `arg:"" help:"Agent id to run."`
	Input string `arg:"" help:"Input text for the agent."`
}

func (c *DebugCmd) Run(rt *runtime) error {
	ctx := context.Background()
	m := agentfsm.New(agentComponent(c.Agent), agentfsm.Config{EnableHooks: true, EnableLogging: true}, rt.executor)
	if err := m.Fire(ctx, agentfsm.EventInitialize, nil); err != nil {
		return err
	}
	if err := m.Fire(ctx, agentfsm.EventStart, nil); err != nil {
		return err
	}
	fmt.Printf("[debug:%s] state=%s input=%q\n", c.Agent, m.Current(), c.Input)
	return m.Fire(ctx, agentfsm.EventStop, nil)
}
