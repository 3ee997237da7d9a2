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
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/hector/pkg/statestore"
)

// StateCmd inspects or mutates the shared state store directly, bypassing
// whatever scope a running agent would normally see it through.
type StateCmd struct {
	Show   StateShowCmd   `cmd:"" help:"Print the value stored under a key."`
	Clear  StateClearCmd  `cmd:"" help:"Delete a key."`
	Export StateExportCmd `cmd:"" help:"Dump every key in a scope as JSON."`
	Import StateImportCmd `cmd:"" help:"Write a single key from a JSON literal."`
}

func parseScope(kind, id string) (statestore.Scope, error) {
	switch statestore.ScopeKind(kind) {
	case statestore.ScopeGlobal:
		return statestore.Global(), nil
	case statestore.ScopeAgent:
		return statestore.Agent(id), nil
	case statestore.ScopeSession:
		return statestore.Session(id), nil
	case statestore.ScopeTool:
		return statestore.Tool(id), nil
	case statestore.ScopeWorkflow:
		return statestore.Workflow(id), nil
	case statestore.ScopeHook:
		return statestore.Hook(id), nil
	case statestore.ScopeUser:
		return statestore.User(id), nil
	case statestore.ScopeCustom:
		return statestore.Custom(id), nil
	default:
		return statestore.Scope{}, fmt.Errorf("unknown scope kind %q", kind)
	}
}

type StateShowCmd struct {
	Scope string `arg:"" help:"Scope kind (global, agent, session, tool, workflow, hook, user, custom)."`
	ID    string `arg:"" help:"Scope id (ignored for global)."`
	Key   string `arg:"" help:"Key to read."`
}

func (c *StateShowCmd) Run(rt *runtime) error {
	scope, err := parseScope(c.Scope, c.ID)
	if err != nil {
		return err
	}
	raw, ok, err := rt.store.Read(context.Background(), scope, c.Key)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("(not set)")
		return nil
	}
	fmt.Println(string(raw))
	return nil
}

type StateClearCmd struct {
	Scope string `arg:"" help:"Scope kind."`
	ID    string `arg:"" help:"Scope id."`
	Key   string `arg:"" help:"Key to delete."`
}

func (c *StateClearCmd) Run(rt *runtime) error {
	scope, err := parseScope(c.Scope, c.ID)
	if err != nil {
		return err
	}
	deleted, err := rt.store.Delete(context.Background(), scope, c.Key)
	if err != nil {
		return err
	}
	if deleted {
		fmt.Println("deleted")
	} else {
		fmt.Println("no such key")
	}
	return nil
}

type StateExportCmd struct {
	Scope  string `arg:"" help:"Scope kind."`
	ID     string `arg:"" help:"Scope id."`
	Prefix string `arg:"" optional:"" help:"Key prefix to filter by."`
}

func (c *StateExportCmd) Run(rt *runtime) error {
	ctx := context.Background()
	scope, err := parseScope(c.Scope, c.ID)
	if err != nil {
		return err
	}
	keys, err := rt.store.ListKeys(ctx, scope, c.Prefix)
	if err != nil {
		return err
	}
	dump := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		raw, ok, err := rt.store.Read(ctx, scope, k)
		if err != nil {
			return err
		}
		if ok {
			dump[k] = raw
		}
	}
	out, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

type StateImportCmd struct {
	Scope string `arg:"" help:"Scope kind."`
	ID    string `arg:"" help:"Scope id."`
	Key   string `arg:"" help:"Key to write."`
	Value string `arg:"" help:"JSON literal value."`
}

func (c *StateImportCmd) Run(rt *runtime) error {
	if !json.Valid([]byte(c.Value)) {
		return fmt.Errorf("value is not valid JSON")
	}
	scope, err := parseScope(c.Scope, c.ID)
	if err != nil {
		return err
	}
	return rt.store.Write(context.Background(), scope, c.Key, json.RawMessage(c.Value))
}
