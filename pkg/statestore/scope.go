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

// Package statestore provides the opaque, scoped key-value store consumed
// by every other core component (hooks replay, sessions, isolation,
// vector metadata, coordination). Scopes are encoded as key prefixes so a
// single backend (in-memory or SQL) can serve all of them.
package statestore

import "fmt"

// ScopeKind is the closed enum of scope kinds a Scope can carry.
type ScopeKind string

const (
	ScopeGlobal   ScopeKind = "global"
	ScopeAgent    ScopeKind = "agent"
	ScopeSession  ScopeKind = "session"
	ScopeTool     ScopeKind = "tool"
	ScopeWorkflow ScopeKind = "workflow"
	ScopeHook     ScopeKind = "hook"
	ScopeUser     ScopeKind = "user"
	ScopeCustom   ScopeKind = "custom"
)

// Scope identifies a storage namespace. The zero value is not valid; use
// the constructors below.
type Scope struct {
	Kind ScopeKind
	ID   string
}

// Global is the process-wide scope.
func Global() Scope { return Scope{Kind: ScopeGlobal} }

// Agent scopes state to a single agent.
func Agent(id string) Scope { return Scope{Kind: ScopeAgent, ID: id} }

// Session scopes state to a single session.
func Session(id string) Scope { return Scope{Kind: ScopeSession, ID: id} }

// Tool scopes state to a single tool.
func Tool(id string) Scope { return Scope{Kind: ScopeTool, ID: id} }

// Workflow scopes state to a single workflow instance.
func Workflow(id string) Scope { return Scope{Kind: ScopeWorkflow, ID: id} }

// Hook scopes state to a single hook.
func Hook(id string) Scope { return Scope{Kind: ScopeHook, ID: id} }

// User scopes state to a single end user, independent of session.
func User(id string) Scope { return Scope{Kind: ScopeUser, ID: id} }

// Custom builds a custom-named scope. Custom("") is reserved: it expresses
// "no scope prefix beyond the reserved custom:: namespace" and is used by
// the workflow-state injection adapter, which strips the prefix on list.
func Custom(name string) Scope { return Scope{Kind: ScopeCustom, ID: name} }

// Prefix returns the storage key prefix for the scope, e.g. "agent:a1::".
func (s Scope) Prefix() string {
	if s.Kind == ScopeGlobal {
		return "global::"
	}
	if s.Kind == ScopeCustom && s.ID == "" {
		return "custom::"
	}
	return fmt.Sprintf("%s:%s::", s.Kind, s.ID)
}

// String renders the scope for logging/metrics labels.
func (s Scope) String() string {
	if s.ID == "" {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}
