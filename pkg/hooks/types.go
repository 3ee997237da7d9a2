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

// Package hooks defines the typed extension-point model shared by every
// lifecycle in the runtime: hook points, hook context, hook results and
// the registry that orders hooks for a point. Execution (with timeouts,
// circuit breaking and replay persistence) lives in pkg/hookexec.
package hooks

import (
	"time"

	"github.com/google/uuid"
)

// ComponentKind is the closed enum of entities that can own a hook
// execution or be the target of a Redirect result.
type ComponentKind string

const (
	ComponentAgent    ComponentKind = "agent"
	ComponentTool     ComponentKind = "tool"
	ComponentWorkflow ComponentKind = "workflow"
	ComponentSystem   ComponentKind = "system"
	ComponentSession  ComponentKind = "session"
	ComponentCustom   ComponentKind = "custom"
)

// ComponentID identifies any addressable entity in the runtime.
type ComponentID struct {
	Kind ComponentKind `json:"kind"`
	Name string        `json:"name"`
}

// String renders the component id as "kind:name" for logging and as the
// content-hash input.
func (c ComponentID) String() string {
	return string(c.Kind) + ":" + c.Name
}

// Point is the closed enum of well-known lifecycle hook points, with a
// Custom variant for application-defined extension points.
type Point struct {
	name   string
	custom bool
}

func (p Point) String() string { return p.name }

// IsCustom reports whether this is a Custom(name) point.
func (p Point) IsCustom() bool { return p.custom }

// Custom builds a Custom(name) hook point.
func Custom(name string) Point { return Point{name: name, custom: true} }

var (
	SystemStartup          = Point{name: "SystemStartup"}
	SystemShutdown         = Point{name: "SystemShutdown"}
	BeforeAgentInit        = Point{name: "BeforeAgentInit"}
	AfterAgentInit         = Point{name: "AfterAgentInit"}
	BeforeAgentExecution   = Point{name: "BeforeAgentExecution"}
	AfterAgentExecution    = Point{name: "AfterAgentExecution"}
	BeforeToolExecution    = Point{name: "BeforeToolExecution"}
	AfterToolExecution     = Point{name: "AfterToolExecution"}
	ToolError              = Point{name: "ToolError"}
	BeforeWorkflowStart    = Point{name: "BeforeWorkflowStart"}
	AfterWorkflowExecution = Point{name: "AfterWorkflowExecution"}
	BeforeStepExecution    = Point{name: "BeforeStepExecution"}
	AfterStepExecution     = Point{name: "AfterStepExecution"}
	WorkflowError          = Point{name: "WorkflowError"}
	AgentError             = Point{name: "AgentError"}
)

// CorrelationID ties together every hook execution belonging to one
// logical operation. It is minted once, at the first hook of a chain.
type CorrelationID struct{ uuid.UUID }

// NewCorrelationID mints a fresh 128-bit correlation id.
func NewCorrelationID() CorrelationID { return CorrelationID{uuid.New()} }

// Context is the mutable payload passed through a hook chain. Data carries
// the in-flight operation payload (e.g. tool params, agent output);
// Metadata is free-form string annotations hooks may add without altering
// the payload (used by Before-transition hooks, see agentfsm).
type Context struct {
	Point         Point
	ComponentID   ComponentID
	CorrelationID CorrelationID
	Language      string
	Data          map[string]any
	Metadata      map[string]string
	Timestamp     time.Time

	// RetryAttempt is incremented by the executor each time a hook returns
	// a Retry{} result.
	RetryAttempt int
}

// NewContext builds a Context with initialized maps and a fresh timestamp.
func NewContext(point Point, id ComponentID, corr CorrelationID) *Context {
	return &Context{
		Point:         point,
		ComponentID:   id,
		CorrelationID: corr,
		Data:          make(map[string]any),
		Metadata:      make(map[string]string),
		Timestamp:     time.Now(),
	}
}

// Clone returns a deep-enough copy for persistence/replay: Data and
// Metadata maps are copied so later in-place hook mutation does not alias
// a persisted snapshot.
func (c *Context) Clone() *Context {
	cp := *c
	cp.Data = make(map[string]any, len(c.Data))
	for k, v := range c.Data {
		cp.Data[k] = v
	}
	cp.Metadata = make(map[string]string, len(c.Metadata))
	for k, v := range c.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}

// ResultKind discriminates the Result sum type.
type ResultKind string

const (
	ResultContinue ResultKind = "continue"
	ResultModified ResultKind = "modified"
	ResultCancel   ResultKind = "cancel"
	ResultRetry    ResultKind = "retry"
	ResultRedirect ResultKind = "redirect"
)

// Result is the sum type a Hook.Execute returns. Exactly the fields
// relevant to Kind are meaningful; constructors below enforce that.
type Result struct {
	Kind Kind

	// Modified
	Value any

	// Cancel
	Reason string

	// Retry
	RetryDelay       time.Duration
	RetryMaxAttempts int

	// Redirect
	Target ComponentID
}

// Kind is an alias kept for readability at call sites (hooks.ResultKind).
type Kind = ResultKind

func Continue() Result { return Result{Kind: ResultContinue} }

func Modified(value any) Result { return Result{Kind: ResultModified, Value: value} }

func Cancel(reason string) Result { return Result{Kind: ResultCancel, Reason: reason} }

func Retry(delay time.Duration, maxAttempts int) Result {
	return Result{Kind: ResultRetry, RetryDelay: delay, RetryMaxAttempts: maxAttempts}
}

func Redirect(target ComponentID) Result {
	return Result{Kind: ResultRedirect, Target: target}
}

// Metadata describes a registered hook for discovery, ordering and
// filtering purposes.
type Metadata struct {
	Name        string
	Description string
	// Priority orders hooks within a point; lower runs earlier. Ties break
	// by registration order.
	Priority    int32
	Language    string
	Tags        []string
	Version     string
}
