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

// Package agentfsm implements the explicit agent lifecycle state machine
// (spec 4.4), with hook integration at every transition and a single
// logical owner per agent so transitions are linearizable.
package agentfsm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kadirpekel/hector/pkg/hookexec"
	"github.com/kadirpekel/hector/pkg/hooks"
)

// State is one of the closed set of agent lifecycle states.
type State string

const (
	Uninitialized State = "uninitialized"
	Initialized   State = "initialized"
	Running       State = "running"
	Paused        State = "paused"
	Stopped       State = "stopped"
	Failed        State = "failed"
)

// Event is a transition trigger name.
type Event string

const (
	EventInitialize Event = "initialize"
	EventStart      Event = "start"
	EventPause      Event = "pause"
	EventResume     Event = "resume"
	EventStop       Event = "stop"
	EventFail       Event = "fail"
	EventReset      Event = "reset"
)

type transitionKey struct {
	from  State
	event Event
}

// table is the closed set of allowed transitions (spec 4.4). fail is
// allowed from any state and is handled specially in Fire, since it isn't
// keyed by a single "from".
var table = map[transitionKey]State{
	{Uninitialized, EventInitialize}: Initialized,
	{Initialized, EventStart}:        Running,
	{Running, EventPause}:            Paused,
	{Paused, EventResume}:            Running,
	{Running, EventStop}:             Stopped,
	{Paused, EventStop}:              Stopped,
	{Failed, EventReset}:             Uninitialized,
}

// ErrInvalidTransition is returned when an event is not allowed from the
// current state (I7, P4).
type ErrInvalidTransition struct {
	From  State
	Event Event
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("agentfsm: event %q is not allowed from state %q", e.Event, e.From)
}

// ErrTransitionCancelled is returned when a Before-transition hook
// cancels the transition.
type ErrTransitionCancelled struct {
	From, To State
	Reason   string
}

func (e *ErrTransitionCancelled) Error() string {
	return fmt.Sprintf("agentfsm: transition %s->%s cancelled: %s", e.From, e.To, e.Reason)
}

// Config toggles the machine's ambient behavior. EnableLogging logs each
// applied transition through slog.Default(). EnableCircuitBreaker is not
// read by the machine; circuit breaking happens in the hookexec.Executor.
type Config struct {
	EnableHooks          bool
	EnableCircuitBreaker bool
	EnableLogging        bool
}

// Machine is a single agent's lifecycle state machine. State mutation is
// serialized by mu, making transitions linearizable per agent (spec 5).
type Machine struct {
	mu          sync.Mutex
	state       State
	componentID hooks.ComponentID
	cfg         Config
	executor    *hookexec.Executor
}

// New constructs a Machine starting in Uninitialized.
func New(componentID hooks.ComponentID, cfg Config, executor *hookexec.Executor) *Machine {
	return &Machine{
		state:       Uninitialized,
		componentID: componentID,
		cfg:         cfg,
		executor:    executor,
	}
}

// Current returns the agent's current state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Fire applies event, running Before/After hooks around the transition
// when hooks are enabled. On Cancel from a Before hook, the state is left
// unchanged and an *ErrTransitionCancelled is returned. A Modified result
// from a Before hook may only affect context.Metadata, never from/to
// (spec 9 open question, resolved: forbidden for state fields).
func (m *Machine) Fire(ctx context.Context, event Event, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var to State
	if event == EventFail {
		to = Failed
	} else {
		next, ok := table[transitionKey{m.state, event}]
		if !ok {
			return &ErrInvalidTransition{From: m.state, Event: event}
		}
		to = next
	}

	from := m.state
	correlationID := hooks.NewCorrelationID()

	if m.cfg.EnableHooks && m.executor != nil {
		beforePoint := hooks.Custom("Before" + string(to) + "Transition")
		hctx := hooks.NewContext(beforePoint, m.componentID, correlationID)
		hctx.Data["from"] = string(from)
		hctx.Data["to"] = string(to)
		for k, v := range payload {
			hctx.Data[k] = v
		}

		outcome := m.executor.Fire(ctx, hctx)
		if outcome.Kind == hookexec.OutcomeCancelled {
			return &ErrTransitionCancelled{From: from, To: to, Reason: outcome.CancelReason}
		}
	}

	m.state = to

	if m.cfg.EnableLogging {
		slog.Info("agentfsm transition", "component", m.componentID.String(), "event", string(event), "from", string(from), "to", string(to))
	}

	if m.cfg.EnableHooks && m.executor != nil {
		afterPoint := hooks.Custom("After" + string(to) + "Transition")
		hctx := hooks.NewContext(afterPoint, m.componentID, correlationID)
		hctx.Data["from"] = string(from)
		hctx.Data["to"] = string(to)
		m.executor.Fire(ctx, hctx)
	}

	return nil
}

// Initialize, Start, Pause, Resume, Stop, Reset are typed convenience
// wrappers over Fire.
func (m *Machine) Initialize(ctx context.Context) error { return m.Fire(ctx, EventInitialize, nil) }
func (m *Machine) Start(ctx context.Context) error      { return m.Fire(ctx, EventStart, nil) }
func (m *Machine) Pause(ctx context.Context) error      { return m.Fire(ctx, EventPause, nil) }
func (m *Machine) Resume(ctx context.Context) error     { return m.Fire(ctx, EventResume, nil) }
func (m *Machine) Stop(ctx context.Context) error       { return m.Fire(ctx, EventStop, nil) }
func (m *Machine) Reset(ctx context.Context) error      { return m.Fire(ctx, EventReset, nil) }

// Fail transitions to Failed from any state and records err in the hook
// payload.
func (m *Machine) Fail(ctx context.Context, err error) error {
	payload := map[string]any{}
	if err != nil {
		payload["error"] = err.Error()
	}
	return m.Fire(ctx, EventFail, payload)
}
