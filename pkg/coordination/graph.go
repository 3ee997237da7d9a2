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

// Package coordination builds named execution chains of components and
// tracks their state, enforcing per-component and per-chain time caps
// and a ceiling on concurrently active chains.
package coordination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/hector/pkg/corerr"
)

// State is the lifecycle state of a chain execution.
type State string

const (
	Pending   State = "pending"
	Executing State = "executing"
	Completed State = "completed"
	Failed    State = "failed"
)

// Step is one component invocation in a chain.
type Step struct {
	ComponentID string
	Run         func(ctx context.Context) error
}

// PerformanceMetrics aggregates observed execution time for a single
// component across every chain it has appeared in.
type PerformanceMetrics struct {
	ComponentID   string
	Executions    int64
	TotalDuration time.Duration
	MaxDuration   time.Duration
	Failures      int64
}

func (m *PerformanceMetrics) record(d time.Duration, failed bool) {
	m.Executions++
	m.TotalDuration += d
	if d > m.MaxDuration {
		m.MaxDuration = d
	}
	if failed {
		m.Failures++
	}
}

// MeanDuration returns the average observed duration, or zero if no
// executions have been recorded.
func (m PerformanceMetrics) MeanDuration() time.Duration {
	if m.Executions == 0 {
		return 0
	}
	return m.TotalDuration / time.Duration(m.Executions)
}

// Chain is a single named, ordered sequence of component steps.
type Chain struct {
	Name          string
	CorrelationID string
	Steps         []Step

	mu        sync.Mutex
	state     State
	current   string
	startedAt time.Time
	failedAt  time.Time
	failErr   error
}

// State returns the chain's current lifecycle state.
func (c *Chain) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Limits bounds a Graph's chain execution.
type Limits struct {
	MaxComponentExecutionTime time.Duration
	MaxChainExecutionTime     time.Duration
	MaxActiveChains           int
}

// Graph owns a set of named chains, enforcing Limits and aggregating
// PerformanceMetrics per component. Grounded on the teacher's
// pkg/workflow orchestration of named steps, generalized from a single
// linear pipeline to many concurrently tracked chains.
type Graph struct {
	limits Limits

	mu      sync.Mutex
	chains  map[string]*Chain
	active  int
	metrics map[string]*PerformanceMetrics
}

// NewGraph builds an empty Graph under the given Limits.
func NewGraph(limits Limits) *Graph {
	return &Graph{
		limits:  limits,
		chains:  make(map[string]*Chain),
		metrics: make(map[string]*PerformanceMetrics),
	}
}

// NewChain registers a new chain with a fresh correlation id, rejecting
// creation if MaxActiveChains would be exceeded.
func (g *Graph) NewChain(name string, steps []Step) (*Chain, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.limits.MaxActiveChains > 0 && g.active >= g.limits.MaxActiveChains {
		return nil, corerr.New(corerr.QuotaExceeded, "new_chain", fmt.Errorf("max active chains (%d) reached", g.limits.MaxActiveChains))
	}
	c := &Chain{
		Name:          name,
		CorrelationID: uuid.NewString(),
		Steps:         steps,
		state:         Pending,
	}
	g.chains[c.CorrelationID] = c
	g.active++
	return c, nil
}

// Get looks up a chain by correlation id.
func (g *Graph) Get(correlationID string) (*Chain, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.chains[correlationID]
	return c, ok
}

// Remove drops a chain from the graph, releasing its active slot if it
// was still Pending or Executing. Removing an unknown id is a no-op.
func (g *Graph) Remove(correlationID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.chains[correlationID]
	if !ok {
		return
	}
	delete(g.chains, correlationID)
	c.mu.Lock()
	running := c.state == Pending || c.state == Executing
	c.mu.Unlock()
	if running {
		g.active--
	}
}

func (g *Graph) metricsFor(componentID string) *PerformanceMetrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.metrics[componentID]
	if !ok {
		m = &PerformanceMetrics{ComponentID: componentID}
		g.metrics[componentID] = m
	}
	return m
}

// Metrics returns a snapshot of per-component performance metrics.
func (g *Graph) Metrics(componentID string) PerformanceMetrics {
	return *g.metricsFor(componentID)
}

// Execute runs every step of chain in order, enforcing per-component and
// per-chain time caps. It stops at the first failing step.
func (g *Graph) Execute(ctx context.Context, c *Chain) error {
	defer func() {
		g.mu.Lock()
		g.active--
		g.mu.Unlock()
	}()

	c.mu.Lock()
	c.state = Executing
	c.startedAt = time.Now()
	c.mu.Unlock()

	chainCtx := ctx
	var cancel context.CancelFunc
	if g.limits.MaxChainExecutionTime > 0 {
		chainCtx, cancel = context.WithTimeout(ctx, g.limits.MaxChainExecutionTime)
		defer cancel()
	}

	for _, step := range c.Steps {
		c.mu.Lock()
		c.current = step.ComponentID
		c.mu.Unlock()

		stepCtx := chainCtx
		var stepCancel context.CancelFunc
		if g.limits.MaxComponentExecutionTime > 0 {
			stepCtx, stepCancel = context.WithTimeout(chainCtx, g.limits.MaxComponentExecutionTime)
		}

		started := time.Now()
		err := step.Run(stepCtx)
		elapsed := time.Since(started)
		if stepCancel != nil {
			stepCancel()
		}
		g.metricsFor(step.ComponentID).record(elapsed, err != nil)

		if err != nil {
			c.mu.Lock()
			c.state = Failed
			c.failedAt = time.Now()
			c.failErr = err
			c.mu.Unlock()
			return fmt.Errorf("coordination: chain %q failed at component %q: %w", c.Name, step.ComponentID, err)
		}
		if chainCtx.Err() != nil {
			c.mu.Lock()
			c.state = Failed
			c.failedAt = time.Now()
			c.failErr = chainCtx.Err()
			c.mu.Unlock()
			return corerr.New(corerr.Timeout, "execute_chain", chainCtx.Err())
		}
	}

	c.mu.Lock()
	c.state = Completed
	c.mu.Unlock()
	return nil
}
