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

package composite

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Strategy is the closed set of sub-agent selection rules (spec 4.5).
type Strategy string

const (
	RoundRobin      Strategy = "round_robin"
	LoadBalanced    Strategy = "load_balanced"
	CapabilityBased Strategy = "capability_based"
	Fixed           Strategy = "fixed"
)

// DelegationConfig tunes a DelegatingAgent's retry behavior. Only
// RetryOnFailure and MaxRetries are read; CacheCapabilities,
// DefaultTimeout and MaxConcurrent are carried but have no effect.
type DelegationConfig struct {
	CacheCapabilities bool
	RetryOnFailure    bool
	DefaultTimeout    time.Duration
	MaxRetries        int
	MaxConcurrent     int
}

// DefaultDelegationConfig mirrors the teacher's config-default style:
// conservative, explicit, safe to embed unmodified.
func DefaultDelegationConfig() DelegationConfig {
	return DelegationConfig{
		RetryOnFailure: true,
		DefaultTimeout: 30 * time.Second,
		MaxRetries:     2,
		MaxConcurrent:  4,
	}
}

type subAgentStats struct {
	active   int
	meanExec time.Duration
	execs    int64
}

// DelegatingAgent forwards a Request to exactly one of its registered
// sub-agents, chosen per Strategy, retrying under the same strategy on
// failure.
type DelegatingAgent struct {
	id         string
	strategy   Strategy
	fixedID    string
	cfg        DelegationConfig
	agg        *Aggregator
	mu         sync.Mutex
	subAgents  []Agent
	cursor     int
	stats      map[string]*subAgentStats
}

// NewDelegatingAgent builds a DelegatingAgent with id, delegating over
// subAgents per strategy. fixedID is only consulted when strategy ==
// Fixed. agg may be nil unless strategy == CapabilityBased.
func NewDelegatingAgent(id string, strategy Strategy, fixedID string, cfg DelegationConfig, agg *Aggregator, subAgents []Agent) *DelegatingAgent {
	d := &DelegatingAgent{
		id:        id,
		strategy:  strategy,
		fixedID:   fixedID,
		cfg:       cfg,
		agg:       agg,
		subAgents: subAgents,
		stats:     make(map[string]*subAgentStats),
	}
	for _, a := range subAgents {
		d.stats[a.ID()] = &subAgentStats{}
	}
	return d
}

// ID satisfies Agent.
func (d *DelegatingAgent) ID() string { return d.id }

// Invoke selects a sub-agent per the configured strategy and forwards
// req, retrying with a freshly-selected sub-agent up to MaxRetries times
// when RetryOnFailure is set (spec 4.5).
func (d *DelegatingAgent) Invoke(ctx context.Context, req Request) (Response, error) {
	attempts := 1
	if d.cfg.RetryOnFailure {
		attempts += d.cfg.MaxRetries
	}

	var lastErr error
	tried := make(map[string]bool)
	for i := 0; i < attempts; i++ {
		target, err := d.selectExcluding(req, tried)
		if err != nil {
			if lastErr != nil {
				return Response{}, lastErr
			}
			return Response{}, err
		}
		tried[target.ID()] = true

		d.beginCall(target.ID())
		start := time.Now()
		resp, err := target.Invoke(ctx, req)
		d.endCall(target.ID(), time.Since(start))

		if err == nil {
			return resp, nil
		}
		lastErr = fmt.Errorf("composite: sub-agent %q failed: %w", target.ID(), err)
		if !d.cfg.RetryOnFailure {
			break
		}
	}
	return Response{}, lastErr
}

func (d *DelegatingAgent) selectExcluding(req Request, tried map[string]bool) (Agent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	candidates := make([]Agent, 0, len(d.subAgents))
	for _, a := range d.subAgents {
		if !tried[a.ID()] {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("composite: no sub-agents left to try")
	}

	switch d.strategy {
	case Fixed:
		for _, a := range d.subAgents {
			if a.ID() == d.fixedID {
				if tried[a.ID()] {
					return nil, fmt.Errorf("composite: fixed sub-agent %q already failed", d.fixedID)
				}
				return a, nil
			}
		}
		return nil, fmt.Errorf("composite: fixed sub-agent %q not registered", d.fixedID)

	case CapabilityBased:
		if d.agg == nil {
			return nil, fmt.Errorf("composite: capability-based delegation requires an Aggregator")
		}
		for _, a := range candidates {
			if d.agg.Satisfies(a.ID(), req.RequiredCapabilities) {
				return a, nil
			}
		}
		return nil, fmt.Errorf("composite: no sub-agent satisfies required capabilities")

	case LoadBalanced:
		best := candidates[0]
		bestStats := d.stats[best.ID()]
		for _, a := range candidates[1:] {
			s := d.stats[a.ID()]
			bs := bestStats
			if s.active < bs.active || (s.active == bs.active && s.meanExec < bs.meanExec) {
				best = a
				bestStats = s
			}
		}
		return best, nil

	case RoundRobin:
		fallthrough
	default:
		n := len(d.subAgents)
		for i := 0; i < n; i++ {
			idx := (d.cursor + i) % n
			a := d.subAgents[idx]
			if !tried[a.ID()] {
				d.cursor = (idx + 1) % n
				return a, nil
			}
		}
		return nil, fmt.Errorf("composite: no sub-agents left to try")
	}
}

func (d *DelegatingAgent) beginCall(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.stats[id]; ok {
		s.active++
	}
}

func (d *DelegatingAgent) endCall(id string, dur time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.stats[id]
	if !ok {
		return
	}
	s.active--
	s.execs++
	// running mean
	s.meanExec = s.meanExec + (dur-s.meanExec)/time.Duration(s.execs)
}
