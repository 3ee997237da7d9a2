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

package coordination

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
)

// ScheduledChain recreates and executes a chain's steps on a cron
// schedule, a feature present in the original llmspell-workflows
// examples (recurring pipeline triggers) but dropped from the
// distilled spec.
type ScheduledChain struct {
	Name     string
	Expr     string
	NewSteps func() []Step

	graph  *Graph
	logger *slog.Logger
	gron   gronx.Gronx
}

// NewScheduledChain validates expr as a standard five-field cron
// expression up front so a malformed schedule fails at registration
// time, not on the first missed tick.
func NewScheduledChain(graph *Graph, name, expr string, newSteps func() []Step, logger *slog.Logger) (*ScheduledChain, error) {
	g := gronx.New()
	if !g.IsValid(expr) {
		return nil, fmt.Errorf("coordination: invalid cron expression %q", expr)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduledChain{Name: name, Expr: expr, NewSteps: newSteps, graph: graph, logger: logger, gron: g}, nil
}

// Run blocks, ticking once a minute and firing the chain whenever Expr
// matches, until ctx is cancelled. Each firing creates a fresh Chain
// (with its own correlation id) so overlapping runs are tracked
// independently and still count against Limits.MaxActiveChains.
func (s *ScheduledChain) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			due, err := s.gron.IsDue(s.Expr, now)
			if err != nil {
				s.logger.Error("coordination: cron evaluation failed", "chain", s.Name, "error", err)
				continue
			}
			if !due {
				continue
			}
			c, err := s.graph.NewChain(s.Name, s.NewSteps())
			if err != nil {
				s.logger.Warn("coordination: skipped scheduled firing", "chain", s.Name, "error", err)
				continue
			}
			go func() {
				if err := s.graph.Execute(ctx, c); err != nil {
					s.logger.Error("coordination: scheduled chain failed", "chain", s.Name, "correlation_id", c.CorrelationID, "error", err)
				}
			}()
		}
	}
}
