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

package hookexec

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusMetrics_HookExecutedIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.HookExecuted("BeforeStart", true, 10*time.Millisecond)
	m.HookExecuted("BeforeStart", false, 5*time.Millisecond)

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var found bool
	for _, mf := range metricFamilies {
		if mf.GetName() != "agentkit_hooks_executed_total" {
			continue
		}
		found = true
		var total float64
		for _, metric := range mf.Metric {
			total += metric.GetCounter().GetValue()
		}
		if total != 2 {
			t.Fatalf("expected 2 total executions recorded, got %v", total)
		}
	}
	if !found {
		t.Fatal("expected agentkit_hooks_executed_total metric family")
	}
}
