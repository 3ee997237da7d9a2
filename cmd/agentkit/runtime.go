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
	"time"

	"github.com/kadirpekel/hector/pkg/artifact"
	"github.com/kadirpekel/hector/pkg/coordination"
	"github.com/kadirpekel/hector/pkg/credential"
	"github.com/kadirpekel/hector/pkg/hookexec"
	"github.com/kadirpekel/hector/pkg/hooks"
	"github.com/kadirpekel/hector/pkg/injection"
	"github.com/kadirpekel/hector/pkg/statestore"
	"github.com/kadirpekel/hector/pkg/vectorstore"
)

// runtime is the in-process wiring every CLI command operates against.
// A real deployment would load this from cli.Config; the CLI itself
// only needs the surfaces below, matching the spec's "shape only, not
// implementation" scoping for the CLI surface.
type runtime struct {
	configPath string
	store      statestore.Store
	artifacts  *artifact.Manager
	vectors    *vectorstore.Store
	vault      *credential.Vault
	filter     *credential.Filter
	graph      *coordination.Graph
	workflows  *injection.CoordinationWorkflowAdapter
	hooks      *hooks.Registry
	executor   *hookexec.Executor
}

func newRuntime(configPath string) *runtime {
	store := statestore.NewMemoryStore()
	graph := coordination.NewGraph(coordination.Limits{
		MaxComponentExecutionTime: 30 * time.Second,
		MaxChainExecutionTime:     5 * time.Minute,
		MaxActiveChains:           64,
	})
	registry := hooks.NewRegistry()
	executor := hookexec.New(registry, hookexec.Config{
		Metrics: hookexec.NewPrometheusMetrics(nil),
	})
	return &runtime{
		configPath: configPath,
		store:      store,
		artifacts:  artifact.NewManager(store, artifact.DefaultQuota()),
		vectors:    vectorstore.New(store, vectorstore.DefaultIndexParams()),
		vault:      credential.NewVault(),
		filter:     credential.NewFilter(),
		graph:      graph,
		workflows:  injection.NewCoordinationWorkflowAdapter(graph),
		hooks:      registry,
		executor:   executor,
	}
}
