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

// Package isolation enforces per-agent access boundaries over the shared
// statestore.Store (spec 4.6): every state access is checked against an
// agent's IsolationBoundary and, for shared scopes, against an explicit
// ACL. Every decision is audited.
package isolation

import (
	"sync"
	"time"

	"github.com/kadirpekel/hector/pkg/statestore"
)

// Op is an access operation kind.
type Op string

const (
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpDelete Op = "delete"
)

// BoundaryKind is the closed set of isolation policies an agent can have.
type BoundaryKind string

const (
	Strict         BoundaryKind = "strict"
	SharedAccess   BoundaryKind = "shared_access"
	ReadOnlyShared BoundaryKind = "read_only_shared"
	Custom         BoundaryKind = "custom"
)

// Boundary is one agent's isolation policy.
type Boundary struct {
	Kind       BoundaryKind
	PolicyName string // meaningful only when Kind == Custom
	OwnScope   statestore.Scope
}

// AuditEntry is one recorded access decision.
type AuditEntry struct {
	Timestamp time.Time
	AgentID   string
	Scope     statestore.Scope
	Op        Op
	Allowed   bool
	Reason    string
}

// SharedScopeConfig is an ACL over one shared scope.
type SharedScopeConfig struct {
	ScopeID        string
	OwnerAgentID   string
	AllowedAgents  map[string]bool
	Permissions    map[string][]Op // agentID -> allowed ops
	CreatedAt      time.Time
	ExpiresAt      *time.Time
}

func (c *SharedScopeConfig) expired() bool {
	return c.ExpiresAt != nil && time.Now().After(*c.ExpiresAt)
}

func (c *SharedScopeConfig) allows(agentID string, op Op) bool {
	if c.expired() {
		return false
	}
	if !c.AllowedAgents[agentID] {
		return false
	}
	ops, ok := c.Permissions[agentID]
	if !ok {
		return false
	}
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// Manager is the per-agent access-boundary enforcer. It is safe for
// concurrent use; checks are O(1) amortized hash lookups as required by
// spec 4.6.
type Manager struct {
	mu          sync.RWMutex
	boundaries  map[string]Boundary            // agentID -> boundary
	sharedCfgs  map[string]*SharedScopeConfig   // scopeID -> config
	audit       []AuditEntry
	auditLimit  int
}

// NewManager builds an empty Manager. auditLimit bounds the in-memory
// audit ring (0 means unbounded).
func NewManager(auditLimit int) *Manager {
	return &Manager{
		boundaries: make(map[string]Boundary),
		sharedCfgs: make(map[string]*SharedScopeConfig),
		auditLimit: auditLimit,
	}
}

// SetBoundary registers/replaces agentID's isolation boundary.
func (m *Manager) SetBoundary(agentID string, b Boundary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boundaries[agentID] = b
}

// GrantSharedScope registers (or replaces) an ACL for a shared scope.
func (m *Manager) GrantSharedScope(cfg *SharedScopeConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sharedCfgs[cfg.ScopeID] = cfg
}

// CheckAccess answers spec 4.6's check_access and appends an audit entry.
// I4: for unchanged inputs and an unexpired grant, the verdict is stable.
func (m *Manager) CheckAccess(agentID string, scope statestore.Scope, op Op) bool {
	allowed, reason := m.evaluate(agentID, scope, op)
	m.mu.Lock()
	entry := AuditEntry{Timestamp: time.Now(), AgentID: agentID, Scope: scope, Op: op, Allowed: allowed, Reason: reason}
	m.audit = append(m.audit, entry)
	if m.auditLimit > 0 && len(m.audit) > m.auditLimit {
		m.audit = m.audit[len(m.audit)-m.auditLimit:]
	}
	m.mu.Unlock()
	return allowed
}

func (m *Manager) evaluate(agentID string, scope statestore.Scope, op Op) (bool, string) {
	m.mu.RLock()
	b, hasBoundary := m.boundaries[agentID]
	m.mu.RUnlock()

	if !hasBoundary {
		return false, "no isolation boundary configured for agent"
	}

	if b.OwnScope == scope {
		return true, "own scope"
	}

	switch b.Kind {
	case Strict:
		return false, "strict isolation forbids cross-agent access"
	case ReadOnlyShared:
		if op != OpRead {
			return false, "read-only shared boundary forbids non-read op"
		}
		return m.checkShared(agentID, scope, op)
	case SharedAccess, Custom:
		return m.checkShared(agentID, scope, op)
	default:
		return false, "unknown boundary kind"
	}
}

func (m *Manager) checkShared(agentID string, scope statestore.Scope, op Op) (bool, string) {
	m.mu.RLock()
	cfg, ok := m.sharedCfgs[scope.String()]
	m.mu.RUnlock()
	if !ok {
		return false, "no shared scope grant"
	}
	if cfg.expired() {
		return false, "shared scope grant expired"
	}
	if !cfg.allows(agentID, op) {
		return false, "not permitted by shared scope ACL"
	}
	return true, "shared scope grant"
}

// Audit returns a copy of the recorded audit log.
func (m *Manager) Audit() []AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]AuditEntry, len(m.audit))
	copy(out, m.audit)
	return out
}
