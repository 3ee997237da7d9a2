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
)

// Tree owns every node by id so children can look their parent up by
// handle instead of holding a strong back-reference (spec 9: avoid
// cyclic strong ownership in the composite tree).
type Tree struct {
	mu      sync.RWMutex
	nodes   map[string]*HierarchicalAgent
	parents map[string]string // childID -> parentID
}

// NewTree builds an empty tree registry.
func NewTree() *Tree {
	return &Tree{
		nodes:   make(map[string]*HierarchicalAgent),
		parents: make(map[string]string),
	}
}

// HierarchicalAgent is one node of a composite agent tree. Children are
// owned strongly; the parent link is resolved through the owning Tree.
type HierarchicalAgent struct {
	tree     *Tree
	agent    Agent
	depth    int
	mu       sync.RWMutex
	children []*HierarchicalAgent
}

// NewRoot registers agent as the root of a new tree, at depth 0.
func NewRoot(tree *Tree, agent Agent) *HierarchicalAgent {
	node := &HierarchicalAgent{tree: tree, agent: agent, depth: 0}
	tree.mu.Lock()
	tree.nodes[agent.ID()] = node
	tree.mu.Unlock()
	return node
}

// ID returns the underlying agent's id.
func (n *HierarchicalAgent) ID() string { return n.agent.ID() }

// Depth returns this node's distance from the tree root.
func (n *HierarchicalAgent) Depth() int { return n.depth }

// Agent returns the wrapped agent.
func (n *HierarchicalAgent) Agent() Agent { return n.agent }

// Parent resolves this node's parent via the tree registry, or nil at
// the root.
func (n *HierarchicalAgent) Parent() *HierarchicalAgent {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	parentID, ok := n.tree.parents[n.ID()]
	if !ok {
		return nil
	}
	return n.tree.nodes[parentID]
}

// Children returns this node's direct children.
func (n *HierarchicalAgent) Children() []*HierarchicalAgent {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*HierarchicalAgent, len(n.children))
	copy(out, n.children)
	return out
}

// AddChild extends the tree's depth by one below n, registering child in
// the shared Tree so it can resolve its parent by handle.
func (n *HierarchicalAgent) AddChild(child Agent) (*HierarchicalAgent, error) {
	n.tree.mu.Lock()
	if _, exists := n.tree.nodes[child.ID()]; exists {
		n.tree.mu.Unlock()
		return nil, fmt.Errorf("composite: agent %q already present in tree", child.ID())
	}
	node := &HierarchicalAgent{tree: n.tree, agent: child, depth: n.depth + 1}
	n.tree.nodes[child.ID()] = node
	n.tree.parents[child.ID()] = n.ID()
	n.tree.mu.Unlock()

	n.mu.Lock()
	n.children = append(n.children, node)
	n.mu.Unlock()
	return node, nil
}

// PropagateMode selects traversal order for PropagateDown.
type PropagateMode int

const (
	DepthFirst PropagateMode = iota
	BreadthFirst
)

// PropagateDown delivers ev to every descendant of n (not n itself),
// depth-first by default, breadth-first when mode is BreadthFirst. It
// stops at the first handler error and returns it.
func (n *HierarchicalAgent) PropagateDown(ctx context.Context, ev Event, mode PropagateMode) error {
	if mode == BreadthFirst {
		return n.propagateBreadthFirst(ctx, ev)
	}
	return n.propagateDepthFirst(ctx, ev)
}

func (n *HierarchicalAgent) propagateDepthFirst(ctx context.Context, ev Event) error {
	for _, child := range n.Children() {
		if err := deliver(ctx, child.agent, ev); err != nil {
			return err
		}
		if err := child.propagateDepthFirst(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (n *HierarchicalAgent) propagateBreadthFirst(ctx context.Context, ev Event) error {
	queue := n.Children()
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if err := deliver(ctx, next.agent, ev); err != nil {
			return err
		}
		queue = append(queue, next.Children()...)
	}
	return nil
}

func deliver(ctx context.Context, agent Agent, ev Event) error {
	if h, ok := agent.(EventHandler); ok {
		return h.HandleEvent(ctx, ev)
	}
	return nil
}
