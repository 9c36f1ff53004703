package dag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/maxkimambo/taskflow/internal/errors"
)

// DAG is a directed graph of string node IDs with typed edges.
// Node insertion order is remembered and used to keep batches deterministic.
type DAG struct {
	mutex sync.RWMutex
	index map[string]int
	order []string
	// preds[to][from] holds the kinds of the edge from -> to
	preds map[string]map[string]EdgeKind
	succs map[string][]string
}

// NewDAG creates a new empty DAG.
func NewDAG() *DAG {
	return &DAG{
		index: make(map[string]int),
		preds: make(map[string]map[string]EdgeKind),
		succs: make(map[string][]string),
	}
}

// AddNode adds a node to the DAG. IDs must be unique and non-empty.
func (d *DAG) AddNode(id string) error {
	if id == "" {
		return fmt.Errorf("node ID cannot be empty")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if _, exists := d.index[id]; exists {
		return fmt.Errorf("node with ID %s already exists", id)
	}

	d.index[id] = len(d.order)
	d.order = append(d.order, id)
	d.preds[id] = make(map[string]EdgeKind)
	return nil
}

// AddEdge adds an edge from -> to: 'to' may not start before 'from' is settled.
// Adding an edge that already exists merges the kinds.
func (d *DAG) AddEdge(from, to string, kind EdgeKind) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if _, exists := d.index[from]; !exists {
		return fmt.Errorf("source node %s does not exist", from)
	}
	if _, exists := d.index[to]; !exists {
		return fmt.Errorf("target node %s does not exist", to)
	}

	existing, had := d.preds[to][from]
	d.preds[to][from] = existing | kind
	if !had {
		d.succs[from] = append(d.succs[from], to)
	}
	return nil
}

// HasNode reports whether id is in the DAG
func (d *DAG) HasNode(id string) bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	_, ok := d.index[id]
	return ok
}

// Nodes returns all node IDs in insertion order
func (d *DAG) Nodes() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return append([]string(nil), d.order...)
}

// Size returns the number of nodes in the DAG
func (d *DAG) Size() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return len(d.order)
}

// EdgeKind returns the kinds of the edge from -> to, or 0 if there is none
func (d *DAG) EdgeKind(from, to string) EdgeKind {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.preds[to][from]
}

// Predecessors returns the nodes with an edge into id whose kind intersects mask,
// in insertion order
func (d *DAG) Predecessors(id string, mask EdgeKind) []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	var out []string
	for from, kind := range d.preds[id] {
		if kind&mask != 0 {
			out = append(out, from)
		}
	}
	d.sortByIndex(out)
	return out
}

// Reaches reports whether a path of edges matching mask leads from -> to.
// A node reaches itself.
func (d *DAG) Reaches(from, to string, mask EdgeKind) bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	seen := map[string]bool{to: true}
	stack := []string{to}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == from {
			return true
		}
		for pred, kind := range d.preds[id] {
			if kind&mask != 0 && !seen[pred] {
				seen[pred] = true
				stack = append(stack, pred)
			}
		}
	}
	return false
}

// Successors returns the nodes id has an edge into, in insertion order
func (d *DAG) Successors(id string) []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	out := append([]string(nil), d.succs[id]...)
	d.sortByIndex(out)
	return out
}

// Batches groups the nodes into levels with Kahn's algorithm. Every node lands
// in a strictly later batch than all of its predecessors; nodes inside a batch
// are in insertion order. A cycle fails with a CyclicDependency error.
func (d *DAG) Batches() ([][]string, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	inDegree := make(map[string]int, len(d.order))
	for _, id := range d.order {
		inDegree[id] = len(d.preds[id])
	}

	var current []string
	for _, id := range d.order {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}

	var batches [][]string
	placed := 0
	for len(current) > 0 {
		batches = append(batches, current)
		placed += len(current)

		var next []string
		for _, id := range current {
			for _, succ := range d.succs[id] {
				inDegree[succ]--
				if inDegree[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		d.sortByIndex(next)
		current = next
	}

	if placed != len(d.order) {
		var remaining []string
		for _, id := range d.order {
			if inDegree[id] > 0 {
				remaining = append(remaining, id)
			}
		}
		return nil, errors.NewCyclicDependencyError(d.findCycle(remaining)).
			WithContext("remaining", remaining)
	}

	return batches, nil
}

// TopologicalSort flattens Batches into a single execution order
func (d *DAG) TopologicalSort() ([]string, error) {
	batches, err := d.Batches()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, b := range batches {
		out = append(out, b...)
	}
	return out, nil
}

// findCycle returns one concrete cycle among the remaining nodes, starting
// from the earliest inserted member. Every remaining node either sits on a
// cycle or is downstream of one, so walking predecessors inside the remaining
// set must revisit a node.
func (d *DAG) findCycle(remaining []string) []string {
	if len(remaining) == 0 {
		return nil
	}
	inSet := make(map[string]bool, len(remaining))
	for _, id := range remaining {
		inSet[id] = true
	}

	pos := make(map[string]int)
	var path []string
	cur := remaining[0]
	for {
		if at, seen := pos[cur]; seen {
			cycle := append([]string(nil), path[at:]...)
			// path follows predecessors; report in execution direction
			for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
				cycle[i], cycle[j] = cycle[j], cycle[i]
			}
			return d.rotateToEarliest(cycle)
		}
		pos[cur] = len(path)
		path = append(path, cur)

		next := ""
		for _, p := range d.sortedPreds(cur) {
			if inSet[p] {
				next = p
				break
			}
		}
		if next == "" {
			return remaining
		}
		cur = next
	}
}

func (d *DAG) sortedPreds(id string) []string {
	out := make([]string, 0, len(d.preds[id]))
	for from := range d.preds[id] {
		out = append(out, from)
	}
	d.sortByIndex(out)
	return out
}

func (d *DAG) rotateToEarliest(cycle []string) []string {
	start := 0
	for i, id := range cycle {
		if d.index[id] < d.index[cycle[start]] {
			start = i
		}
	}
	return append(append([]string(nil), cycle[start:]...), cycle[:start]...)
}

func (d *DAG) sortByIndex(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return d.index[ids[i]] < d.index[ids[j]]
	})
}
