package resolver

import (
	"github.com/maxkimambo/taskflow/internal/dag"
	"github.com/maxkimambo/taskflow/internal/executor"
	"github.com/maxkimambo/taskflow/internal/flow"
	"github.com/maxkimambo/taskflow/internal/task"
)

// Node is one invocation of a task in a workflow run
type Node struct {
	// ID is unique within the graph: task name and creation sequence, e.g. hello_world#2
	ID       string
	Seq      int
	Call     *flow.Call
	Task     *task.Task
	Executor executor.Executor
}

// Graph is the resolved execution plan of one workflow composition
type Graph struct {
	root    flow.Expr
	nodes   []*Node
	byID    map[string]*Node
	byCall  map[*flow.Call]*Node
	dag     *dag.DAG
	batches [][]*Node
}

// Root returns the expression the graph was built from
func (g *Graph) Root() flow.Expr {
	return g.root
}

// Nodes returns every node in creation order
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Len returns the number of invocations
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given invocation ID
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// NodeFor returns the node created for call
func (g *Graph) NodeFor(call *flow.Call) (*Node, bool) {
	n, ok := g.byCall[call]
	return n, ok
}

// Batches returns the execution batches. Every node in a batch depends only on
// nodes of earlier batches; nodes within a batch are in creation order.
func (g *Graph) Batches() [][]*Node {
	out := make([][]*Node, len(g.batches))
	for i, b := range g.batches {
		out[i] = append([]*Node(nil), b...)
	}
	return out
}

// Predecessors returns the nodes with an edge into id whose kinds intersect mask
func (g *Graph) Predecessors(id string, mask dag.EdgeKind) []*Node {
	ids := g.dag.Predecessors(id, mask)
	out := make([]*Node, 0, len(ids))
	for _, p := range ids {
		out = append(out, g.byID[p])
	}
	return out
}

// EdgeKind returns the kinds of the edge from -> to
func (g *Graph) EdgeKind(from, to string) dag.EdgeKind {
	return g.dag.EdgeKind(from, to)
}
