// Package resolver turns a workflow expression into an execution graph.
//
// Every task call becomes a node. Edges come from four sources:
//
//	declared  the callee's spec lists the caller's task as a dependency
//	data      an argument is bound to another call's return value
//	order     Call.Then ordering without a value
//	control   the left operand of AND/OR must settle before the right one starts
//
// Declared and data edges block: a successor of a failed node cannot run.
// Order and control edges only sequence execution.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maxkimambo/taskflow/internal/dag"
	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/executor"
	"github.com/maxkimambo/taskflow/internal/flow"
	"github.com/maxkimambo/taskflow/internal/logger"
	"github.com/maxkimambo/taskflow/internal/task"
)

// Build resolves every call in root against the registry and the executor table
// and computes the execution batches. It fails before anything runs on an
// unknown task, an unsupported task type, mismatched arguments or a cycle.
func Build(root flow.Expr, registry *task.Registry, executors *executor.Table) (*Graph, error) {
	if err := flow.Validate(root); err != nil {
		return nil, errors.NewInvalidWorkflowError(describe(root), err.Error())
	}

	g := &Graph{
		root:   root,
		byID:   make(map[string]*Node),
		byCall: make(map[*flow.Call]*Node),
		dag:    dag.NewDAG(),
	}

	byTask := make(map[string][]*Node)
	for i, call := range flow.Calls(root) {
		t, err := registry.Lookup(call.Task)
		if err != nil {
			return nil, err
		}
		exec, err := executors.For(t)
		if err != nil {
			return nil, err
		}

		n := &Node{
			ID:       fmt.Sprintf("%s#%d", call.Task, i+1),
			Seq:      i + 1,
			Call:     call,
			Task:     t,
			Executor: exec,
		}
		if err := checkArgs(n); err != nil {
			return nil, err
		}
		if err := g.dag.AddNode(n.ID); err != nil {
			return nil, err
		}

		g.nodes = append(g.nodes, n)
		g.byID[n.ID] = n
		g.byCall[call] = n
		byTask[call.Task] = append(byTask[call.Task], n)
	}

	for _, n := range g.nodes {
		for _, ref := range n.Call.ArgRefs() {
			if err := g.link(ref, n, dag.EdgeData); err != nil {
				return nil, err
			}
		}
		for _, ref := range n.Call.After {
			if err := g.link(ref, n, dag.EdgeOrder); err != nil {
				return nil, err
			}
		}
		for _, dep := range n.Task.Spec().Dependencies {
			if !registry.Has(dep) {
				return nil, errors.NewUnknownTaskError(dep, n.Task.Name())
			}
			// A registered dependency that this workflow never invokes only
			// constrains order, and there is nothing to wait for.
			for _, upstream := range byTask[dep] {
				if err := g.dag.AddEdge(upstream.ID, n.ID, dag.EdgeDeclared); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := g.addControlEdges(root); err != nil {
		return nil, err
	}

	batches, err := g.dag.Batches()
	if err != nil {
		return nil, err
	}
	for _, ids := range batches {
		batch := make([]*Node, 0, len(ids))
		for _, id := range ids {
			batch = append(batch, g.byID[id])
		}
		g.batches = append(g.batches, batch)
	}

	logger.Op.WithFields(map[string]interface{}{
		"invocations": len(g.nodes),
		"batches":     len(g.batches),
	}).Debug("Resolved execution graph")

	return g, nil
}

func (g *Graph) link(from *flow.Call, to *Node, kind dag.EdgeKind) error {
	upstream, ok := g.byCall[from]
	if !ok {
		return fmt.Errorf("call %s referenced by %s is not part of the workflow", from.Task, to.ID)
	}
	return g.dag.AddEdge(upstream.ID, to.ID, kind)
}

// addControlEdges makes every call of the right operand of AND/OR wait for every
// top-level call of the left operand. Calls shared with the left operand are
// left alone; they already run before the combinator is decided. So is a right
// call the left call already waits on through other edges: it has to run first
// and stays live through those edges.
func (g *Graph) addControlEdges(e flow.Expr) error {
	var left, right flow.Expr
	switch n := e.(type) {
	case *flow.Or:
		left, right = n.Left, n.Right
	case *flow.And:
		left, right = n.Left, n.Right
	case *flow.Not:
		return g.addControlEdges(n.Operand)
	default:
		return nil
	}

	inLeft := make(map[*flow.Call]bool)
	for _, c := range flow.Calls(left) {
		inLeft[c] = true
	}
	for _, src := range flow.Leaves(left) {
		for _, dst := range flow.Calls(right) {
			from, to := g.byCall[src].ID, g.byCall[dst].ID
			if inLeft[dst] || g.dag.Reaches(to, from, dag.All) {
				continue
			}
			if err := g.dag.AddEdge(from, to, dag.EdgeControl); err != nil {
				return err
			}
		}
	}

	if err := g.addControlEdges(left); err != nil {
		return err
	}
	return g.addControlEdges(right)
}

// checkArgs compares the bound argument names with the declared parameters
func checkArgs(n *Node) error {
	params := n.Task.Spec().Params
	if len(params) == 0 {
		return nil
	}

	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p] = true
	}

	var missing, unexpected []string
	for _, p := range params {
		if _, ok := n.Call.Args[p]; !ok {
			missing = append(missing, p)
		}
	}
	for _, name := range n.Call.Args.Names() {
		if !declared[name] {
			unexpected = append(unexpected, name)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}

	sort.Strings(missing)
	var reasons []string
	if len(missing) > 0 {
		reasons = append(reasons, "missing "+strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		reasons = append(reasons, "unexpected "+strings.Join(unexpected, ", "))
	}
	return errors.NewInvalidArgumentsError(n.ID, n.Task.Name(), strings.Join(reasons, "; ")).
		WithContext("params", params)
}

func describe(e flow.Expr) string {
	if e == nil {
		return "<empty>"
	}
	return fmt.Sprint(e)
}
