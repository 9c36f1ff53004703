package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/maxkimambo/taskflow/internal/dag"
	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/executor"
	"github.com/maxkimambo/taskflow/internal/flow"
	"github.com/maxkimambo/taskflow/internal/logger"
	"github.com/maxkimambo/taskflow/internal/resolver"
	"github.com/maxkimambo/taskflow/internal/task"
)

// run is the mutable state of one workflow run
type run struct {
	engine *Engine
	wf     *Workflow
	graph  *resolver.Graph
	order  []*resolver.Node
	inv    map[string]*Invocation
	result *RunResult
}

func newRun(e *Engine, wf *Workflow, graph *resolver.Graph, runID string) *run {
	r := &run{
		engine: e,
		wf:     wf,
		graph:  graph,
		inv:    make(map[string]*Invocation, graph.Len()),
		result: &RunResult{
			RunID:    runID,
			Workflow: wf.Name(),
		},
	}

	for _, b := range graph.Batches() {
		r.order = append(r.order, b...)
	}
	for _, n := range graph.Nodes() {
		inv := &Invocation{
			ID:   n.ID,
			Task: n.Task.Name(),
			Type: n.Task.Type(),
		}
		inv.transition(executor.StatusPending)
		r.inv[n.ID] = inv
		r.result.Invocations = append(r.result.Invocations, inv)
	}
	return r
}

func (r *run) execute(ctx context.Context) (*RunResult, error) {
	r.result.StartTime = time.Now()
	root := r.graph.Root()
	batches := r.graph.Batches()

	logger.User.Startingf("Running workflow %s (run %s)", r.wf.Name(), r.result.RunID)
	logger.Op.WithFields(map[string]interface{}{
		"workflow":    r.wf.Name(),
		"run_id":      r.result.RunID,
		"invocations": r.graph.Len(),
		"batches":     len(batches),
		"parallel":    r.engine.config.MaxParallelTasks,
	}).Info("Starting workflow run")

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return r.interrupt(err)
		}

		r.skipDead()
		r.cancelBlocked()
		if flow.Evaluate(root, r.lookup).State != flow.Undecided {
			break
		}

		var runnable []*resolver.Node
		for _, n := range batch {
			if r.inv[n.ID].Status == executor.StatusPending {
				runnable = append(runnable, n)
			}
		}
		if len(runnable) == 0 {
			continue
		}

		logger.Op.WithFields(map[string]interface{}{
			"batch":       i + 1,
			"invocations": len(runnable),
		}).Debug("Dispatching batch")

		r.runBatch(ctx, runnable)
		if err := ctx.Err(); err != nil {
			return r.interrupt(err)
		}
	}

	return r.finish()
}

// runBatch executes the nodes of one batch concurrently, bounded by MaxParallelTasks
func (r *run) runBatch(ctx context.Context, nodes []*resolver.Node) {
	var g errgroup.Group
	g.SetLimit(r.engine.config.MaxParallelTasks)

	for _, n := range nodes {
		n := n
		inv := r.inv[n.ID]
		inv.Args = r.bindArgs(n)
		r.setStatus(inv, executor.StatusReady)

		g.Go(func() error {
			r.executeNode(ctx, n, inv)
			return nil
		})
	}
	_ = g.Wait()
}

// executeNode runs one invocation with its retry and timeout policy
func (r *run) executeNode(ctx context.Context, n *resolver.Node, inv *Invocation) {
	cfg := r.engine.config
	spec := n.Task.Spec()

	retries := cfg.DefaultRetries
	if spec.Retries != nil {
		retries = *spec.Retries
	}
	timeout := spec.Timeout
	if timeout == 0 {
		timeout = cfg.TaskTimeout
	}

	inv.StartTime = time.Now()
	r.setStatus(inv, executor.StatusRunning)
	logger.User.Dispatchf("invocation %s started", inv.ID)

	var result *executor.Result
	attempt := func() error {
		inv.Attempts++
		if inv.Attempts > 1 {
			r.engine.metrics.ObserveRetry(inv.Task)
			logger.Op.WithFields(map[string]interface{}{
				"invocation": inv.ID,
				"attempt":    inv.Attempts,
			}).Warn("Retrying invocation")
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()

		result = n.Executor.Execute(attemptCtx, n.Task, inv.Args)
		if result.Status == executor.StatusSucceeded {
			return nil
		}
		err := result.Err
		if err == nil {
			err = fmt.Errorf("task %s reported %s without an error", inv.Task, result.Status)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.engine.newBackOff(), retries), ctx)
	retryErr := backoff.Retry(attempt, policy)

	inv.EndTime = time.Now()
	if result != nil {
		inv.ExitCode = result.ExitCode
		inv.Stdout = result.Stdout
		inv.Stderr = result.Stderr
	}

	if retryErr == nil && result != nil && result.Status == executor.StatusSucceeded {
		inv.Value = result.Value
		r.setStatus(inv, executor.StatusSucceeded)
		logger.User.Successf("invocation %s succeeded", inv.ID)
		return
	}

	cause := retryErr
	if result != nil && result.Err != nil {
		cause = result.Err
	}
	failure := errors.NewExecutionFailureError(inv.ID, inv.Task, cause).
		WithContext("attempts", inv.Attempts)
	if inv.ExitCode != 0 {
		failure = failure.WithContext("exit_code", inv.ExitCode)
	}
	inv.Err = failure
	r.setStatus(inv, executor.StatusFailed)
	logger.User.Errorf("invocation %s failed: %v", inv.ID, cause)
}

// bindArgs replaces call references with the value of the referenced invocation
func (r *run) bindArgs(n *resolver.Node) task.Args {
	args := make(task.Args, len(n.Call.Args))
	for name, v := range n.Call.Args {
		if ref, ok := v.(*flow.Call); ok {
			if upstream, found := r.graph.NodeFor(ref); found {
				v = r.inv[upstream.ID].Value
			}
		}
		args[name] = v
	}
	return args
}

// lookup maps invocation state to the three-valued outcome used by flow.Evaluate
func (r *run) lookup(c *flow.Call) flow.Outcome {
	n, ok := r.graph.NodeFor(c)
	if !ok {
		return flow.Outcome{State: flow.Undecided}
	}
	inv := r.inv[n.ID]
	switch inv.Status {
	case executor.StatusSucceeded:
		return flow.Outcome{State: flow.Decided, Value: inv.Value, Call: c}
	case executor.StatusFailed, executor.StatusCancelled:
		return flow.Outcome{State: flow.Failed, Err: inv.Err, Call: c}
	default:
		return flow.Outcome{State: flow.Undecided, Call: c}
	}
}

// live returns the invocations that can still influence the result: the live
// calls of the expression tree and everything they wait on, except through
// control edges.
func (r *run) live() map[string]bool {
	set := make(map[string]bool)
	var stack []string
	for _, c := range flow.Live(r.graph.Root(), r.lookup) {
		if n, ok := r.graph.NodeFor(c); ok {
			stack = append(stack, n.ID)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set[id] {
			continue
		}
		set[id] = true
		for _, p := range r.graph.Predecessors(id, dag.All&^dag.EdgeControl) {
			stack = append(stack, p.ID)
		}
	}
	return set
}

// skipDead marks pending invocations a short-circuit made unnecessary
func (r *run) skipDead() {
	live := r.live()
	for _, n := range r.order {
		inv := r.inv[n.ID]
		if inv.Status == executor.StatusPending && !live[n.ID] {
			r.setStatus(inv, executor.StatusSkipped)
			logger.User.Skippedf("invocation %s skipped", inv.ID)
		}
	}
}

// cancelBlocked cancels pending invocations whose data or declared
// predecessors did not succeed. r.order is topological so one pass cascades.
func (r *run) cancelBlocked() {
	for _, n := range r.order {
		inv := r.inv[n.ID]
		if inv.Status != executor.StatusPending {
			continue
		}
		for _, p := range r.graph.Predecessors(n.ID, dag.Blocking) {
			upstream := r.inv[p.ID]
			if upstream.Status != executor.StatusFailed && upstream.Status != executor.StatusCancelled {
				continue
			}
			inv.Cause = upstream.ID
			if upstream.Cause != "" {
				inv.Cause = upstream.Cause
			}
			inv.Err = fmt.Errorf("upstream invocation %s did not succeed: %w", upstream.ID, upstream.Err)
			r.setStatus(inv, executor.StatusCancelled)
			logger.User.Cancelledf("invocation %s cancelled: upstream %s did not succeed", inv.ID, upstream.ID)
			break
		}
	}
}

// settleRemaining moves every pending invocation to status
func (r *run) settleRemaining(status executor.Status, err error, cause string) {
	for _, n := range r.order {
		inv := r.inv[n.ID]
		if inv.Status != executor.StatusPending {
			continue
		}
		inv.Err = err
		inv.Cause = cause
		r.setStatus(inv, status)
		if status == executor.StatusSkipped {
			logger.User.Skippedf("invocation %s skipped", inv.ID)
		} else {
			logger.User.Cancelledf("invocation %s cancelled", inv.ID)
		}
	}
}

func (r *run) finish() (*RunResult, error) {
	outcome := flow.Evaluate(r.graph.Root(), r.lookup)

	switch outcome.State {
	case flow.Decided:
		if failed := r.unmaskedFailure(); failed != nil {
			r.settleRemaining(executor.StatusCancelled,
				fmt.Errorf("workflow %s failed at invocation %s", r.wf.Name(), failed.ID), failed.ID)
			err := errors.NewWorkflowExecutionError(r.wf.Name(), failed.ID, failed.Task, failed.Err)
			return r.done("failed", err)
		}
		r.settleRemaining(executor.StatusSkipped, nil, "")
		r.result.Value = outcome.Value
		return r.done("succeeded", nil)

	case flow.Failed:
		failed := r.rootCause(outcome)
		r.settleRemaining(executor.StatusCancelled,
			fmt.Errorf("workflow %s failed at invocation %s", r.wf.Name(), failed.ID), failed.ID)
		err := errors.NewWorkflowExecutionError(r.wf.Name(), failed.ID, failed.Task, failed.Err)
		return r.done("failed", err)

	default:
		err := errors.NewWorkflowExecutionError(r.wf.Name(), "", "",
			fmt.Errorf("expression left undecided after all batches"))
		r.settleRemaining(executor.StatusCancelled, err, "")
		return r.done("failed", err)
	}
}

// unmaskedFailure returns the first failed invocation that no OR absorbed.
// The root can be decided while such a failure exists when the failing call
// only precedes a tree call through Then.
func (r *run) unmaskedFailure() *Invocation {
	masked := flow.Masked(r.graph.Root(), r.lookup)
	for _, n := range r.order {
		inv := r.inv[n.ID]
		if inv.Status == executor.StatusFailed && !masked[n.Call] {
			return inv
		}
	}
	return nil
}

// rootCause follows cancellations back to the invocation that actually failed
func (r *run) rootCause(outcome flow.Outcome) *Invocation {
	n, _ := r.graph.NodeFor(outcome.Call)
	inv := r.inv[n.ID]
	if inv.Cause != "" {
		if cause, ok := r.inv[inv.Cause]; ok {
			return cause
		}
	}
	return inv
}

func (r *run) interrupt(cause error) (*RunResult, error) {
	r.settleRemaining(executor.StatusCancelled, cause, "")
	return r.done("interrupted", errors.NewRunInterruptedError(r.wf.Name(), cause))
}

func (r *run) done(outcome string, err error) (*RunResult, error) {
	r.result.EndTime = time.Now()
	r.result.Err = err
	r.engine.metrics.ObserveRun(r.wf.Name(), outcome, r.result.Duration())

	fields := map[string]interface{}{
		"workflow": r.wf.Name(),
		"run_id":   r.result.RunID,
		"outcome":  outcome,
		"duration": r.result.Duration().String(),
	}
	if err != nil {
		logger.Op.WithFields(fields).Error("Workflow run failed")
		logger.User.Errorf("Workflow %s %s: %v", r.wf.Name(), outcome, err)
		return r.result, err
	}
	logger.Op.WithFields(fields).Info("Workflow run finished")
	logger.User.Successf("Workflow %s returned %s", r.wf.Name(), task.Format(r.result.Value))
	return r.result, nil
}

// setStatus records a transition and, for terminal states, the invocation metric
func (r *run) setStatus(inv *Invocation, status executor.Status) {
	inv.transition(status)
	logger.Op.WithFields(map[string]interface{}{
		"invocation": inv.ID,
		"status":     status.String(),
	}).Debug("Invocation transition")
	if status.Terminal() {
		r.engine.metrics.ObserveInvocation(inv.Task, status.String(), inv.Duration())
	}
}
