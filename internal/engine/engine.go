// Package engine runs workflows: it resolves a composition into an execution
// graph, executes it batch by batch and evaluates the expression tree with
// short-circuit semantics.
package engine

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/executor"
	"github.com/maxkimambo/taskflow/internal/logger"
	"github.com/maxkimambo/taskflow/internal/metrics"
	"github.com/maxkimambo/taskflow/internal/resolver"
	"github.com/maxkimambo/taskflow/internal/task"
)

// Config contains configuration for workflow runs
type Config struct {
	// MaxParallelTasks is the maximum number of invocations running at once
	MaxParallelTasks int

	// TaskTimeout bounds one attempt of tasks that declare no timeout. Zero disables it.
	TaskTimeout time.Duration

	// DefaultRetries applies to tasks whose Retries is nil
	DefaultRetries uint64

	// RetryInterval is the first backoff interval between attempts
	RetryInterval time.Duration
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		MaxParallelTasks: 10,
		TaskTimeout:      15 * time.Minute,
		DefaultRetries:   0,
		RetryInterval:    500 * time.Millisecond,
	}
}

// Engine runs workflows against one task registry
type Engine struct {
	registry  *task.Registry
	executors *executor.Table
	config    Config
	metrics   *metrics.Metrics
}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics records run and invocation metrics into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an engine. Invalid config values fall back to the defaults.
func New(registry *task.Registry, executors *executor.Table, config Config, opts ...Option) *Engine {
	defaults := DefaultConfig()
	if config.MaxParallelTasks <= 0 {
		config.MaxParallelTasks = defaults.MaxParallelTasks
	}
	if config.TaskTimeout < 0 {
		config.TaskTimeout = 0
	}
	if config.RetryInterval < 0 {
		config.RetryInterval = 0
	}

	e := &Engine{
		registry:  registry,
		executors: executors,
		config:    config,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	return e
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.config
}

// Metrics returns the engine's collectors
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Plan composes wf with args and resolves the execution graph without running it
func (e *Engine) Plan(wf *Workflow, args task.Args) (*resolver.Graph, error) {
	expr, err := wf.Compose(args)
	if err != nil {
		return nil, err
	}
	return resolver.Build(expr, e.registry, e.executors)
}

// Run executes wf with args. Structural problems (unknown tasks, unsupported
// types, cycles, bad arguments) are returned before anything runs, with a nil
// result. A run whose expression fails returns the result together with a
// WorkflowExecutionError wrapping the first failure no short-circuit masked.
func (e *Engine) Run(ctx context.Context, wf *Workflow, args task.Args) (*RunResult, error) {
	graph, err := e.Plan(wf, args)
	if err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"workflow": wf.Name(),
			"error":    err.Error(),
		}).Error("Workflow could not be resolved")
		return nil, err
	}

	r := newRun(e, wf, graph, uuid.NewString())
	return r.execute(ctx)
}

func (e *Engine) newBackOff() backoff.BackOff {
	if e.config.RetryInterval == 0 {
		return &backoff.ZeroBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.config.RetryInterval
	b.MaxElapsedTime = 0
	return b
}

// IsStructural reports whether a Run error was raised before execution started
func IsStructural(err error) bool {
	return errors.IsStructural(err)
}
