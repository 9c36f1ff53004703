package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskflow/internal/catalog"
	"github.com/maxkimambo/taskflow/internal/engine"
	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/executor"
	"github.com/maxkimambo/taskflow/internal/logger"
	"github.com/maxkimambo/taskflow/internal/task"
)

// runtime bundles what a command needs to resolve and run workflows
type runtime struct {
	registry  *task.Registry
	workflows *catalog.Workflows
	engine    *engine.Engine
}

func newRuntime() (*runtime, error) {
	registry := task.NewRegistry()
	warnings, err := catalog.RegisterTasks(registry)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.User.Warnf("Ignoring task declaration: %s", errors.Summary(w))
	}
	registry.Close()

	launcher := executor.NewCLILauncher(cfg.Container.Runtime)
	launcher.Pull = cfg.Container.Pull
	launcher.ExtraArgs = cfg.Container.ExtraArgs

	eng := engine.New(registry, executor.DefaultTable(launcher), engineConfig())

	return &runtime{
		registry:  registry,
		workflows: catalog.NewWorkflows(),
		engine:    eng,
	}, nil
}

func engineConfig() engine.Config {
	return engine.Config{
		MaxParallelTasks: cfg.MaxParallelTasks,
		TaskTimeout:      cfg.TaskTimeout,
		DefaultRetries:   cfg.DefaultRetries,
		RetryInterval:    cfg.RetryInterval,
	}
}

// applyRunFlags lets command line flags override file configuration
func applyRunFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("parallel") {
		cfg.MaxParallelTasks, _ = flags.GetInt("parallel")
	}
	if flags.Changed("retries") {
		cfg.DefaultRetries, _ = flags.GetUint64("retries")
	}
	if flags.Changed("timeout") {
		cfg.TaskTimeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("runtime") {
		cfg.Container.Runtime, _ = flags.GetString("runtime")
	}
	return cfg.Validate()
}

// parseArgs converts name=value pairs. Values that parse as integers,
// floats or booleans keep that type; everything else stays a string.
func parseArgs(pairs []string) (task.Args, error) {
	args := task.Args{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q, expected name=value", pair)
		}
		if _, dup := args[name]; dup {
			return nil, fmt.Errorf("argument %q given more than once", name)
		}
		args[name] = parseValue(value)
	}
	return args, nil
}

func parseValue(s string) interface{} {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
