package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskflow/internal/logger"
	"github.com/maxkimambo/taskflow/internal/report"
)

var (
	runArgs     []string
	metricsFile string
)

var runCmd = &cobra.Command{
	Use:   "run <workflow>",
	Short: "Run a workflow",
	Long: `Run a workflow and print the status of every invocation.

The run fails when the workflow expression fails. A failure that a
short-circuit makes irrelevant (the left side of an OR) does not fail the run.

EXAMPLES:
# Run the example workflow
taskflow run hello_world_workflow --arg a=1 --arg b=2

# Allow two retries per task and write metrics
taskflow run fallback_workflow --arg a=1 --arg b=2 --retries 2 --metrics-file run.prom`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyRunFlags(cmd); err != nil {
			return err
		}
		wfArgs, err := parseArgs(runArgs)
		if err != nil {
			return err
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		wf, err := rt.workflows.Lookup(args[0])
		if err != nil {
			return err
		}

		result, runErr := rt.engine.Run(cmd.Context(), wf, wfArgs)
		if result != nil && !quiet {
			fmt.Fprint(cmd.OutOrStdout(), report.Run(result))
		}

		if metricsFile != "" {
			if err := rt.engine.Metrics().WriteFile(metricsFile); err != nil {
				logger.Op.WithFields(map[string]interface{}{
					"path":  metricsFile,
					"error": err.Error(),
				}).Warn("Failed to write metrics")
			}
		}
		return runErr
	},
}

func init() {
	runCmd.Flags().StringArrayVarP(&runArgs, "arg", "a", nil, "Workflow argument as name=value (repeatable)")
	runCmd.Flags().Int("parallel", 0, "Maximum number of tasks running at once")
	runCmd.Flags().Uint64("retries", 0, "Retries for tasks that declare none")
	runCmd.Flags().Duration("timeout", 0, "Timeout per task attempt for tasks that declare none")
	runCmd.Flags().String("runtime", "", "Container runtime CLI (docker, podman)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
}
