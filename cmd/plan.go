package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskflow/internal/report"
)

var planArgs []string

var planCmd = &cobra.Command{
	Use:   "plan <workflow>",
	Short: "Show the execution batches of a workflow without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wfArgs, err := parseArgs(planArgs)
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

		graph, err := rt.engine.Plan(wf, wfArgs)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Plan(wf.Name(), graph))
		return nil
	},
}

func init() {
	planCmd.Flags().StringArrayVarP(&planArgs, "arg", "a", nil, "Workflow argument as name=value (repeatable)")
}
