package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskflow/internal/report"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List registered tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Tasks(rt.registry.List()))
		return nil
	},
}

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List defined workflows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		table := report.NewTable("NAME", "PARAMS", "DESCRIPTION")
		for _, wf := range rt.workflows.List() {
			spec := wf.Spec()
			table.AddRow(spec.Name, strings.Join(spec.Params, ", "), spec.Description)
		}
		fmt.Fprint(cmd.OutOrStdout(), table.String())
		return nil
	},
}
