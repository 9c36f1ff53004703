// Package report renders runs, plans and task catalogs for the terminal.
package report

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/maxkimambo/taskflow/internal/dag"
	"github.com/maxkimambo/taskflow/internal/engine"
	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/executor"
	"github.com/maxkimambo/taskflow/internal/resolver"
	"github.com/maxkimambo/taskflow/internal/task"
)

const maxCell = 48

// Run renders the invocation table and a summary box for a finished run
func Run(result *engine.RunResult) string {
	table := NewTable("INVOCATION", "TYPE", "STATUS", "ATTEMPTS", "DURATION", "RESULT")
	for _, inv := range result.Invocations {
		table.AddRow(
			inv.ID,
			inv.Type.String(),
			inv.Status.String(),
			fmt.Sprintf("%d", inv.Attempts),
			formatDuration(inv.Duration()),
			truncate(outcome(inv)),
		)
	}

	boxType := SuccessMessage
	title := fmt.Sprintf("Workflow %s succeeded", result.Workflow)
	if !result.Succeeded() {
		boxType = ErrorMessage
		title = fmt.Sprintf("Workflow %s failed", result.Workflow)
	}

	box := NewBox(boxType, title).
		AddKeyValue("Run", result.RunID).
		AddKeyValue("Duration", formatDuration(result.Duration()))
	if result.Succeeded() {
		box.AddKeyValue("Result", task.Format(result.Value))
	} else {
		box.AddKeyValue("Error", errors.Summary(result.Err))
	}
	box.AddLine(countsLine(result.Counts()))

	return table.String() + box.Render() + "\n"
}

// Plan renders the execution batches of a resolved graph
func Plan(name string, graph *resolver.Graph) string {
	table := NewTable("BATCH", "INVOCATION", "TYPE", "WAITS FOR")
	for i, batch := range graph.Batches() {
		for _, n := range batch {
			var waits []string
			for _, p := range graph.Predecessors(n.ID, dag.All) {
				waits = append(waits, fmt.Sprintf("%s (%s)", p.ID, graph.EdgeKind(p.ID, n.ID)))
			}
			table.AddRow(fmt.Sprintf("%d", i+1), n.ID, n.Task.Type().String(), strings.Join(waits, ", "))
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Workflow %s: %s\n", name, graph.Root()))
	sb.WriteString(table.String())
	return sb.String()
}

// Tasks renders the registered tasks in registration order
func Tasks(tasks []*task.Task) string {
	table := NewTable("NAME", "TYPE", "IMAGE", "DEPENDS ON", "DESCRIPTION")
	for _, t := range tasks {
		spec := t.Spec()
		table.AddRow(
			spec.Name,
			spec.Type.String(),
			spec.BaseImage,
			strings.Join(spec.Dependencies, ", "),
			truncate(spec.Description),
		)
	}
	return table.String()
}

func outcome(inv *engine.Invocation) string {
	switch inv.Status {
	case executor.StatusSucceeded:
		return task.Format(inv.Value)
	case executor.StatusFailed:
		return rootMessage(inv.Err)
	case executor.StatusCancelled:
		if inv.Cause != "" {
			return "after " + inv.Cause + " failed"
		}
		return rootMessage(inv.Err)
	}
	return ""
}

// rootMessage returns the message of the innermost wrapped error
func rootMessage(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := stderrors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func countsLine(counts map[executor.Status]int) string {
	order := []executor.Status{
		executor.StatusSucceeded, executor.StatusFailed, executor.StatusSkipped, executor.StatusCancelled,
	}
	parts := make([]string, 0, len(order))
	for _, s := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[s], strings.ToLower(s.String())))
	}
	return strings.Join(parts, ", ")
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= maxCell {
		return s
	}
	return string([]rune(s)[:maxCell-1]) + "…"
}
