// ABOUTME: Export command listing every todo, active and completed
// ABOUTME: Supports table and JSON output for scripting
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var exportJSON bool

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all todos, including completed ones",
		Long: `List every stored todo, both active and completed.

Use --json for machine-readable output.`,
		RunE: runExport,
	}

	cmd.Flags().BoolVar(&exportJSON, "json", false, "Output as JSON")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	mgr, _, err := openManager()
	if err != nil {
		return err
	}

	todos := mgr.AllTodos()

	if exportJSON {
		data, err := json.MarshalIndent(todos, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling todos: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if len(todos) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No todos found.")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSTATUS\tTASK\tCREATED\n")
	for _, todo := range todos {
		status := "active"
		if todo.Completed {
			status = "done"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", todo.ID, status, truncate(todo.Task, 60), formatTime(todo.CreatedAt))
	}
	return w.Flush()
}
