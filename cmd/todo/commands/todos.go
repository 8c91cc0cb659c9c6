// ABOUTME: Direct todo management commands that bypass the LLM
// ABOUTME: Provides todos add, list, and done using the same dispatch surface as the agent
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/todo-agent/internal/tools"
)

// NewTodosCmd creates the todos command group
func NewTodosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Manage your to-do list directly",
		Long: `Manage your to-do list without going through the assistant.

Examples:
  todo todos list
  todo todos add "Buy groceries"
  todo todos done groceries
  todo todos done all`,
		RunE: runTodosList,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List active todos",
			RunE:  runTodosList,
		},
		&cobra.Command{
			Use:   "add [task]",
			Short: "Add a new todo",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runTodosAdd,
		},
		&cobra.Command{
			Use:   "done [task]",
			Short: "Mark a todo as completed (partial matches work; 'all' completes everything)",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runTodosDone,
		},
	)

	return cmd
}

func runTodosList(cmd *cobra.Command, args []string) error {
	mgr, _, err := openManager()
	if err != nil {
		return err
	}

	todos := mgr.ActiveTodos()
	if len(todos) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "Your to-do list is empty.")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTASK\tCREATED\n")
	for _, todo := range todos {
		fmt.Fprintf(w, "%d\t%s\t%s\n", todo.ID, truncate(todo.Task, 60), formatTime(todo.CreatedAt))
	}
	return w.Flush()
}

func runTodosAdd(cmd *cobra.Command, args []string) error {
	mgr, _, err := openManager()
	if err != nil {
		return err
	}

	res := tools.NewDispatcher(mgr).Find("add_todo").Call(
		cmd.Context(), map[string]any{"task": strings.Join(args, " ")})
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)

	if res.Outcome == tools.OutcomeError {
		return fmt.Errorf("add failed")
	}
	return nil
}

func runTodosDone(cmd *cobra.Command, args []string) error {
	mgr, _, err := openManager()
	if err != nil {
		return err
	}

	res := tools.NewDispatcher(mgr).Find("remove_todo").Call(
		cmd.Context(), map[string]any{"task": strings.Join(args, " ")})
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)

	if res.Outcome == tools.OutcomeError {
		return fmt.Errorf("completion failed")
	}
	return nil
}
