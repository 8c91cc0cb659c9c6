// ABOUTME: Reset command clearing the conversation history
// ABOUTME: Todos and the user profile are always preserved
package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset conversation history (keeps todos)",
		Long: `Clear the stored conversation history.

Your todos and your name are preserved; only the remembered
conversation is removed.`,
		RunE: runReset,
	}

	cmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runReset(cmd *cobra.Command, args []string) error {
	mgr, _, err := openManager()
	if err != nil {
		return err
	}

	if !resetYes {
		fmt.Fprint(cmd.OutOrStdout(), "Reset conversation history? Your todos are kept. (y/N): ")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if !scanner.Scan() {
			return nil
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
			return nil
		}
	}

	if err := mgr.ResetHistory(); err != nil {
		return fmt.Errorf("resetting history: %w", err)
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Conversation history reset. Your todos are preserved.")
	}
	return nil
}
