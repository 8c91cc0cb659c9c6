// ABOUTME: Stats command showing memory and activity counters
// ABOUTME: Renders the read-only aggregate from the memory manager
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show memory and usage statistics",
		Long:  `Show todo counts, conversation totals, and memory timestamps.`,
		RunE:  runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	mgr, _, err := openManager()
	if err != nil {
		return err
	}

	stats := mgr.Stats()

	name := stats.UserName
	if name == "" {
		name = "(not set)"
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FIELD\tVALUE\n")
	fmt.Fprintf(w, "Name\t%s\n", name)
	fmt.Fprintf(w, "Active todos\t%d\n", stats.ActiveTodos)
	fmt.Fprintf(w, "Completed todos\t%d\n", stats.CompletedTodos)
	fmt.Fprintf(w, "Conversations\t%d\n", stats.TotalExchanges)
	fmt.Fprintf(w, "Created\t%s\n", stats.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(w, "Last updated\t%s\n", formatTime(stats.LastUpdated))
	return w.Flush()
}
