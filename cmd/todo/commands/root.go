// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Wires the shared manager construction used by every command
package commands

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/todo-agent/internal/config"
	"github.com/harper/todo-agent/internal/memory"
	"github.com/harper/todo-agent/internal/storage"
)

var (
	verbose bool
	quiet   bool
	dataDir string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "AI-powered personal todo assistant",
		Long: `Todo Agent - your AI-powered personal todo assistant.

Chat naturally about your tasks, or manage them directly from the
command line. Everything is remembered between sessions in a single
local JSON file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			if quiet {
				log.SetLevel(log.ErrorLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Override the data directory")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewChatCmd(),
		NewTodosCmd(),
		NewStatsCmd(),
		NewResetCmd(),
		NewExportCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads .env and environment configuration, applying the
// --data-dir override when set.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// openManager builds the memory manager every command works against.
func openManager() (*memory.Manager, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewStore(cfg.MemoryPath())
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}

	mgr, err := memory.NewManager(store, cfg.MaxHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing memory: %w", err)
	}
	return mgr, cfg, nil
}
