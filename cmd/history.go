package cmd

import (
	"context"
	"fmt"
	"os"

	"cmdb-sync/core/config"
	"cmdb-sync/core/database"
	"cmdb-sync/core/history"
	"cmdb-sync/core/output"

	"github.com/spf13/cobra"
)

var (
	// Flags for the history command
	limitHistory  int
	outputHistory string
)

// historyCmd lists past sync runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sync runs",
	Long: `History lists past sync runs from the run history database, newest
first. Run history must be enabled (DATABASE_ENABLED=true); dry runs are
not recorded.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&limitHistory, "limit", history.DefaultListLimit, "Maximum number of runs to list")
	historyCmd.Flags().StringVarP(&outputHistory, "output", "o", "table", "Output format: table, json or yaml")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	mode, err := output.ParseMode(outputHistory)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Database.Enabled {
		return fmt.Errorf("run history requires a database (set DATABASE_ENABLED=true)")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	store := history.NewStore(db)
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate history schema: %w", err)
	}

	runs, err := store.List(context.Background(), limitHistory)
	if err != nil {
		return err
	}

	output.InitStyles()
	return output.RenderHistory(os.Stdout, mode, runs)
}
