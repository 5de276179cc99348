package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cmdb-sync/core/config"
	"cmdb-sync/core/logger"
	"cmdb-sync/core/output"
	"cmdb-sync/feature/opsview"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the purge command
	yesPurge    bool
	outputPurge string
)

// purgeCmd removes one CMDB instance's hosts from the target.
var purgeCmd = &cobra.Command{
	Use:   "purge <instance>",
	Short: "Delete every target host owned by one CMDB instance",
	Long: `Purge deletes every monitoring host whose SERVICENOW_INSTANCE variable
matches the given instance, prunes sync-created hashtags left without any
host or service check, and reloads the target once.

A sync run never deletes hosts, even when the CMDB returns nothing; purge
is the explicit operator action for decommissioning an instance.

Examples:
  # Purge with interactive confirmation
  cmdb-sync purge dev85142.service-now.com

  # Purge with auto-confirm (non-interactive)
  cmdb-sync purge dev85142.service-now.com --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().BoolVar(&yesPurge, "yes", false, "Auto-confirm the purge (non-interactive)")
	purgeCmd.Flags().StringVarP(&outputPurge, "output", "o", "table", "Output format: table, json or yaml")

	RootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	instance := args[0]

	mode, err := output.ParseMode(outputPurge)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	if !confirmPurge(instance) {
		l.Warn("Purge cancelled by user. No changes were made.")
		return nil
	}

	client, err := opsview.NewClient(cfg.Opsview, l)
	if err != nil {
		return fmt.Errorf("failed to create opsview client: %w", err)
	}
	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("failed to log in to opsview: %w", err)
	}
	defer func() {
		if err := client.Logout(context.Background()); err != nil {
			l.Warn("Opsview logout failed", zap.Error(err))
		}
	}()

	result, err := opsview.PurgeInstance(ctx, client, instance, l)
	if err != nil {
		return fmt.Errorf("failed to purge instance %s: %w", instance, err)
	}

	output.InitStyles()
	return output.RenderPurge(os.Stdout, mode, result)
}

// confirmPurge prompts the user for confirmation or uses the --yes flag.
func confirmPurge(instance string) bool {
	if yesPurge {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  This deletes every host owned by %s. Type 'yes' to confirm: ", instance)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
