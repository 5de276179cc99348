package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cmdb-sync/core/archive"
	"cmdb-sync/core/config"
	"cmdb-sync/core/database"
	"cmdb-sync/core/exit"
	"cmdb-sync/core/history"
	"cmdb-sync/core/logger"
	"cmdb-sync/core/output"
	"cmdb-sync/core/reconcile"
	"cmdb-sync/core/storage"
	"cmdb-sync/feature/opsview"
	"cmdb-sync/feature/servicenow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	dryRunSync bool
	forceSync  bool
	outputSync string
)

// syncCmd runs one reconciliation pass.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile CMDB records into the monitoring target",
	Long: `Sync fetches CMDB records carrying collector-cluster directives,
computes the create/update actions needed to match the monitoring target
to them, applies those actions, and reloads the target once when anything
changed. Hosts are never deleted; use purge for that.

Examples:
  # Preview the plan without writing anything
  cmdb-sync sync --dry-run

  # Run the sync
  cmdb-sync sync

  # Run even when the target has pending changes from someone else
  cmdb-sync sync --force

  # Machine-readable report
  cmdb-sync sync --output json`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Plan only, write nothing to the target")
	syncCmd.Flags().BoolVar(&forceSync, "force", false, "Proceed despite pending target configuration changes")
	syncCmd.Flags().StringVarP(&outputSync, "output", "o", "table", "Output format: table, json or yaml")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	mode, err := output.ParseMode(outputSync)
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

	runner, cleanup, err := buildRunner(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := runner.Run(ctx, reconcile.RunOptions{DryRun: dryRunSync, Force: forceSync})
	if err != nil {
		return err
	}

	if !report.DryRun {
		persistReport(ctx, cfg, l, report)
	}

	output.InitStyles()
	if err := output.RenderReport(os.Stdout, mode, report); err != nil {
		return err
	}

	if report.Failed > 0 {
		return exit.New(exit.CodePartial, fmt.Errorf("%d host(s) failed, see report", report.Failed))
	}
	return nil
}

// buildRunner wires the CMDB source and the monitoring target into a
// runner. The returned cleanup closes the target session.
func buildRunner(ctx context.Context, cfg *config.Config, l *zap.Logger) (*reconcile.Runner, func(), error) {
	snowClient, err := servicenow.NewClient(cfg.ServiceNow)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create servicenow client: %w", err)
	}
	source := servicenow.NewSource(snowClient, l)

	opsClient, err := opsview.NewClient(cfg.Opsview, l)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create opsview client: %w", err)
	}

	// The login doubles as a connection check; a bad endpoint or
	// credential fails here instead of mid-run.
	if err := opsClient.Login(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to log in to opsview: %w", err)
	}
	cleanup := func() {
		if err := opsClient.Logout(context.Background()); err != nil {
			l.Warn("Opsview logout failed", zap.Error(err))
		}
	}

	runner := &reconcile.Runner{
		Source: source,
		Target: opsview.NewTarget(opsClient, source.Instance(), l),
		Logger: l,
		Config: cfg.Sync,
	}
	return runner, cleanup, nil
}

// persistReport archives the report and records it in run history. Both
// subsystems are optional; failures warn and never fail the sync.
func persistReport(ctx context.Context, cfg *config.Config, l *zap.Logger, report *reconcile.RunReport) {
	objectName := ""
	if cfg.Storage.Bucket != "" {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			l.Warn("Optional report archive unavailable", zap.Error(err))
		} else {
			store := archive.NewStore(client, cfg.Storage.Bucket, l)
			if err := store.EnsureBucket(ctx); err != nil {
				l.Warn("Optional report archive unavailable", zap.Error(err))
			} else if name, err := store.Upload(ctx, report); err != nil {
				l.Warn("Report archive upload failed", zap.Error(err))
			} else {
				objectName = name
			}
		}
	}

	if !cfg.Database.Enabled {
		return
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		l.Warn("Optional database connection failed", zap.Error(err))
		return
	}
	store := history.NewStore(db)
	if err := store.Migrate(); err != nil {
		l.Warn("Run history migration failed", zap.Error(err))
		return
	}
	if err := store.Record(ctx, report, objectName); err != nil {
		l.Warn("Recording run history failed", zap.Error(err))
	}
}
