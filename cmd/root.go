package cmd

import (
	"errors"
	"fmt"
	"os"

	"cmdb-sync/core/exit"
	"cmdb-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cmdb-sync",
	Short: "CMDB to monitoring host sync",
	Long: `cmdb-sync reconciles host records from a ServiceNow CMDB into an
Opsview monitoring instance. The CMDB is the source of truth; the sync
is one-way and never deletes hosts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		// We use "debug" level configuration to get ISO8601 timestamps (DevConfig) instead of Epoch (ProdConfig)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			// Log the error with structured logger (Console encoding will make it pretty)
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}

		// Commands signal partial failure through exit.Error; anything
		// else is fatal.
		code := exit.CodeFatal
		var ee *exit.Error
		if errors.As(err, &ee) {
			code = ee.Code
		}
		os.Exit(code)
	}
}
