// Package config provides configuration management for the sync service.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details for run history
//   - Storage: S3/MinIO credentials and bucket settings for report archives
//   - Log: Logging level and format
//   - ServiceNow: CMDB instance URL and credentials
//   - Opsview: monitoring target URL and credentials
//   - Sync: worker count, retry policy and defaults for the reconciler
//
// Values are validated after loading, so a misconfigured worker count or
// retry policy fails fast instead of surfacing mid-run.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
