// Package database handles the run history database connection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration.
//
// # Connect
//
// The Connect function establishes a connection with sane pool settings
// and verifies it with a ping. Run history is optional: when the
// database is unreachable, callers log a warning and sync without it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("run history disabled", zap.Error(err))
//	}
package database
