// Package history persists sync run summaries to a relational database.
//
// Every finished run can be recorded as a Run row plus one RunFailure
// row per skipped or failed host, giving operators an audit trail of
// what each run did and when hosts started failing.
//
// History is strictly optional: the sync pipeline works without a
// database, and an unreachable one downgrades to a logged warning.
//
// # Schema
//
// The schema is managed with GORM AutoMigrate on two tables,
// sync_runs and sync_run_failures. Full report JSON is not stored
// here; the archive keeps it, and ArchiveObject points at it.
//
// # Usage
//
//	store := history.NewStore(db)
//	if err := store.Migrate(); err != nil { ... }
//	_ = store.Record(ctx, report, objectName)
//	runs, _ := store.List(ctx, 20)
package history
