// Package status exposes sync runs over HTTP for serve mode.
//
// It provides the API that turns the one-shot CLI sync into a small
// service: triggering runs, inspecting the latest result, and browsing
// recorded history.
//
// # Routes
//
//   - POST /api/v1/sync            trigger a run (?dry_run=true previews)
//   - GET  /api/v1/runs            list recorded runs
//   - GET  /api/v1/runs/latest     most recent run
//   - GET  /api/v1/runs/:id/report archived full report for one run
//
// # Run coalescing
//
// The reconciler assumes a single pass against the target at a time.
// Triggers arriving while a run is active join that run through
// singleflight and receive the same report, which is the serialization
// the engine relies on in serve mode.
package status
