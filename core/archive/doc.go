// Package archive stores full run reports in object storage.
//
// The history database keeps per-run counters; the archive keeps the
// complete report JSON, including every planned action and failure, so
// a run can be investigated long after its logs rotated away.
//
// Objects are named reports/YYYY/MM/DD/run-<id>.json under a single
// configured bucket. Archiving is best effort and optional: an
// unconfigured bucket disables it and upload failures are warnings,
// never sync failures.
package archive
