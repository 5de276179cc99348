// Package reconcile implements the one-way host sync pipeline from a
// CMDB to a monitoring target.
//
// Data flows in one direction through four stages:
//
//  1. Parse: the raw attributes field of each CMDB record is parsed
//     into sync directives (package attributes).
//  2. Build: directives become normalized DesiredHost values. Records
//     without a collector cluster directive are out of scope; invalid
//     records are skipped with a per-host failure.
//  3. Plan: desired hosts are compared against the indexed target
//     state, producing create, update and noop actions. Planning is
//     pure and never calls the target, so the same code path serves
//     dry runs.
//  4. Execute: a bounded worker pool applies the plan, retrying
//     transient failures with exponential backoff. One configuration
//     reload is requested when anything changed.
//
// # Identity
//
// Hosts are matched across systems by Key: the CMDB sys_id stored on
// the target host, with a normalized-name fallback for hosts created
// before ids were recorded. Duplicate keys in the target state abort
// the run, since reconciling against an ambiguous state could clobber
// monitoring configuration.
//
// # Failure containment
//
// One bad record never stops a run. Parse warnings, build validation
// failures, unknown clusters and failed target calls are all recorded
// per host in the RunReport while the remaining hosts proceed. Only
// unreachable inputs, an ambiguous target index or a pending-changes
// guard abort a run as a whole.
//
// # Usage
//
//	runner := &reconcile.Runner{
//	    Source: snowSource,
//	    Target: opsviewTarget,
//	    Logger: log,
//	    Config: cfg.Sync,
//	}
//	report, err := runner.Run(ctx, reconcile.RunOptions{DryRun: true})
package reconcile
