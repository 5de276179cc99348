package reconcile

import (
	"context"
	"errors"
	"time"

	"cmdb-sync/core/attributes"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner wires a CMDB source and a monitoring target into a complete
// one-way sync pipeline: parse, build, plan, execute.
type Runner struct {
	Source Source
	Target Target
	Logger *zap.Logger
	Config Config
}

// RunOptions controls a single sync run.
type RunOptions struct {
	// DryRun plans the run but executes nothing.
	DryRun bool

	// Force proceeds even when the target has pending configuration
	// changes from outside the sync.
	Force bool
}

// Run performs one sync run and returns its report. The returned error
// is non-nil only for run-level failures (unreachable inputs, ambiguous
// target state, pending changes); per-host problems are recorded in the
// report instead.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		Instance:  r.Source.Instance(),
		StartedAt: time.Now().UTC(),
		DryRun:    opts.DryRun,
	}
	log := r.Logger.With(zap.String("run_id", report.RunID))

	log.Info("starting sync run",
		zap.String("instance", report.Instance),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("force", opts.Force))

	// A reload pending on the target means someone else has unapplied
	// changes; mutating now would sweep those up into our reload.
	if !opts.DryRun {
		if checker, ok := r.Target.(PendingChecker); ok {
			pending, err := checker.PendingChanges(ctx)
			if err != nil {
				return nil, &FetchError{Resource: "reload status", Err: err}
			}
			if pending && !opts.Force {
				return nil, ErrPendingChanges
			}
			if pending {
				log.Warn("target has pending configuration changes, proceeding because force is set")
				report.Warnings++
			}
		}
	}

	var (
		cis      []RawCI
		hosts    []ExistingHost
		clusters ClusterCatalog
	)

	// Parallel fetch: the three reads are independent and each one is
	// fatal on failure, so the first error wins.
	g, ctxGroup := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cis, err = r.Source.FetchCIs(ctxGroup)
		if err != nil {
			return &FetchError{Resource: "cmdb records", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		hosts, err = r.Target.FetchState(ctxGroup)
		if err != nil {
			return &FetchError{Resource: "target hosts", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		clusters, err = r.Target.FetchClusters(ctxGroup)
		if err != nil {
			return &FetchError{Resource: "cluster catalog", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("inputs fetched",
		zap.Int("cmdb_records", len(cis)),
		zap.Int("target_hosts", len(hosts)),
		zap.Int("clusters", len(clusters)))

	policy := BuildPolicy{
		Instance:        report.Instance,
		DefaultTemplate: r.Config.DefaultHostTemplate,
	}

	desired := make([]*DesiredHost, 0, len(cis))
	for _, ci := range cis {
		set, warnings := attributes.Parse(ci.Attributes)
		for _, w := range warnings {
			log.Warn("attribute directive rejected",
				zap.String("sys_id", ci.SysID),
				zap.String("ci", ci.Name),
				zap.String("directive", w.Directive),
				zap.String("reason", w.Reason))
		}
		report.Warnings += len(warnings)

		host, err := BuildDesiredHost(ci, set, policy)
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				return nil, err
			}
			log.Warn("skipping invalid record",
				zap.String("sys_id", ci.SysID),
				zap.String("ci", ci.Name),
				zap.Error(err))
			report.SkippedInvalid++
			report.Failures = append(report.Failures, Failure{Key: verr.Key, Stage: StageBuild, Cause: err.Error()})
			continue
		}
		if host == nil {
			log.Debug("record has no collector cluster directive, out of scope",
				zap.String("sys_id", ci.SysID),
				zap.String("ci", ci.Name))
			continue
		}
		desired = append(desired, host)
	}

	index, err := IndexExisting(hosts)
	if err != nil {
		return nil, err
	}

	plan := Plan(desired, index, clusters)

	for _, perr := range plan.Errors {
		var key Key
		var uce *UnknownClusterError
		if errors.As(perr, &uce) {
			key = uce.Key
		}
		log.Error("planning failed for host", zap.String("key", string(key)), zap.Error(perr))
		report.Failed++
		report.Failures = append(report.Failures, Failure{Key: key, Stage: StagePlan, Cause: perr.Error()})
	}

	report.Planned = plan.Summary()
	report.Noops = report.Planned.Noops
	report.UnmatchedKeys = plan.Unmatched
	for _, a := range plan.Actions {
		if a.Type == ActionNoop {
			continue
		}
		report.Actions = append(report.Actions, ActionRecord{Type: a.Type, Key: a.Key, Name: a.Desired.Name, Reason: a.Reason})
	}

	if len(plan.Unmatched) > 0 {
		log.Info("target hosts with no matching cmdb record", zap.Int("count", len(plan.Unmatched)))
	}

	if opts.DryRun {
		log.Info("dry run, skipping execution",
			zap.Int("planned_creates", report.Planned.Creates),
			zap.Int("planned_updates", report.Planned.Updates),
			zap.Int("noops", report.Planned.Noops))
		report.FinishedAt = time.Now().UTC()
		return report, nil
	}

	executor := &Executor{
		Target:  r.Target,
		Logger:  log,
		Workers: r.Config.Workers,
		Retries: r.Config.Retries,
		Backoff: r.Config.Backoff(),
	}
	executor.Execute(ctx, plan, report)

	report.FinishedAt = time.Now().UTC()
	log.Info("sync run finished",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("noops", report.Noops),
		zap.Int("skipped_invalid", report.SkippedInvalid),
		zap.Int("failed", report.Failed),
		zap.Bool("reload_issued", report.ReloadIssued),
		zap.Duration("took", report.Duration()))

	return report, nil
}
