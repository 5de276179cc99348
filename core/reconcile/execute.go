package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultWorkers = 10
	defaultBackoff = 250 * time.Millisecond
	maxBackoff     = 15 * time.Second
)

// Executor applies a sync plan against the target with bounded
// concurrency and per-action retries.
type Executor struct {
	Target Target
	Logger *zap.Logger

	// Workers bounds concurrent target calls. Zero means the default.
	Workers int

	// Retries is the number of extra attempts after a transient
	// failure. Non-transient failures are never retried.
	Retries int

	// Backoff is the base delay between attempts, doubled per attempt.
	Backoff time.Duration
}

type actionResult struct {
	action SyncAction
	err    error
}

// Execute runs every non-noop action in the plan and records outcomes
// in the report. Failures are isolated per action: a failed host
// becomes a report failure while the rest proceed.
//
// Cancelling ctx stops dispatching further actions; actions already in
// flight run to completion so no host is left half-applied. A reload
// is requested exactly once, and only when at least one mutation
// succeeded.
func (e *Executor) Execute(ctx context.Context, plan *SyncPlan, report *RunReport) {
	work := make([]SyncAction, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		if a.Type != ActionNoop {
			work = append(work, a)
		}
	}
	if len(work) == 0 {
		e.Logger.Info("nothing to apply, target already in sync")
		return
	}

	workers := e.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(work) {
		workers = len(work)
	}

	e.Logger.Info("applying sync plan",
		zap.Int("actions", len(work)),
		zap.Int("workers", workers))

	actionsCh := make(chan SyncAction)
	resultsCh := make(chan actionResult, len(work))

	// Target calls run on a detached context: cancellation stops the
	// dispatch loop below, not requests already on the wire.
	callCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for action := range actionsCh {
				resultsCh <- actionResult{action: action, err: e.applyWithRetry(ctx, callCtx, action)}
			}
		}()
	}

dispatch:
	for _, action := range work {
		select {
		case <-ctx.Done():
			e.Logger.Warn("sync cancelled, waiting for in-flight actions", zap.Error(ctx.Err()))
			break dispatch
		case actionsCh <- action:
		}
	}
	close(actionsCh)
	wg.Wait()
	close(resultsCh)

	var failures []Failure
	for res := range resultsCh {
		if res.err != nil {
			e.Logger.Error("action failed",
				zap.String("type", string(res.action.Type)),
				zap.String("key", string(res.action.Key)),
				zap.Error(res.err))
			failures = append(failures, Failure{Key: res.action.Key, Stage: StageExecute, Cause: res.err.Error()})
			continue
		}
		switch res.action.Type {
		case ActionCreate:
			report.Created++
		case ActionUpdate:
			report.Updated++
		}
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Key < failures[j].Key })
	report.Failed += len(failures)
	report.Failures = append(report.Failures, failures...)

	if report.Created+report.Updated == 0 {
		return
	}
	if err := e.Target.Reload(callCtx); err != nil {
		e.Logger.Error("reload request failed", zap.Error(err))
		report.Failures = append(report.Failures, Failure{Stage: StageReload, Cause: err.Error()})
		return
	}
	report.ReloadIssued = true
}

func (e *Executor) applyWithRetry(ctx, callCtx context.Context, action SyncAction) error {
	retries := e.Retries
	if retries < 0 {
		retries = 0
	}
	backoff := e.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	for attempt := 0; ; attempt++ {
		err := e.applyOnce(callCtx, action)
		if err == nil || attempt >= retries || !IsTransient(err) {
			return err
		}

		delay := backoff << attempt
		if delay > maxBackoff {
			delay = maxBackoff
		}
		e.Logger.Warn("transient failure, retrying",
			zap.String("key", string(action.Key)),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			// Cancellation gives up on retries, not on the attempt
			// that already ran.
			return err
		}
	}
}

func (e *Executor) applyOnce(ctx context.Context, action SyncAction) error {
	switch action.Type {
	case ActionCreate:
		e.Logger.Debug("creating host", zap.String("key", string(action.Key)), zap.String("name", action.Desired.Name))
		return e.Target.CreateHost(ctx, *action.Desired)
	case ActionUpdate:
		e.Logger.Debug("updating host",
			zap.String("key", string(action.Key)),
			zap.String("name", action.Desired.Name),
			zap.Strings("fields", action.Diff.Fields()))
		return e.Target.UpdateHost(ctx, action.Existing.TargetInternalID, *action.Desired, *action.Diff)
	default:
		return nil
	}
}
