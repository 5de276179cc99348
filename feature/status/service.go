package status

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cmdb-sync/core/archive"
	"cmdb-sync/core/history"
	"cmdb-sync/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrHistoryDisabled is returned when an endpoint needs the run
	// history database and none is configured.
	ErrHistoryDisabled = errors.New("run history is not configured")

	// ErrRunNotFound is returned for an unknown run id.
	ErrRunNotFound = errors.New("run not found")

	// ErrReportNotArchived is returned when a run exists but its full
	// report was never archived.
	ErrReportNotArchived = errors.New("run report was not archived")
)

// Service triggers sync runs and serves their results. The history
// store and report archive are optional; without them the service
// falls back to what it holds in memory.
type Service struct {
	runner  *reconcile.Runner
	store   *history.Store
	reports *archive.Store
	logger  *zap.Logger

	sf singleflight.Group

	mu   sync.RWMutex
	last *reconcile.RunReport
}

// NewService creates a new status service.
func NewService(runner *reconcile.Runner, store *history.Store, reports *archive.Store, logger *zap.Logger) *Service {
	return &Service{
		runner:  runner,
		store:   store,
		reports: reports,
		logger:  logger,
	}
}

// TriggerSync starts a run, or joins the one already in flight. Dry
// and real runs coalesce separately so a preview never swallows a real
// trigger. The second return reports whether the caller joined an
// existing run.
func (s *Service) TriggerSync(ctx context.Context, dryRun bool) (*reconcile.RunReport, bool, error) {
	v, err, shared := s.sf.Do(fmt.Sprintf("sync:%t", dryRun), func() (any, error) {
		// The run must outlive the request that started it; joiners
		// would otherwise lose the run when the first client
		// disconnects.
		runCtx := context.WithoutCancel(ctx)

		report, err := s.runner.Run(runCtx, reconcile.RunOptions{DryRun: dryRun})
		if err != nil {
			return nil, err
		}
		s.finish(runCtx, report)
		return report, nil
	})
	if err != nil {
		return nil, shared, err
	}
	return v.(*reconcile.RunReport), shared, nil
}

// finish keeps the report and persists it. Persistence failures only
// warn; the run itself already succeeded.
func (s *Service) finish(ctx context.Context, report *reconcile.RunReport) {
	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	if report.DryRun {
		return
	}

	objectName := ""
	if s.reports != nil {
		name, err := s.reports.Upload(ctx, report)
		if err != nil {
			s.logger.Warn("report archive upload failed",
				zap.String("run_id", report.RunID), zap.Error(err))
		} else {
			objectName = name
		}
	}

	if s.store != nil {
		if err := s.store.Record(ctx, report, objectName); err != nil {
			s.logger.Warn("recording run history failed",
				zap.String("run_id", report.RunID), zap.Error(err))
		}
	}
}

// Latest returns the most recent run, preferring the in-memory report
// from this process and falling back to the history row.
func (s *Service) Latest(ctx context.Context) (*reconcile.RunReport, *history.Run, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last != nil {
		return last, nil, nil
	}
	if s.store == nil {
		return nil, nil, nil
	}

	run, err := s.store.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, run, nil
}

// History lists recorded runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.Run, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.List(ctx, limit)
}

// Report fetches the archived full report of a recorded run.
func (s *Service) Report(ctx context.Context, id string) (*reconcile.RunReport, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}

	run, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	if run.ArchiveObject == "" || s.reports == nil {
		return nil, ErrReportNotArchived
	}

	return s.reports.Fetch(ctx, run.ArchiveObject)
}
