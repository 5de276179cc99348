package history

import (
	"context"
	"errors"
	"fmt"

	"cmdb-sync/core/reconcile"

	"gorm.io/gorm"
)

// DefaultListLimit bounds history listings when no limit is given.
const DefaultListLimit = 20

// Store persists and queries run history.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a database connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the history schema.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Run{}, &RunFailure{})
}

// Record persists a finished run report. The archive object name may be
// empty when the report was not archived.
func (s *Store) Record(ctx context.Context, report *reconcile.RunReport, archiveObject string) error {
	run := FromReport(report, archiveObject)
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run %s: %w", report.RunID, err)
	}
	return nil
}

// List returns the most recent runs, newest first. Failures are not
// loaded; use Get for one run's full detail.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var runs []Run
	err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its failures, or nil when unknown.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Preload("Failures").First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return &run, nil
}

// Latest returns the most recent run, or nil when history is empty.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	return &run, nil
}

// FromReport converts a run report into its storable form.
func FromReport(report *reconcile.RunReport, archiveObject string) *Run {
	run := &Run{
		ID:             report.RunID,
		Instance:       report.Instance,
		StartedAt:      report.StartedAt,
		FinishedAt:     report.FinishedAt,
		DryRun:         report.DryRun,
		Created:        report.Created,
		Updated:        report.Updated,
		Noops:          report.Noops,
		SkippedInvalid: report.SkippedInvalid,
		Failed:         report.Failed,
		Warnings:       report.Warnings,
		Unmatched:      len(report.UnmatchedKeys),
		ReloadIssued:   report.ReloadIssued,
		ArchiveObject:  archiveObject,
	}
	for _, f := range report.Failures {
		run.Failures = append(run.Failures, RunFailure{
			RunID:   report.RunID,
			HostKey: string(f.Key),
			Stage:   string(f.Stage),
			Cause:   f.Cause,
		})
	}
	return run
}
