// Package scheduler runs the ingestion pipeline: once synchronously at startup,
// then on a fixed interval. Each run syncs the source files, rebuilds the
// snapshot when something changed and publishes it.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giygas/bdpm-api/interfaces"
	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// ErrUpdateInProgress is returned by Refresh when another refresh holds the
// update flag.
var ErrUpdateInProgress = errors.New("update already in progress")

// Scheduler handles data refreshes and staleness monitoring
type Scheduler struct {
	dataStore  interfaces.DataStore
	downloader interfaces.Downloader
	builder    interfaces.SnapshotBuilder
	interval   time.Duration

	scheduler *gocron.Scheduler
	job       *gocron.Job

	// pendingRebuild is set once a sync commits new files and cleared only
	// when a snapshot built from them is published.
	pendingRebuild atomic.Bool

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, downloader interfaces.Downloader,
	builder interfaces.SnapshotBuilder, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		dataStore:  dataStore,
		downloader: downloader,
		builder:    builder,
		interval:   interval,
		scheduler:  gocron.NewScheduler(time.Local),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start performs the initial refresh, then schedules the next ones. Failing
// to publish a first snapshot is fatal for the caller: there is nothing to
// serve.
func (s *Scheduler) Start() error {
	if err := s.Refresh(s.ctx); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		if s.dataStore.Current() == nil {
			return fmt.Errorf("initial data load failed: %w", err)
		}
	}

	job, err := s.scheduler.Every(s.interval).SingletonMode().WaitForSchedule().Do(func() {
		if err := s.Refresh(s.ctx); err != nil && !errors.Is(err, ErrUpdateInProgress) {
			logging.Error("Scheduled refresh failed, keeping previous snapshot", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule updates: %w", err)
	}
	s.job = job

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	logging.Info("Refresh scheduled", "interval", s.interval.String(), "next_run", s.NextRun().Format(time.RFC3339))
	return nil
}

// Stop cancels an in-flight refresh and stops every background job.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.scheduler.Stop()
		s.wg.Wait()
	})
}

// NextRun returns the next scheduled refresh, or zero before Start.
func (s *Scheduler) NextRun() time.Time {
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// Refresh runs the pipeline once. Per-file failures are logged and never
// fail the refresh; a build failure leaves the published snapshot in place.
func (s *Scheduler) Refresh(ctx context.Context) error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return ErrUpdateInProgress
	}
	defer s.dataStore.EndUpdate()

	start := time.Now()
	logging.Info("Starting data refresh")

	report, err := s.downloader.Sync(ctx)
	if err != nil {
		// Committed files from earlier runs may still be usable.
		logging.Error("Source sync failed", "error", err)
	}

	if report != nil && report.Changed() {
		s.pendingRebuild.Store(true)
	}

	if current := s.dataStore.Current(); current != nil && report != nil && !s.pendingRebuild.Load() {
		s.dataStore.MarkRefreshed(time.Now())
		logging.Info("No source file changed, keeping current snapshot",
			"duration", time.Since(start).String(),
			"failed", report.Count(interfaces.FileFailed))
		return nil
	}

	snap, err := s.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	validation.ReportDataQuality(snap).Log()
	s.dataStore.Publish(snap)
	s.pendingRebuild.Store(false)

	logging.Info("Data refresh completed",
		"duration", time.Since(start).String(),
		"specialites", snap.Specialites.Len(),
		"fingerprint", fmt.Sprintf("%016x", snap.Fingerprint))
	return nil
}

// startHealthMonitoring warns when no refresh succeeded for two intervals.
func (s *Scheduler) startHealthMonitoring() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if since := time.Since(s.dataStore.GetLastRefresh()); since > 2*s.interval {
					logging.Warn("Data has not been refreshed recently", "since", since.Round(time.Minute).String())
				}
			}
		}
	}()
}
