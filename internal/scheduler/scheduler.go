// Package scheduler wires the pipeline's background tasks onto cron.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/service"
)

// Scheduler manages the recurring pipeline tasks: full recompute, drift
// refresh, event sync, value-bet scan and alert expiry
type Scheduler struct {
	cron       *cron.Cron
	recompute  *service.RecomputeScheduler
	detector   *service.ValueBetDetector
	eventSync  *service.EventSyncService
	alerts     *service.AlertService
	cfg        *config.Config
	logger     *logrus.Entry
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
}

// New creates a scheduler over the pipeline services
func New(
	recompute *service.RecomputeScheduler,
	detector *service.ValueBetDetector,
	eventSync *service.EventSyncService,
	alerts *service.AlertService,
	cfg *config.Config,
	baseLogger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		recompute:  recompute,
		detector:   detector,
		eventSync:  eventSync,
		alerts:     alerts,
		cfg:        cfg,
		logger:     baseLogger.WithField("component", "scheduler"),
		jobIDs:     make([]cron.EntryID, 0),
		jobTimeout: 10 * time.Minute,
	}
}

// ScheduleAll registers every pipeline task with its configured cron spec
func (s *Scheduler) ScheduleAll() error {
	specs := s.cfg.Scheduler

	if err := s.schedule("recompute", specs.RecomputeSpec, s.runRecompute); err != nil {
		return err
	}
	if err := s.schedule("refresh", specs.RefreshSpec, s.runRefresh); err != nil {
		return err
	}
	if err := s.schedule("event_sync", specs.EventSyncSpec, s.runEventSync); err != nil {
		return err
	}
	if err := s.schedule("value_scan", specs.ValueScanSpec, s.runValueScan); err != nil {
		return err
	}
	if err := s.schedule("alert_expiry", specs.AlertExpirySpec, s.runAlertExpiry); err != nil {
		return err
	}

	return nil
}

func (s *Scheduler) schedule(name, spec string, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule %s while scheduler is running", name)
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"task": name,
		"spec": spec,
	}).Info("Task scheduled")

	return nil
}

func (s *Scheduler) runRecompute(ctx context.Context) {
	result, err := s.recompute.RunCycle(ctx, s.cfg.Pipeline.LookAheadWindow())
	if err != nil {
		s.logger.WithError(err).Error("Recompute cycle failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"generated": result.Generated,
		"updated":   result.Updated,
		"errors":    result.Errors,
	}).Info("Recompute cycle finished")
}

// runRefresh is a narrower recompute pass over imminent events; the drift
// hysteresis keeps it from rewriting stationary markets
func (s *Scheduler) runRefresh(ctx context.Context) {
	result, err := s.recompute.RunCycle(ctx, s.cfg.Pipeline.RefreshWindow())
	if err != nil {
		s.logger.WithError(err).Error("Refresh cycle failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"updated": result.Updated,
		"errors":  result.Errors,
	}).Debug("Refresh cycle finished")
}

func (s *Scheduler) runEventSync(ctx context.Context) {
	result, err := s.eventSync.Sync(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Event sync failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"created":       result.EventsCreated,
		"updated":       result.EventsUpdated,
		"odds_inserted": result.OddsInserted,
		"superseded":    result.OddsSuperseded,
		"errors":        result.Errors,
	}).Info("Event sync finished")
}

func (s *Scheduler) runValueScan(ctx context.Context) {
	opts := service.DetectionOptions{
		MinValue:         s.cfg.Pipeline.MinValue,
		MaxEvents:        20,
		AutoCreateAlerts: true,
	}

	for _, sportKey := range s.activeSportKeys(ctx) {
		result, err := s.detector.DetectForSport(ctx, sportKey, s.cfg.Pipeline.LookAheadWindow(), opts)
		if err != nil {
			s.logger.WithField("sport_key", sportKey).WithError(err).Warn("Value scan failed for sport")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"sport_key":  sportKey,
			"candidates": len(result.Candidates),
			"errors":     result.Errors,
		}).Info("Value scan finished")
	}
}

func (s *Scheduler) runAlertExpiry(ctx context.Context) {
	expired, err := s.alerts.ExpireSweep(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Alert expiry sweep failed")
		return
	}
	if expired > 0 {
		s.logger.WithField("expired", expired).Info("Alert expiry sweep finished")
	}
}

func (s *Scheduler) activeSportKeys(ctx context.Context) []string {
	keys, err := s.recompute.ActiveSportKeys(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list active sports for value scan")
		return nil
	}
	return keys
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Entries returns the scheduled cron entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
