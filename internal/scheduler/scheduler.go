package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
	"github.com/teagang/dealership/internal/service/notify"
	"github.com/teagang/dealership/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// Snapshotter hands out a consistent copy of the inventory.
type Snapshotter interface {
	Snapshot(ctx context.Context) (models.Dealership, []models.Vehicle)
}

// BackupStore receives the full inventory on every backup run.
type BackupStore interface {
	Store(ctx context.Context, dealership models.Dealership, vehicles []models.Vehicle) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	inventory Snapshotter
	backup    BackupStore
	notifier  notify.Notifier
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance. A nil notifier skips the
// summary message after each backup.
func NewScheduler(schedule string, inventory Snapshotter, backup BackupStore, notifier notify.Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Scheduler{
		cron:      cron.New(),
		schedule:  schedule,
		inventory: inventory,
		backup:    backup,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start registers the backup job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runBackup); err != nil {
		return fmt.Errorf("schedule inventory backup %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.Backup(ctx); err != nil {
		s.logger.Error("inventory backup failed", zap.Error(err))
	}
}

// Backup writes the current inventory to the backup store, logs the summary
// and forwards it to the notifier.
func (s *Scheduler) Backup(ctx context.Context) error {
	dealership, vehicles := s.inventory.Snapshot(ctx)
	if err := s.backup.Store(ctx, dealership, vehicles); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	summary := reporting.FormatSummary(reporting.Summarize(dealership, vehicles))
	s.logger.Info("inventory backup written", zap.Int("vehicles", len(vehicles)), zap.String("summary", summary))

	if err := s.notifier.SendOutbound(ctx, models.OutboundMessageRequest{Message: summary}); err != nil {
		s.logger.Warn("failed to send backup summary", zap.Error(err))
	}
	return nil
}
