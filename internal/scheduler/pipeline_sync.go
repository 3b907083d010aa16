// Package scheduler runs the collection pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/pipeline"
	"github.com/vfg2006/ads-collector/pkg/utils"
)

// Runner is the pipeline surface the scheduler drives.
type Runner interface {
	Run(ctx context.Context, window pipeline.Window, providerNames, storageNames []string) error
}

// PipelineSyncService schedules recurring collection runs over a trailing
// window ending yesterday.
type PipelineSyncService struct {
	scheduler *gocron.Scheduler
	cfg       config.Sync
	runner    Runner
	providers []string
	storages  []string

	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

func NewPipelineSyncService(cfg *config.Config, runner Runner, providers, storages []string) *PipelineSyncService {
	logrus.WithFields(logrus.Fields{
		"cron_schedule": cfg.Sync.CronSchedule,
		"lookback_days": cfg.Sync.LookbackDays,
		"sync_enabled":  cfg.Sync.Enabled,
	}).Info("pipeline sync scheduler configured")

	return &PipelineSyncService{
		scheduler: gocron.NewScheduler(time.Local),
		cfg:       cfg.Sync,
		runner:    runner,
		providers: providers,
		storages:  storages,
	}
}

// Start registers the cron job and runs the scheduler until ctx is cancelled.
func (s *PipelineSyncService) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		logrus.Info("pipeline sync disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.cfg.CronSchedule).Info("starting pipeline sync scheduler")

	_, err := s.scheduler.Cron(s.cfg.CronSchedule).Do(func() {
		s.syncOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling pipeline sync: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("stopping pipeline sync scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// syncOnce runs one collection; overlapping triggers are skipped.
func (s *PipelineSyncService) syncOnce(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("pipeline sync already running, skipping trigger")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	window := s.window(time.Now())

	if err := s.runner.Run(ctx, window, s.providers, s.storages); err != nil {
		logrus.WithError(err).Error("scheduled pipeline run failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"start": window.Start.Format(time.DateOnly),
		"end":   window.End.Format(time.DateOnly),
	}).Info("scheduled pipeline run finished")
}

// window covers the LookbackDays days ending yesterday.
func (s *PipelineSyncService) window(now time.Time) pipeline.Window {
	end := utils.Day(now.AddDate(0, 0, -1))

	lookback := s.cfg.LookbackDays
	if lookback < 1 {
		lookback = 1
	}

	return pipeline.Window{
		Start: end.AddDate(0, 0, -(lookback - 1)),
		End:   end,
	}
}
