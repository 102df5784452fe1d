package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/madved/inlineq/internal/config"
	"github.com/madved/inlineq/internal/logging"
)

// TaskFunc is a unit of scheduled work.
type TaskFunc func(ctx context.Context) error

// Scheduler runs the periodic maintenance tasks using gocron.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	tasks     map[string]TaskFunc
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates the scheduler. All tasks share the configured
// maintenance cron schedule.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, tasks map[string]TaskFunc) (*Scheduler, error) {
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler(gocron.WithLogger(logging.NewGocronLogger(logger)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		cfg:       cfg,
		tasks:     tasks,
	}, nil
}

// Start registers all tasks and starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	for taskName, taskFunc := range s.tasks {
		taskName, taskFunc := taskName, taskFunc
		_, err := s.scheduler.NewJob(
			gocron.CronJob(s.cfg.MaintenanceSchedule, true),
			gocron.NewTask(func(ctx context.Context) {
				s.logger.Info("running scheduled task", "task_name", taskName)
				startTime := time.Now()
				if taskErr := taskFunc(ctx); taskErr != nil {
					s.logger.Error("scheduled task failed", "task_name", taskName, "error", taskErr)
				}
				s.logger.Info("finished scheduled task",
					"task_name", taskName, "duration", time.Since(startTime))
			}, context.Background()),
			gocron.WithName(taskName),
		)
		if err != nil {
			s.logger.Error("failed to schedule task",
				"task_name", taskName, "schedule", s.cfg.MaintenanceSchedule, "error", err)
			continue
		}
		s.logger.Info("scheduled task", "task_name", taskName, "schedule", s.cfg.MaintenanceSchedule)
	}

	s.scheduler.Start()
	s.running = true
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	s.running = false
	return err
}
