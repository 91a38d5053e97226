// Package scheduler drives the recurring jobs: the daily lineup run and
// the Monday untouchables refresh.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// Runner is the pipeline surface the scheduler drives.
type Runner interface {
	Run(ctx context.Context, date time.Time) (*types.Report, error)
	RefreshUntouchables(ctx context.Context) (map[string]float64, error)
}

// Sender delivers a finished report.
type Sender interface {
	Send(r *types.Report) error
}

// Scheduler owns the cron instance and the job bodies.
type Scheduler struct {
	cron       *cron.Cron
	pipeline   Runner
	mailer     Sender
	dailySpec  string
	weeklySpec string
	jobTimeout time.Duration
	log        *logrus.Entry
}

// New creates a scheduler with standard five-field cron specs.
func New(pipeline Runner, mailer Sender, dailySpec, weeklySpec string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		pipeline:   pipeline,
		mailer:     mailer,
		dailySpec:  dailySpec,
		weeklySpec: weeklySpec,
		jobTimeout: 10 * time.Minute,
		log:        logger.WithComponent("scheduler"),
	}
}

// Start registers both jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.dailySpec, s.runDaily); err != nil {
		return fmt.Errorf("failed to schedule daily run: %w", err)
	}
	if _, err := s.cron.AddFunc(s.weeklySpec, s.runWeekly); err != nil {
		return fmt.Errorf("failed to schedule weekly refresh: %w", err)
	}

	s.cron.Start()
	s.log.WithFields(logrus.Fields{
		"daily_schedule":  s.dailySpec,
		"weekly_schedule": s.weeklySpec,
	}).Info("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// runDaily executes the full pipeline and emails the report. Failures
// are logged, never fatal; the next scheduled run gets a fresh attempt.
func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	report, err := s.pipeline.Run(ctx, time.Now())
	if err != nil {
		s.log.WithError(err).Error("Scheduled lineup run failed")
		return
	}
	if err := s.mailer.Send(report); err != nil {
		s.log.WithError(err).WithField("run_id", report.RunID).Error("Report delivery failed")
	}
}

// runWeekly rebuilds the untouchable list ahead of the Monday run.
func (s *Scheduler) runWeekly() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	if _, err := s.pipeline.RefreshUntouchables(ctx); err != nil {
		s.log.WithError(err).Error("Scheduled untouchables refresh failed")
	}
}
