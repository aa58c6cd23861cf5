package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/strategy"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/utils"

	"github.com/robfig/cron/v3"
)

// Loop describes one background loop. Schedule, when set, takes precedence over Interval.
type Loop struct {
	Job                strategy.JobType
	Interval           time.Duration
	Schedule           string
	ErrorRetryInterval time.Duration
	Timeout            time.Duration
}

type SchedulerService interface {
	Run(ctx context.Context, loop Loop) error
	RunJobTask(ctx context.Context, jobType strategy.JobType) error
	Loops() []Loop
}

type schedulerService struct {
	cfg          *config.Config
	log          *logger.Logger
	cronParser   cron.Parser
	taskExecutor TaskExecutor
	now          func() time.Time
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	taskExecutor TaskExecutor,
) *schedulerService {
	return &schedulerService{
		cfg:          cfg,
		log:          log,
		cronParser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		taskExecutor: taskExecutor,
		now:          utils.TimeNowUTC,
	}
}

// Loops returns the background loops of the bot, chat polling excluded.
func (s *schedulerService) Loops() []Loop {
	return []Loop{
		{
			Job:                strategy.JobTypeMarketDataCollector,
			Interval:           s.cfg.MarketData.CycleInterval,
			ErrorRetryInterval: s.cfg.MarketData.ErrorRetryInterval,
			Timeout:            s.cfg.MarketData.CycleInterval,
		},
		{
			Job:                strategy.JobTypeSignalMonitor,
			Interval:           s.cfg.Strategy.MonitorInterval,
			ErrorRetryInterval: s.cfg.Strategy.ErrorRetryInterval,
			Timeout:            s.cfg.Telegram.TimeoutDuration,
		},
		{
			Job:      strategy.JobTypeDailyReport,
			Schedule: s.cfg.Reporting.Schedule,
			Timeout:  s.cfg.Telegram.TimeoutDuration,
		},
	}
}

// Run executes loop until ctx is cancelled. Every wait observes ctx, so
// cancellation only has to wait for an in-flight job.
func (s *schedulerService) Run(ctx context.Context, loop Loop) error {
	var schedule cron.Schedule
	if loop.Schedule != "" {
		parsed, err := s.cronParser.Parse(loop.Schedule)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to parse cron expression", logger.ErrorField(err), logger.StringField("job_type", string(loop.Job)))
			return fmt.Errorf("failed to parse cron expression %q: %w", loop.Schedule, err)
		}
		schedule = parsed
	} else if loop.Interval <= 0 {
		return fmt.Errorf("loop %s has neither an interval nor a schedule", loop.Job)
	}

	s.log.InfoContext(ctx, "Starting loop",
		logger.StringField("job_type", string(loop.Job)),
		logger.DurationField("interval", loop.Interval),
		logger.StringField("schedule", loop.Schedule),
	)

	for {
		if schedule != nil {
			now := s.now()
			next := schedule.Next(now)
			s.log.DebugContext(ctx, "Waiting for next scheduled run",
				logger.StringField("job_type", string(loop.Job)),
				logger.StringField("next_execution", utils.PrettyDate(next)),
			)
			if !utils.Sleep(ctx, next.Sub(now)) {
				break
			}
		}

		err := s.RunJobTask(ctx, loop.Job)
		if ctx.Err() != nil {
			break
		}
		if schedule != nil {
			continue
		}

		wait := loop.Interval
		if err != nil && loop.ErrorRetryInterval > 0 {
			wait = loop.ErrorRetryInterval
		}
		if !utils.Sleep(ctx, wait) {
			break
		}
	}

	s.log.Info("Loop stopped", logger.StringField("job_type", string(loop.Job)))
	return nil
}

func (s *schedulerService) RunJobTask(ctx context.Context, jobType strategy.JobType) error {
	timeout := time.Duration(0)
	for _, loop := range s.Loops() {
		if loop.Job == jobType {
			timeout = loop.Timeout
		}
	}

	_, err := s.taskExecutor.Execute(ctx, jobType, timeout)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.WarnContext(ctx, "Job iteration failed",
			logger.ErrorField(err),
			logger.StringField("job_type", string(jobType)),
		)
	}
	return err
}
