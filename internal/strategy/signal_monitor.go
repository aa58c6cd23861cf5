package strategy

import (
	"context"
	"fmt"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/contract"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
)

// SignalMonitorStrategy is the autonomous generation tick.
type SignalMonitorStrategy struct {
	cfg            config.Strategy
	logger         *logger.Logger
	generator      *SignalGenerator
	signalContract contract.SignalContract
	metrics        *metrics.Recorder
}

func NewSignalMonitorStrategy(
	cfg *config.Config,
	logger *logger.Logger,
	generator *SignalGenerator,
	signalContract contract.SignalContract,
	metrics *metrics.Recorder,
) JobExecutionStrategy {
	return &SignalMonitorStrategy{
		cfg:            cfg.Strategy,
		logger:         logger,
		generator:      generator,
		signalContract: signalContract,
		metrics:        metrics,
	}
}

func (s *SignalMonitorStrategy) GetType() JobType {
	return JobTypeSignalMonitor
}

func (s *SignalMonitorStrategy) Execute(ctx context.Context) (JobResult, error) {
	now := s.generator.Gate().Now()
	session := s.generator.Gate().ActiveSession(now.Hour())
	if session == "" {
		session = "Closed"
	}
	s.logger.DebugContext(ctx, "Signal monitor tick",
		logger.StringField("session", session),
		logger.IntField("hour_utc", now.Hour()),
	)

	result := s.generator.Generate(s.cfg.MockSymbol, s.cfg.MockEntryPrice, dto.SignalSourceAutonomous)
	if !result.Generated() {
		s.metrics.RecordRejection(string(result.Reason))
		s.logger.DebugContext(ctx, "No signal generated",
			logger.StringField("reason", string(result.Reason)),
			logger.IntField("signals_today", result.SignalsToday),
		)
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: string(result.Reason)}, nil
	}
	s.metrics.RecordSignal(dto.SignalSourceAutonomous)

	s.logger.InfoContext(ctx, "Autonomous signal generated",
		logger.StringField("session", result.Signal.Session),
		logger.IntField("signals_today", result.SignalsToday),
	)

	if err := s.signalContract.PublishSignal(ctx, result.Signal); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to publish signal: %v", err)}, err
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: result.Signal.ID}, nil
}
