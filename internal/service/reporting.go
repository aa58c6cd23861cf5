package service

import (
	"context"
	"fmt"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/contract"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/internal/repository"
	"trading-signal-bot/internal/strategy"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/telegram"
	"trading-signal-bot/pkg/utils"

	"gopkg.in/telebot.v3"
)

type ReportingService interface {
	contract.ReportingContract
	PerformanceSummary(ctx context.Context) dto.PerformanceSummary
}

type reportingService struct {
	cfg             *config.Config
	log             *logger.Logger
	performanceRepo repository.StrategyPerformanceRepository
	systemEvent     contract.SystemEventContract
	gate            *strategy.SessionGate
	telegram        *telegram.TelegramRateLimiter
	metrics         *metrics.Recorder
}

func NewReportingService(
	cfg *config.Config,
	log *logger.Logger,
	performanceRepo repository.StrategyPerformanceRepository,
	systemEvent contract.SystemEventContract,
	gate *strategy.SessionGate,
	telegram *telegram.TelegramRateLimiter,
	metrics *metrics.Recorder,
) ReportingService {
	return &reportingService{
		cfg:             cfg,
		log:             log,
		performanceRepo: performanceRepo,
		systemEvent:     systemEvent,
		gate:            gate,
		telegram:        telegram,
		metrics:         metrics,
	}
}

// PerformanceSummary is a placeholder: trade outcomes are never tracked, so every figure is zero.
func (s *reportingService) PerformanceSummary(ctx context.Context) dto.PerformanceSummary {
	return dto.PerformanceSummary{}
}

func (s *reportingService) SendDailyReport(ctx context.Context) error {
	now := s.gate.Now()
	summary := s.PerformanceSummary(ctx)

	// The report runs in the morning and covers the day that just ended.
	reportDay := utils.StartOfDay(now).AddDate(0, 0, -1)
	snapshot := &model.StrategyPerformance{
		StrategyName:     s.cfg.Strategy.ActiveStrategy,
		Date:             reportDay,
		PeriodType:       model.PeriodDaily,
		SignalsGenerated: s.gate.SignalsOn(reportDay),
	}
	if err := s.performanceRepo.Upsert(ctx, snapshot); err != nil {
		s.metrics.RecordPersistenceError("strategy_performance")
		s.log.ErrorContext(ctx, "Failed to save daily performance snapshot", logger.ErrorField(err))
	}

	s.systemEvent.RecordEvent(ctx, model.EventDailyReport, model.SeverityInfo,
		"Daily report generated",
		fmt.Sprintf("report for %s", reportDay.Format("2006-01-02")),
		map[string]interface{}{"signals_generated": snapshot.SignalsGenerated},
	)

	if s.cfg.Telegram.ChatID == 0 {
		s.log.InfoContext(ctx, "No chat ID configured for the daily report")
		return nil
	}
	if _, err := s.telegram.SendToChat(ctx, s.cfg.Telegram.ChatID, telegram.FormatDailyReport(now, summary), telebot.ModeMarkdown); err != nil {
		s.log.ErrorContext(ctx, "Failed to send daily report", logger.ErrorField(err))
		return fmt.Errorf("failed to send daily report: %w", err)
	}
	return nil
}
