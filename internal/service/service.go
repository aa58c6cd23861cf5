package service

import (
	"trading-signal-bot/config"
	"trading-signal-bot/internal/repository"
	"trading-signal-bot/internal/strategy"
	"trading-signal-bot/pkg/cache"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/telegram"
)

type Service struct {
	SchedulerService   SchedulerService
	TaskExecutor       TaskExecutor
	SystemEventService SystemEventService
	SendSignalService  SendSignalService
	ReportingService   ReportingService
	TelegramBotService TelegramBotService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	telegram *telegram.TelegramRateLimiter,
	metrics *metrics.Recorder,
	db Pinger,
	generator *strategy.SignalGenerator,
) *Service {
	systemEventService := NewSystemEventService(log, repo.SystemEventRepo, metrics)
	sendSignalService := NewSendSignalService(cfg, log, repo.SignalRepo, systemEventService, telegram, metrics)
	reportingService := NewReportingService(cfg, log, repo.StrategyPerformanceRepo, systemEventService, generator.Gate(), telegram, metrics)

	executorStrategies := make(map[strategy.JobType]strategy.JobExecutionStrategy)
	executorStrategies[strategy.JobTypeMarketDataCollector] = strategy.NewMarketDataCollectorStrategy(cfg, log, inmemoryCache, repo.QuoteRepo, repo.MarketDataRepo, systemEventService, metrics)
	executorStrategies[strategy.JobTypeSignalMonitor] = strategy.NewSignalMonitorStrategy(cfg, log, generator, sendSignalService, metrics)
	executorStrategies[strategy.JobTypeDailyReport] = strategy.NewDailyReportStrategy(log, reportingService)

	taskExecutor := NewTaskExecutor(cfg, log, executorStrategies)
	schedulerService := NewSchedulerService(cfg, log, taskExecutor)
	telegramBotService := NewTelegramBotService(log, cfg, inmemoryCache, db, generator, sendSignalService, reportingService, repo, metrics)

	return &Service{
		SchedulerService:   schedulerService,
		TaskExecutor:       taskExecutor,
		SystemEventService: systemEventService,
		SendSignalService:  sendSignalService,
		ReportingService:   reportingService,
		TelegramBotService: telegramBotService,
	}
}
