package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/internal/repository"
	"trading-signal-bot/internal/strategy"
	"trading-signal-bot/pkg/cache"
	"trading-signal-bot/pkg/common"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/utils"
)

const (
	TradeActionTaken   = "taken"
	TradeActionSkipped = "skipped"
)

// Pinger reports database reachability for /status.
type Pinger interface {
	Ping(ctx context.Context) error
}

type TelegramBotService interface {
	RecordInteraction(ctx context.Context, interaction *model.UserInteraction, contextData map[string]interface{})
	GetStatus(ctx context.Context) dto.SystemStatus
	GetPerformance(ctx context.Context) dto.PerformanceSummary
	Sessions() (int, []dto.SessionInfo)
	IsSessionActive() bool
	GenerateSignal(ctx context.Context) (dto.GenerateResult, error)
	MarkSignalSent(ctx context.Context, signalID string)
	HandleTradeCallback(ctx context.Context, action, signalID string) error
}

type telegramBotService struct {
	log                 *logger.Logger
	cfg                 *config.Config
	inmemoryCache       cache.Cache
	db                  Pinger
	generator           *strategy.SignalGenerator
	signalService       SendSignalService
	reportingService    ReportingService
	userInteractionRepo repository.UserInteractionRepository
	signalRepo          repository.SignalRepository
	tradeRepo           repository.TradeRepository
	unitOfWork          repository.UnitOfWork
	metrics             *metrics.Recorder
	startedAt           time.Time
}

func NewTelegramBotService(
	log *logger.Logger,
	cfg *config.Config,
	inmemoryCache cache.Cache,
	db Pinger,
	generator *strategy.SignalGenerator,
	signalService SendSignalService,
	reportingService ReportingService,
	repo *repository.Repository,
	metrics *metrics.Recorder,
) TelegramBotService {
	return &telegramBotService{
		log:                 log,
		cfg:                 cfg,
		inmemoryCache:       inmemoryCache,
		db:                  db,
		generator:           generator,
		signalService:       signalService,
		reportingService:    reportingService,
		userInteractionRepo: repo.UserInteractionRepo,
		signalRepo:          repo.SignalRepo,
		tradeRepo:           repo.TradeRepo,
		unitOfWork:          repo.UnitOfWork,
		metrics:             metrics,
		startedAt:           generator.Gate().Now(),
	}
}

// RecordInteraction writes the audit row. A failure is logged and never reaches the user.
func (s *telegramBotService) RecordInteraction(ctx context.Context, interaction *model.UserInteraction, contextData map[string]interface{}) {
	if interaction.OccurredAt.IsZero() {
		interaction.OccurredAt = utils.TimeNowUTC()
	}
	if contextData == nil {
		contextData = map[string]interface{}{}
	}
	data, err := json.Marshal(contextData)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to marshal interaction context", logger.ErrorField(err))
		data = []byte("{}")
	}
	interaction.ContextData = data

	if err := s.userInteractionRepo.Create(ctx, interaction); err != nil {
		s.metrics.RecordPersistenceError("user_interactions")
		s.log.ErrorContext(ctx, "Failed to log user interaction",
			logger.ErrorField(err),
			logger.StringField("user_id", interaction.UserID),
			logger.StringField("interaction_type", interaction.InteractionType),
		)
	}
}

func (s *telegramBotService) GetStatus(ctx context.Context) dto.SystemStatus {
	gate := s.generator.Gate()
	now := gate.Now()

	status := dto.SystemStatus{
		SystemStatus:   "Online",
		DatabaseStatus: "Connected",
		DataFeedStatus: "Waiting for first cycle",
		ActiveStrategy: s.cfg.Strategy.ActiveStrategy,
		SignalsToday:   gate.SignalsToday(),
		MaxDaily:       gate.MaxDailySignals(),
		LastSignalTime: gate.LastSignalTime(),
		Uptime:         now.Sub(s.startedAt),
		ActiveSession:  gate.ActiveSession(now.Hour()),
	}

	if err := s.db.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "Database ping failed", logger.ErrorField(err))
		status.DatabaseStatus = "Disconnected"
	}

	if feed, ok := cache.GetFromCache[dto.FeedStatus](s.inmemoryCache, common.KEY_FEED_STATUS); ok {
		state := "Connected"
		if feed.SymbolsOK == 0 {
			state = "Disconnected"
		}
		status.DataFeedStatus = fmt.Sprintf("%s (%d/%d symbols, last cycle %s)",
			state, feed.SymbolsOK, feed.SymbolsTotal, feed.LastCycleAt.UTC().Format("15:04 UTC"))
	}
	return status
}

func (s *telegramBotService) GetPerformance(ctx context.Context) dto.PerformanceSummary {
	return s.reportingService.PerformanceSummary(ctx)
}

// Sessions returns the current UTC hour and every configured window.
func (s *telegramBotService) Sessions() (int, []dto.SessionInfo) {
	gate := s.generator.Gate()
	hour := gate.Now().Hour()
	return hour, gate.Sessions(hour)
}

func (s *telegramBotService) IsSessionActive() bool {
	return s.generator.Gate().IsSessionActive()
}

// GenerateSignal is the manual path. A produced signal is persisted before it is returned;
// a persistence failure is logged and the signal is still returned.
func (s *telegramBotService) GenerateSignal(ctx context.Context) (dto.GenerateResult, error) {
	result := s.generator.Generate(s.cfg.Strategy.MockSymbol, s.cfg.Strategy.MockEntryPrice, dto.SignalSourceManual)
	if !result.Generated() {
		s.metrics.RecordRejection(string(result.Reason))
		return result, nil
	}
	s.metrics.RecordSignal(dto.SignalSourceManual)

	if err := s.signalService.SaveSignal(ctx, result.Signal); err != nil {
		s.log.WarnContext(ctx, "Manual signal was not persisted", logger.ErrorField(err))
	}
	return result, nil
}

func (s *telegramBotService) MarkSignalSent(ctx context.Context, signalID string) {
	s.signalService.MarkSent(ctx, signalID)
}

// HandleTradeCallback records the user's answer to a signal. Only an ACTIVE
// signal accepts an answer; later presses return dto.ErrSignalAlreadyHandled.
// A taken signal opens a trades row in the same transaction.
func (s *telegramBotService) HandleTradeCallback(ctx context.Context, action, signalID string) error {
	var target string
	switch action {
	case TradeActionTaken:
		target = model.SignalStatusTaken
	case TradeActionSkipped:
		target = model.SignalStatusSkipped
	default:
		return fmt.Errorf("unknown trade action %q", action)
	}

	return s.unitOfWork.Run(ctx, func(opts ...utils.DBOption) error {
		signal, err := s.signalRepo.GetByID(ctx, signalID, opts...)
		if err != nil {
			return fmt.Errorf("failed to get signal %s: %w", signalID, err)
		}

		moved, err := s.signalRepo.TransitionStatus(ctx, signalID, model.SignalStatusActive, target, opts...)
		if err != nil {
			return fmt.Errorf("failed to mark signal %s as %s: %w", signalID, action, err)
		}
		if !moved {
			return fmt.Errorf("signal %s is %s: %w", signalID, signal.Status, dto.ErrSignalAlreadyHandled)
		}
		if action != TradeActionTaken {
			return nil
		}

		now := utils.TimeNowUTC()
		trade := &model.Trade{
			SignalID:         &signal.ID,
			Symbol:           signal.Symbol,
			TradeType:        signal.SignalType,
			EntryPrice:       signal.EntryPrice,
			Quantity:         1,
			StopLoss:         signal.StopLoss,
			TakeProfit:       signal.TakeProfit,
			EnteredAt:        now,
			Status:           model.TradeStatusOpen,
			UserConfirmed:    true,
			ConfirmationTime: &now,
		}
		if err := s.tradeRepo.Create(ctx, trade, opts...); err != nil {
			s.metrics.RecordPersistenceError("trades")
			return fmt.Errorf("failed to create trade: %w", err)
		}
		return nil
	})
}
