package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/contract"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/internal/repository"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/telegram"
	"trading-signal-bot/pkg/utils"

	"github.com/google/uuid"
	"gopkg.in/telebot.v3"
)

type SendSignalService interface {
	contract.SignalContract
	SaveSignal(ctx context.Context, signal *dto.Signal) error
	MarkSent(ctx context.Context, signalID string)
}

type sendSignalService struct {
	cfg         *config.Config
	log         *logger.Logger
	signalRepo  repository.SignalRepository
	systemEvent contract.SystemEventContract
	telegram    *telegram.TelegramRateLimiter
	metrics     *metrics.Recorder
}

func NewSendSignalService(
	cfg *config.Config,
	log *logger.Logger,
	signalRepo repository.SignalRepository,
	systemEvent contract.SystemEventContract,
	telegram *telegram.TelegramRateLimiter,
	metrics *metrics.Recorder,
) SendSignalService {
	return &sendSignalService{
		cfg:         cfg,
		log:         log,
		signalRepo:  signalRepo,
		systemEvent: systemEvent,
		telegram:    telegram,
		metrics:     metrics,
	}
}

// SaveSignal assigns the signal an ID and persists it together with a SIGNAL_GENERATED event.
func (s *sendSignalService) SaveSignal(ctx context.Context, signal *dto.Signal) error {
	if signal.ID == "" {
		signal.ID = uuid.NewString()
	}

	entry, _ := signal.EntryPrice.Float64()
	stopLoss, _ := signal.StopLoss.Float64()
	takeProfit, _ := signal.TakeProfit.Float64()
	s.log.LogSignal(ctx, signal.Symbol, string(signal.Type), signal.ConfluenceScore, entry, stopLoss, takeProfit)

	indicators, err := json.Marshal(map[string]interface{}{
		"source":         signal.Source,
		"session":        signal.Session,
		"risk_reward":    signal.RiskReward().String(),
		"pips_potential": signal.PipsPotential().String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal signal indicators: %w", err)
	}

	expiresAt := signal.ExpiresAt
	record := &model.TradingSignal{
		UUIDModel:       model.UUIDModel{ID: signal.ID},
		Symbol:          signal.Symbol,
		SignalType:      string(signal.Type),
		StrategyName:    signal.Strategy,
		EntryPrice:      entry,
		StopLoss:        stopLoss,
		TakeProfit:      takeProfit,
		ConfluenceScore: signal.ConfluenceScore,
		Strength:        signal.Strength,
		CreatedAt:       signal.CreatedAt,
		ExpiresAt:       &expiresAt,
		Status:          model.SignalStatusActive,
		IndicatorsData:  indicators,
	}
	if err := s.signalRepo.Create(ctx, record); err != nil {
		s.metrics.RecordPersistenceError("trading_signals")
		s.log.ErrorContext(ctx, "Failed to save trading signal", logger.ErrorField(err), logger.StringField("signal_id", signal.ID))
		return fmt.Errorf("failed to save trading signal: %w", err)
	}

	s.systemEvent.RecordEvent(ctx, model.EventSignalGenerated, model.SeverityInfo,
		fmt.Sprintf("%s %s signal generated", signal.Symbol, signal.Type),
		fmt.Sprintf("confluence %.1f, session %s, source %s", signal.ConfluenceScore, signal.Session, signal.Source),
		map[string]interface{}{"signal_id": signal.ID, "source": signal.Source},
	)
	return nil
}

func (s *sendSignalService) MarkSent(ctx context.Context, signalID string) {
	if err := s.signalRepo.MarkSent(ctx, signalID); err != nil {
		s.log.WarnContext(ctx, "Failed to mark signal as sent", logger.ErrorField(err), logger.StringField("signal_id", signalID))
	}
}

// PublishSignal saves the signal and broadcasts it to the configured chat.
// A failed save does not prevent the broadcast.
func (s *sendSignalService) PublishSignal(ctx context.Context, signal *dto.Signal) error {
	saveErr := s.SaveSignal(ctx, signal)

	if s.cfg.Telegram.ChatID == 0 {
		s.log.InfoContext(ctx, "No chat ID configured for sending signals", logger.StringField("signal_id", signal.ID))
		return saveErr
	}

	_, sendErr := s.telegram.SendToChat(ctx, s.cfg.Telegram.ChatID,
		telegram.FormatTradingSignal(signal),
		telebot.ModeMarkdown,
		telegram.TradeButtons(signal.ID),
	)
	if sendErr != nil {
		s.log.ErrorContext(ctx, "Failed to send trading signal", logger.ErrorField(sendErr), logger.StringField("signal_id", signal.ID))
		return errors.Join(saveErr, fmt.Errorf("failed to send trading signal: %w", sendErr))
	}

	if saveErr == nil {
		s.MarkSent(ctx, signal.ID)
	}
	s.log.InfoContext(ctx, "Trading signal sent",
		logger.StringField("signal_id", signal.ID),
		logger.StringField("sent_at", utils.PrettyDate(utils.TimeNowUTC())),
	)
	return saveErr
}
