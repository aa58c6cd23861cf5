package telegram

import (
	"context"
	"errors"
	"strings"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/internal/service"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/telegram"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleCallback(ctx context.Context, c telebot.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	data := strings.TrimSpace(cb.Data)
	action, signalID := parseTradeCallback(data)

	contextData := map[string]interface{}{"data": data}
	if action != "" {
		contextData["action"] = action
		contextData["signal_id"] = signalID
	}
	t.metrics.RecordCommand("callback")
	t.audit(ctx, c, interactionCallback, contextData)

	if err := t.telegram.Respond(ctx, c); err != nil {
		t.log.WarnContext(ctx, "Failed to answer callback", logger.ErrorField(err))
	}

	switch {
	case action != "":
		t.tradeCallback(ctx, action, signalID)
		return t.edit(ctx, c, messageTradeHandled)
	case strings.HasPrefix(data, callbackSettingsPrefix):
		return t.edit(ctx, c, t.settingsInfo(strings.TrimPrefix(data, callbackSettingsPrefix)))
	default:
		t.log.WarnContext(ctx, "Unknown callback data", logger.StringField("data", data))
		return nil
	}
}

// parseTradeCallback splits trade_taken_<id> and trade_skipped_<id>. Other data yields empty strings.
func parseTradeCallback(data string) (action, signalID string) {
	switch {
	case strings.HasPrefix(data, telegram.CallbackTradeTaken):
		return service.TradeActionTaken, strings.TrimPrefix(data, telegram.CallbackTradeTaken)
	case strings.HasPrefix(data, telegram.CallbackTradeSkipped):
		return service.TradeActionSkipped, strings.TrimPrefix(data, telegram.CallbackTradeSkipped)
	}
	return "", ""
}

// tradeCallback persists the user's answer. The message is acknowledged even when this fails.
func (t *TelegramBotHandler) tradeCallback(ctx context.Context, action, signalID string) {
	err := t.service.TelegramBotService.HandleTradeCallback(ctx, action, signalID)
	switch {
	case err == nil:
	case errors.Is(err, dto.ErrSignalAlreadyHandled):
		t.log.InfoContext(ctx, "Ignoring repeated trade callback",
			logger.Field("action", action),
			logger.Field("signal_id", signalID),
		)
	default:
		t.log.ErrorContext(ctx, "Failed to handle trade callback",
			logger.ErrorField(err),
			logger.Field("action", action),
			logger.Field("signal_id", signalID),
		)
	}
}

func (t *TelegramBotHandler) edit(ctx context.Context, c telebot.Context, message string) error {
	if _, err := t.telegram.Edit(ctx, c, message, telebot.ModeMarkdown); err != nil {
		t.log.ErrorContext(ctx, "Failed to edit message", logger.ErrorField(err))
		return err
	}
	return nil
}
