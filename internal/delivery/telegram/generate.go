package telegram

import (
	"context"
	"fmt"
	"strings"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/telegram"

	"gopkg.in/telebot.v3"
)

var rejectReasonText = map[dto.RejectReason]string{
	dto.RejectSessionClosed: "Outside trading session",
	dto.RejectDailyLimit:    "Daily signal limit reached",
	dto.RejectThrottled:     "Minimum interval since last signal not reached",
	dto.RejectLowConfluence: "Confluence score below threshold",
}

func (t *TelegramBotHandler) handleGenerate(ctx context.Context, c telebot.Context) error {
	if !t.service.TelegramBotService.IsSessionActive() {
		hour, sessions := t.service.TelegramBotService.Sessions()
		return t.reply(ctx, c, sessionClosedMessage(hour, sessions))
	}

	result, err := t.service.TelegramBotService.GenerateSignal(ctx)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to generate signal", logger.ErrorField(err))
		return t.reply(ctx, c, messageGenerateError)
	}

	if !result.Generated() {
		return t.reply(ctx, c, noSignalMessage(result))
	}

	signal := result.Signal
	if err := t.reply(ctx, c, telegram.FormatTradingSignal(signal), telegram.TradeButtons(signal.ID)); err != nil {
		return err
	}
	t.service.TelegramBotService.MarkSignalSent(ctx, signal.ID)
	return nil
}

func noSignalMessage(result dto.GenerateResult) string {
	reason, ok := rejectReasonText[result.Reason]
	if !ok {
		reason = "No setup met the entry conditions"
	}

	var sb strings.Builder
	sb.WriteString("🚫 *No signal generated*\n\n")
	sb.WriteString("Current market conditions don't meet our criteria:\n")
	sb.WriteString(fmt.Sprintf("• %s\n", reason))
	sb.WriteString(fmt.Sprintf("• Signals: %d/%d today\n", result.SignalsToday, result.MaxDailySignals))
	return sb.String()
}
