package telegram

import (
	"context"
	"fmt"
	"strings"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/telegram"
	"trading-signal-bot/pkg/utils"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) helpMessage() string {
	var sb strings.Builder
	sb.WriteString("🤖 *Available Commands*\n\n")
	for _, cmd := range AllCommands() {
		sb.WriteString(fmt.Sprintf("• %s - %s\n", cmd.Endpoint(), cmd.Description()))
	}
	sb.WriteString("\n🔄 *Reports*\n")
	sb.WriteString("• Daily reports are sent automatically at 08:00 UTC\n")
	sb.WriteString("• /generate only produces a signal inside a trading session\n\n")
	sb.WriteString("🕰 *Trading Sessions:*\n")
	sb.WriteString(t.sessionLines())
	return sb.String()
}

func (t *TelegramBotHandler) sessionLines() string {
	var sb strings.Builder
	for _, w := range t.cfg.Strategy.Sessions {
		sb.WriteString(fmt.Sprintf("• %s: %02d:00-%02d:00 UTC\n", w.Name, w.StartHour, w.EndHour))
	}
	return sb.String()
}

func (t *TelegramBotHandler) handleStatus(ctx context.Context, c telebot.Context) error {
	status := t.service.TelegramBotService.GetStatus(ctx)

	lastSignal := "No signals today"
	if status.LastSignalTime != nil {
		lastSignal = utils.PrettyDate(*status.LastSignalTime)
	}
	session := status.ActiveSession
	if session == "" {
		session = "Closed"
	}

	message := fmt.Sprintf(`🤖 *Bot Status*

🟢 *System:* %s
🗄 *Database:* %s
📊 *Data Feed:* %s
🎯 *Strategy:* %s
🕐 *Session:* %s
📈 *Signals Today:* %d/%d
💰 *Daily P&L:* %+.1f pips
📅 *Last Signal:* %s

⏰ *Uptime:* %s`,
		status.SystemStatus,
		status.DatabaseStatus,
		status.DataFeedStatus,
		utils.EscapeMarkdown(status.ActiveStrategy),
		session,
		status.SignalsToday, status.MaxDaily,
		status.DailyPnL,
		lastSignal,
		utils.FormatUptime(status.Uptime),
	)
	return t.reply(ctx, c, message)
}

func (t *TelegramBotHandler) handlePerformance(ctx context.Context, c telebot.Context) error {
	summary := t.service.TelegramBotService.GetPerformance(ctx)

	var sb strings.Builder
	sb.WriteString("📊 *Performance Summary*\n\n")
	sb.WriteString(telegram.FormatPeriodSummary("Today", summary.Today))
	sb.WriteString("\n")
	sb.WriteString(telegram.FormatPeriodSummary("This Week", summary.Week))
	sb.WriteString("\n")
	sb.WriteString(telegram.FormatPeriodSummary("This Month", summary.Month))
	sb.WriteString("\n*Trading Sessions:*\n")
	sb.WriteString(t.sessionLines())
	return t.reply(ctx, c, sb.String())
}

func (t *TelegramBotHandler) handleSignals(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, messageSignals)
}

func (t *TelegramBotHandler) handleTrades(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, messageTrades)
}

func (t *TelegramBotHandler) handleSettings(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, messageSettings, settingsMenu)
}

func (t *TelegramBotHandler) settingsInfo(setting string) string {
	cfg := t.cfg
	switch setting {
	case settingsNotifications:
		return fmt.Sprintf("🔔 Notifications are currently enabled\nDaily reports: `%s` (cron, UTC)", cfg.Reporting.Schedule)
	case settingsRisk:
		return fmt.Sprintf("📊 Current Risk Settings\nDaily signal limit: %d\nMinimum interval: %s\nStop loss offset: %.4f\nTake profit offset: %.4f",
			cfg.Strategy.MaxDailySignals, cfg.Strategy.MinSignalInterval, cfg.Strategy.StopLossOffset, cfg.Strategy.TakeProfitOffset)
	case settingsPairs:
		return fmt.Sprintf("🎯 Monitored Pairs\nForex: %s\nCommodity: %s\nCrypto: %s",
			utils.EscapeMarkdown(strings.Join(cfg.MarketData.ForexSymbols, ", ")),
			utils.EscapeMarkdown(strings.Join(cfg.MarketData.CommoditySymbols, ", ")),
			utils.EscapeMarkdown(strings.Join(cfg.MarketData.CryptoSymbols, ", ")))
	case settingsStrategy:
		return fmt.Sprintf("📈 Active Strategy: %s\nConfluence threshold: %.0f%%",
			utils.EscapeMarkdown(cfg.Strategy.ActiveStrategy), cfg.Strategy.MinConfluenceScore)
	default:
		return messageSettingNotFound
	}
}

// sessionClosedMessage tells the user when the next windows open.
func sessionClosedMessage(hour int, sessions []dto.SessionInfo) string {
	var sb strings.Builder
	sb.WriteString("🚫 *Not in active trading session*\n\n")
	sb.WriteString(fmt.Sprintf("Current time: %02d:XX UTC\n\n", hour))
	sb.WriteString("*Next sessions:*\n")
	for _, s := range sessions {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", s.Name, s.NextOpen))
	}
	sb.WriteString("\nSignals are only generated during:\n")
	for _, s := range sessions {
		sb.WriteString(fmt.Sprintf("• %s: %02d:00-%02d:00 UTC\n", s.Name, s.StartHour, s.EndHour))
	}
	return sb.String()
}
