package telegram

import (
	"fmt"
	"strings"
	"time"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/utils"

	"gopkg.in/telebot.v3"
)

const (
	CallbackTradeTaken   = "trade_taken_"
	CallbackTradeSkipped = "trade_skipped_"
)

// FormatTradingSignal renders a signal as a legacy Markdown message.
func FormatTradingSignal(signal *dto.Signal) string {
	var sb strings.Builder

	sb.WriteString("🎯 *TRADING SIGNAL*\n\n")
	sb.WriteString(fmt.Sprintf("📊 *Pair:* %s\n", utils.EscapeMarkdown(signal.Symbol)))
	sb.WriteString(fmt.Sprintf("📈 *Direction:* %s\n", signal.Type))
	sb.WriteString(fmt.Sprintf("💰 *Entry:* %s\n", signal.EntryPrice.StringFixed(5)))
	sb.WriteString(fmt.Sprintf("🛑 *Stop Loss:* %s\n", signal.StopLoss.StringFixed(5)))
	sb.WriteString(fmt.Sprintf("🎯 *Take Profit:* %s\n\n", signal.TakeProfit.StringFixed(5)))

	sb.WriteString(fmt.Sprintf("📊 *Confluence Score:* %.1f%% (%s)\n", signal.ConfluenceScore, signal.Strength))
	if signal.Session != "" {
		sb.WriteString(fmt.Sprintf("🕐 *Session:* %s\n", utils.EscapeMarkdown(signal.Session)))
	}
	sb.WriteString(fmt.Sprintf("📈 *Risk:Reward Ratio:* 1:%s\n", signal.RiskReward().StringFixed(1)))
	sb.WriteString(fmt.Sprintf("💎 *Pips Potential:* %s pips\n", signal.PipsPotential().StringFixed(0)))
	sb.WriteString(fmt.Sprintf("⚙️ *Strategy:* %s\n\n", utils.EscapeMarkdown(signal.Strategy)))

	sb.WriteString(fmt.Sprintf("⏰ *Time:* %s\n\n", signal.CreatedAt.UTC().Format("15:04 UTC")))
	sb.WriteString("Did you take this trade?")
	return sb.String()
}

// TradeButtons builds the taken/skipped keyboard attached to a signal message.
func TradeButtons(signalID string) *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{{
			{Text: "✅ Trade Taken", Data: CallbackTradeTaken + signalID},
			{Text: "❌ Trade Skipped", Data: CallbackTradeSkipped + signalID},
		}},
	}
}

func FormatPeriodSummary(title string, p dto.PeriodSummary) string {
	return fmt.Sprintf("*%s:*\n• Signals: %d\n• Trades: %d\n• Win Rate: %s\n• P&L: %+.1f pips\n",
		title, p.Signals, p.Trades, utils.FormatPercentage(p.WinRate), p.TotalPips)
}

func FormatDailyReport(date time.Time, summary dto.PerformanceSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Daily Report* - %s\n\n", date.UTC().Format("2006-01-02")))
	sb.WriteString(FormatPeriodSummary("Today", summary.Today))
	sb.WriteString("\n")
	sb.WriteString(FormatPeriodSummary("This Week", summary.Week))
	sb.WriteString("\n🎯 Target: 50-80 pips daily")
	return sb.String()
}

func FormatStartupMessage() string {
	return "🤖 *Trading Bot Started*\n\n" +
		"✅ System initialized\n" +
		"📊 Ready to generate signals\n" +
		"🎯 Target: 50-80 pips daily\n\n" +
		"Use /help for available commands"
}

func FormatErrorAlertMessage(at time.Time, message string) string {
	return fmt.Sprintf("📛 [ERROR ALERT]\n%s\n\n%s", utils.PrettyDate(at), message)
}
