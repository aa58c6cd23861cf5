package telegram

import "gopkg.in/telebot.v3"

const (
	callbackSettingsPrefix = "settings_"

	settingsNotifications = "notifications"
	settingsRisk          = "risk"
	settingsPairs         = "pairs"
	settingsStrategy      = "strategy"
)

var settingsMenu = &telebot.ReplyMarkup{
	InlineKeyboard: [][]telebot.InlineButton{
		{{Text: "🔔 Notifications", Data: callbackSettingsPrefix + settingsNotifications}},
		{{Text: "📊 Risk Management", Data: callbackSettingsPrefix + settingsRisk}},
		{{Text: "🎯 Target Pairs", Data: callbackSettingsPrefix + settingsPairs}},
		{{Text: "📈 Strategy", Data: callbackSettingsPrefix + settingsStrategy}},
	},
}

const (
	messageWelcome = `🎯 *Welcome to Trading Signal Bot*

This bot provides trading signals for:
• 💱 Major Forex pairs
• 🏆 Gold (XAUUSD)
• ₿ Major cryptocurrencies

*Target:* 50-80 pips daily profit
*Strategy:* Multi-confluence technical analysis

Use /help to see all available commands`

	messageSignals = `📡 *Recent Signals*

🔍 No recent signals found
Next analysis in progress...`

	messageTrades = `💼 *Recent Trades*

No recent trades to display`

	messageSettings = `⚙️ *Bot Settings*

Select a category to configure:`

	messageUnknownText     = "I received your message. Use /help to see available commands."
	messageTradeHandled    = "Trade callback handled"
	messageSettingNotFound = "Setting not found"
	messageGenerateError   = "❌ Error generating signal. Please try again later."
)
