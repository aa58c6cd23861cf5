package telegram

import (
	"context"
	"strings"
	"testing"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/internal/repository"
	"trading-signal-bot/internal/service"
	"trading-signal-bot/internal/strategy"
	"trading-signal-bot/pkg/cache"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordingSender struct {
	sent     []string
	edited   []string
	editOpts [][]interface{}
}

func (r *recordingSender) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if s, ok := what.(string); ok {
		r.sent = append(r.sent, s)
	}
	return &telebot.Message{}, nil
}

func (r *recordingSender) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if s, ok := what.(string); ok {
		r.edited = append(r.edited, s)
		r.editOpts = append(r.editOpts, opts)
	}
	return &telebot.Message{}, nil
}

func (r *recordingSender) Respond(c *telebot.Callback, resp ...*telebot.CallbackResponse) error {
	return nil
}

type nopPinger struct{}

func (nopPinger) Ping(ctx context.Context) error { return nil }

type handlerEnv struct {
	db      *gorm.DB
	bot     *telebot.Bot
	sender  *recordingSender
	service *service.Service
	handler *TelegramBotHandler
	clock   time.Time
}

func handlerConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{TimeoutDuration: time.Minute},
		Strategy: config.Strategy{
			ActiveStrategy:     "multi_confluence",
			MaxDailySignals:    3,
			MinSignalInterval:  time.Hour,
			MinConfluenceScore: 70,
			ScoreMin:           70,
			ScoreMax:           95,
			StopLossOffset:     0.0030,
			TakeProfitOffset:   0.0075,
			MockSymbol:         "EURUSD",
			MockEntryPrice:     1.0950,
			SignalExpiry:       4 * time.Hour,
			Sessions: []config.SessionWindow{
				{Name: "London", StartHour: 8, EndHour: 17},
				{Name: "New York", StartHour: 13, EndHour: 22},
			},
		},
		MarketData: config.MarketData{
			ForexSymbols:  []string{"EURUSD"},
			CryptoSymbols: []string{"BTCUSDT"},
		},
		Reporting: config.Reporting{Schedule: "0 8 * * *"},
	}
}

func newHandlerEnv(t *testing.T, now time.Time) *handlerEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	cfg := handlerConfig()
	log := logger.NewNop()
	repo := &repository.Repository{
		SignalRepo:              repository.NewSignalRepository(db),
		TradeRepo:               repository.NewTradeRepository(db),
		StrategyPerformanceRepo: repository.NewStrategyPerformanceRepository(db),
		SystemEventRepo:         repository.NewSystemEventRepository(db),
		MarketDataRepo:          repository.NewMarketDataRepository(db),
		UserInteractionRepo:     repository.NewUserInteractionRepository(db),
		QuoteRepo:               repository.NewQuoteRepository(cfg.MarketData, nil, nil),
		UnitOfWork:              repository.NewUnitOfWork(db),
	}

	env := &handlerEnv{db: db, sender: &recordingSender{}, clock: now}
	gate := strategy.NewSessionGate(cfg.Strategy, func() time.Time { return env.clock })
	generator := strategy.NewSignalGenerator(cfg.Strategy, gate, nil)
	rec := metrics.New(prometheus.NewRegistry())
	limiter := telegram.NewTelegramRateLimiter(&cfg.Telegram, log, env.sender)
	env.service = service.NewService(cfg, log, repo, cache.NewCache(time.Minute, time.Minute), limiter, rec, nopPinger{}, generator)

	env.bot, err = telebot.NewBot(telebot.Settings{Token: "123456:offline", Offline: true, Synchronous: true})
	require.NoError(t, err)
	env.handler = NewTelegramBotHandler(context.Background(), cfg, log, env.bot, limiter, env.service, rec)
	env.handler.RegisterHandlers()
	return env
}

func (e *handlerEnv) sendText(text string) {
	e.bot.ProcessUpdate(telebot.Update{
		Message: &telebot.Message{
			Text:   text,
			Sender: &telebot.User{ID: 777},
			Chat:   &telebot.Chat{ID: 777},
		},
	})
}

func (e *handlerEnv) sendCallback(data string) {
	e.bot.ProcessUpdate(telebot.Update{
		Callback: &telebot.Callback{
			ID:      "cb-1",
			Data:    data,
			Sender:  &telebot.User{ID: 777},
			Message: &telebot.Message{ID: 10, Chat: &telebot.Chat{ID: 777}},
		},
	})
}

func (e *handlerEnv) interactions(t *testing.T, interactionType string) []model.UserInteraction {
	t.Helper()
	var rows []model.UserInteraction
	require.NoError(t, e.db.Where("interaction_type = ?", interactionType).Find(&rows).Error)
	return rows
}

func TestCommand_Mapping(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	seen := make(map[string]bool)
	for _, cmd := range AllCommands() {
		assert.NotPanics(t, func() { env.handler.commandHandler(cmd) }, cmd.String())
		assert.NotEmpty(t, cmd.Description(), cmd.String())
		assert.False(t, seen[cmd.Endpoint()], "duplicate endpoint %s", cmd.Endpoint())
		seen[cmd.Endpoint()] = true
	}
	assert.Len(t, seen, 8)
	assert.Equal(t, "generate_signal_command", CommandGenerate.InteractionType())
	assert.Equal(t, "status_command", CommandStatus.InteractionType())
}

func TestHandler_StaticCommands(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	env.sendText("/start")
	env.sendText("/help")
	env.sendText("/signals")
	env.sendText("/trades")

	require.Len(t, env.sender.sent, 4)
	assert.Contains(t, env.sender.sent[0], "Welcome to Trading Signal Bot")
	assert.Contains(t, env.sender.sent[1], "/generate")
	assert.Contains(t, env.sender.sent[1], "London: 08:00-17:00 UTC")
	assert.Equal(t, messageSignals, env.sender.sent[2])
	assert.Equal(t, messageTrades, env.sender.sent[3])

	starts := env.interactions(t, "start_command")
	require.Len(t, starts, 1)
	assert.Equal(t, "777", starts[0].UserID)
	require.NotNil(t, starts[0].Command)
	assert.Equal(t, "/start", *starts[0].Command)
}

func TestHandler_StatusAndPerformance(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC))

	env.sendText("/status")
	env.sendText("/performance")

	require.Len(t, env.sender.sent, 2)
	status := env.sender.sent[0]
	assert.Contains(t, status, "*System:* Online")
	assert.Contains(t, status, "*Database:* Connected")
	assert.Contains(t, status, "Waiting for first cycle")
	assert.Contains(t, status, "*Signals Today:* 0/3")
	assert.Contains(t, status, "No signals today")
	assert.Contains(t, status, "London/New York Overlap")

	perf := env.sender.sent[1]
	assert.Contains(t, perf, "Performance Summary")
	assert.Contains(t, perf, "New York: 13:00-22:00 UTC")
}

func TestHandler_GenerateOutsideSession(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC))

	env.sendText("/generate")

	require.Len(t, env.sender.sent, 1)
	msg := env.sender.sent[0]
	assert.Contains(t, msg, "Not in active trading session")
	assert.Contains(t, msg, "Current time: 03:XX UTC")
	assert.Contains(t, msg, "London: 08:00 UTC")

	var signals int64
	require.NoError(t, env.db.Model(&model.TradingSignal{}).Count(&signals).Error)
	assert.Zero(t, signals)
	assert.Len(t, env.interactions(t, "generate_signal_command"), 1)
}

func TestHandler_GenerateInSession(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC))

	env.sendText("/generate")
	require.Len(t, env.sender.sent, 1)
	assert.Contains(t, env.sender.sent[0], "TRADING SIGNAL")
	assert.Contains(t, env.sender.sent[0], "1:2.5")

	var stored []model.TradingSignal
	require.NoError(t, env.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].SentToTelegram)
	assert.Equal(t, model.SignalStatusActive, stored[0].Status)

	// a second request inside the minimum interval is throttled
	env.clock = env.clock.Add(10 * time.Minute)
	env.sendText("/generate")
	require.Len(t, env.sender.sent, 2)
	assert.Contains(t, env.sender.sent[1], "No signal generated")
	assert.Contains(t, env.sender.sent[1], "Signals: 1/3 today")
}

func TestHandler_TradeCallback(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC))

	result, err := env.service.TelegramBotService.GenerateSignal(context.Background())
	require.NoError(t, err)
	require.True(t, result.Generated())
	signalID := result.Signal.ID

	env.sendCallback(telegram.CallbackTradeTaken + signalID)

	require.Len(t, env.sender.edited, 1)
	assert.Equal(t, messageTradeHandled, env.sender.edited[0])

	var signal model.TradingSignal
	require.NoError(t, env.db.First(&signal, "id = ?", signalID).Error)
	assert.Equal(t, model.SignalStatusTaken, signal.Status)

	var trades []model.Trade
	require.NoError(t, env.db.Find(&trades).Error)
	require.Len(t, trades, 1)
	assert.Equal(t, model.TradeStatusOpen, trades[0].Status)
	assert.True(t, trades[0].UserConfirmed)

	callbacks := env.interactions(t, interactionCallback)
	require.Len(t, callbacks, 1)
	assert.Contains(t, string(callbacks[0].ContextData), `"action":"taken"`)
	assert.Contains(t, string(callbacks[0].ContextData), signalID)
}

func TestHandler_RepeatedTradeCallback(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC))

	result, err := env.service.TelegramBotService.GenerateSignal(context.Background())
	require.NoError(t, err)
	require.True(t, result.Generated())
	signalID := result.Signal.ID

	env.sendCallback(telegram.CallbackTradeTaken + signalID)
	env.sendCallback(telegram.CallbackTradeTaken + signalID)
	env.sendCallback(telegram.CallbackTradeSkipped + signalID)

	require.Len(t, env.sender.edited, 3, "every press is still acknowledged")

	var trades int64
	require.NoError(t, env.db.Model(&model.Trade{}).Count(&trades).Error)
	assert.Equal(t, int64(1), trades)

	var signal model.TradingSignal
	require.NoError(t, env.db.First(&signal, "id = ?", signalID).Error)
	assert.Equal(t, model.SignalStatusTaken, signal.Status)

	assert.Len(t, env.interactions(t, interactionCallback), 3)
}

func TestParseTradeCallback(t *testing.T) {
	tests := []struct {
		data     string
		action   string
		signalID string
	}{
		{"trade_taken_abc", service.TradeActionTaken, "abc"},
		{"trade_skipped_abc", service.TradeActionSkipped, "abc"},
		{"settings_risk", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		action, signalID := parseTradeCallback(tt.data)
		assert.Equal(t, tt.action, action, tt.data)
		assert.Equal(t, tt.signalID, signalID, tt.data)
	}
}

func TestHandler_CallbackUnknownSignalStillAcknowledged(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC))

	env.sendCallback(telegram.CallbackTradeTaken + "missing")

	require.Len(t, env.sender.edited, 1)
	assert.Equal(t, messageTradeHandled, env.sender.edited[0])

	var trades int64
	require.NoError(t, env.db.Model(&model.Trade{}).Count(&trades).Error)
	assert.Zero(t, trades)
}

func TestHandler_SettingsCallback(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	env.sendText("/settings")
	env.sendCallback(callbackSettingsPrefix + settingsPairs)
	env.sendCallback(callbackSettingsPrefix + "unknown")

	require.Len(t, env.sender.sent, 1)
	require.Len(t, env.sender.edited, 2)
	assert.Contains(t, env.sender.edited[0], "Forex: EURUSD")
	assert.Contains(t, env.sender.edited[0], "Crypto: BTCUSDT")
	assert.Equal(t, messageSettingNotFound, env.sender.edited[1])
	for _, opts := range env.sender.editOpts {
		assert.Contains(t, opts, telebot.ModeMarkdown)
	}
}

func TestHandler_SettingsCallbackRendersMarkdown(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	env.sendCallback(callbackSettingsPrefix + settingsStrategy)
	env.sendCallback(callbackSettingsPrefix + settingsNotifications)

	require.Len(t, env.sender.edited, 2)
	require.Len(t, env.sender.editOpts, 2)
	assert.Contains(t, env.sender.edited[0], `multi\_confluence`)
	assert.Contains(t, env.sender.editOpts[0], telebot.ModeMarkdown, "escaped text must be sent with a Markdown parse mode")
	assert.Contains(t, env.sender.edited[1], "`0 8 * * *`")
	assert.Contains(t, env.sender.editOpts[1], telebot.ModeMarkdown)
}

func TestHandler_TextMessage(t *testing.T) {
	env := newHandlerEnv(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	env.sendText("hello there")

	require.Len(t, env.sender.sent, 1)
	assert.Equal(t, messageUnknownText, env.sender.sent[0])

	rows := env.interactions(t, interactionText)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Message)
	assert.Equal(t, "hello there", *rows[0].Message)
	assert.True(t, strings.Contains(string(rows[0].ContextData), "hello there"))
}
