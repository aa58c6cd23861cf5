package service

import (
	"context"
	"errors"
	"testing"
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
	"trading-signal-bot/pkg/telegram"
	"trading-signal-bot/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return &telebot.Message{}, nil
}

func (f *fakeSender) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	return &telebot.Message{}, nil
}

func (f *fakeSender) Respond(c *telebot.Callback, resp ...*telebot.CallbackResponse) error {
	return nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

type testEnv struct {
	db      *gorm.DB
	repo    *repository.Repository
	sender  *fakeSender
	cache   cache.Cache
	clock   *time.Time
	service *Service
}

func testConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{ChatID: 42, TimeoutDuration: time.Minute},
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
			MonitorInterval:    5 * time.Minute,
			ErrorRetryInterval: time.Minute,
			Sessions: []config.SessionWindow{
				{Name: "London", StartHour: 8, EndHour: 17},
				{Name: "New York", StartHour: 13, EndHour: 22},
			},
		},
		MarketData: config.MarketData{CycleInterval: 5 * time.Minute, ErrorRetryInterval: time.Minute},
		Reporting:  config.Reporting{Schedule: "0 8 * * *"},
	}
}

func newTestEnv(t *testing.T, now time.Time, pinger Pinger) *testEnv {
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

	cfg := testConfig()
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

	env := &testEnv{db: db, repo: repo, sender: &fakeSender{}, clock: &now}
	gate := strategy.NewSessionGate(cfg.Strategy, func() time.Time { return *env.clock })
	generator := strategy.NewSignalGenerator(cfg.Strategy, gate, nil)
	env.cache = cache.NewCache(time.Minute, time.Minute)
	limiter := telegram.NewTelegramRateLimiter(&cfg.Telegram, log, env.sender)
	env.service = NewService(cfg, log, repo, env.cache, limiter, metrics.New(prometheus.NewRegistry()), pinger, generator)
	return env
}

func (e *testEnv) count(t *testing.T, table interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(table).Where(query, args...).Count(&n).Error)
	return n
}

func TestTelegramBotService_RecordInteraction(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), fakePinger{})
	ctx := context.Background()

	interaction := &model.UserInteraction{
		UserID:          "777",
		InteractionType: "generate_signal_command",
		Command:         utils.ToPointer("/generate"),
	}
	env.service.TelegramBotService.RecordInteraction(ctx, interaction, map[string]interface{}{"chat_id": 42})

	got, err := env.repo.UserInteractionRepo.GetByID(ctx, interaction.ID)
	require.NoError(t, err)
	assert.Equal(t, "777", got.UserID)
	assert.Equal(t, "/generate", *got.Command)
	assert.JSONEq(t, `{"chat_id":42}`, string(got.ContextData))
}

func TestTelegramBotService_GenerateSignal(t *testing.T) {
	ctx := context.Background()

	t.Run("inside a session the signal is persisted", func(t *testing.T) {
		env := newTestEnv(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), fakePinger{})

		result, err := env.service.TelegramBotService.GenerateSignal(ctx)
		require.NoError(t, err)
		require.True(t, result.Generated())
		assert.Equal(t, dto.SignalSourceManual, result.Signal.Source)

		stored, err := env.repo.SignalRepo.GetByID(ctx, result.Signal.ID)
		require.NoError(t, err)
		assert.Equal(t, "EURUSD", stored.Symbol)
		assert.Equal(t, model.SignalStatusActive, stored.Status)
		assert.Equal(t, int64(1), env.count(t, &model.SystemEvent{}, "event_type = ?", model.EventSignalGenerated))
	})

	t.Run("outside a session nothing is written", func(t *testing.T) {
		env := newTestEnv(t, time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC), fakePinger{})

		result, err := env.service.TelegramBotService.GenerateSignal(ctx)
		require.NoError(t, err)
		assert.False(t, result.Generated())
		assert.Equal(t, dto.RejectSessionClosed, result.Reason)
		assert.Equal(t, int64(0), env.count(t, &model.TradingSignal{}, "1 = 1"))
	})
}

func TestTelegramBotService_HandleTradeCallback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), fakePinger{})
	svc := env.service.TelegramBotService

	result, err := svc.GenerateSignal(ctx)
	require.NoError(t, err)
	require.True(t, result.Generated())
	signalID := result.Signal.ID

	require.NoError(t, svc.HandleTradeCallback(ctx, TradeActionTaken, signalID))

	var trade model.Trade
	require.NoError(t, env.db.Where("signal_id = ?", signalID).First(&trade).Error)
	assert.Equal(t, model.TradeStatusOpen, trade.Status)
	assert.True(t, trade.UserConfirmed)
	assert.InDelta(t, 1.0950, trade.EntryPrice, 1e-9)

	signal, err := env.repo.SignalRepo.GetByID(ctx, signalID)
	require.NoError(t, err)
	assert.Equal(t, model.SignalStatusTaken, signal.Status)

	err = svc.HandleTradeCallback(ctx, TradeActionTaken, signalID)
	require.ErrorIs(t, err, dto.ErrSignalAlreadyHandled)
	err = svc.HandleTradeCallback(ctx, TradeActionSkipped, signalID)
	require.ErrorIs(t, err, dto.ErrSignalAlreadyHandled)
	signal, err = env.repo.SignalRepo.GetByID(ctx, signalID)
	require.NoError(t, err)
	assert.Equal(t, model.SignalStatusTaken, signal.Status)
	assert.Equal(t, int64(1), env.count(t, &model.Trade{}, "1 = 1"))

	*env.clock = env.clock.Add(time.Hour)
	second, err := svc.GenerateSignal(ctx)
	require.NoError(t, err)
	require.True(t, second.Generated())
	require.NoError(t, svc.HandleTradeCallback(ctx, TradeActionSkipped, second.Signal.ID))
	require.ErrorIs(t, svc.HandleTradeCallback(ctx, TradeActionTaken, second.Signal.ID), dto.ErrSignalAlreadyHandled)
	signal, err = env.repo.SignalRepo.GetByID(ctx, second.Signal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SignalStatusSkipped, signal.Status)
	assert.Equal(t, int64(1), env.count(t, &model.Trade{}, "1 = 1"))

	err = svc.HandleTradeCallback(ctx, TradeActionTaken, "missing")
	require.Error(t, err)
	assert.Equal(t, int64(1), env.count(t, &model.Trade{}, "1 = 1"), "a failed callback must not leave a trade behind")

	require.Error(t, svc.HandleTradeCallback(ctx, "maybe", signalID))
}

func TestTelegramBotService_GetStatus(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC), fakePinger{err: errors.New("connection refused")})
	svc := env.service.TelegramBotService

	status := svc.GetStatus(context.Background())
	assert.Equal(t, "Online", status.SystemStatus)
	assert.Equal(t, "Disconnected", status.DatabaseStatus)
	assert.Equal(t, "Waiting for first cycle", status.DataFeedStatus)
	assert.Equal(t, "London/New York Overlap", status.ActiveSession)
	assert.Nil(t, status.LastSignalTime)

	env.cache.Set(common.KEY_FEED_STATUS, dto.FeedStatus{
		LastCycleAt:  time.Date(2026, 3, 2, 14, 25, 0, 0, time.UTC),
		SymbolsOK:    9,
		SymbolsTotal: 12,
	}, time.Minute)
	status = svc.GetStatus(context.Background())
	assert.Equal(t, "Connected (9/12 symbols, last cycle 14:25 UTC)", status.DataFeedStatus)
}

func TestSendSignalService_PublishSignal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), fakePinger{})

	job := env.service.SchedulerService
	require.NoError(t, job.RunJobTask(ctx, strategy.JobTypeSignalMonitor))

	require.Len(t, env.sender.sent, 1)
	assert.Contains(t, env.sender.sent[0], "TRADING SIGNAL")

	var signal model.TradingSignal
	require.NoError(t, env.db.First(&signal).Error)
	assert.True(t, signal.SentToTelegram)
}

func TestReportingService_SendDailyReport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), fakePinger{})

	for _, hour := range []int{14, 15, 16} {
		*env.clock = time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
		result, err := env.service.TelegramBotService.GenerateSignal(ctx)
		require.NoError(t, err)
		require.True(t, result.Generated())
	}

	*env.clock = time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
	require.NoError(t, env.service.ReportingService.SendDailyReport(ctx))
	require.NoError(t, env.service.ReportingService.SendDailyReport(ctx))

	assert.Equal(t, int64(1), env.count(t, &model.StrategyPerformance{}, "period_type = ?", model.PeriodDaily))
	var snapshot model.StrategyPerformance
	require.NoError(t, env.db.Where("period_type = ?", model.PeriodDaily).First(&snapshot).Error)
	assert.Equal(t, "2026-03-02", snapshot.Date.UTC().Format("2006-01-02"), "the morning report covers the previous day")
	assert.Equal(t, 3, snapshot.SignalsGenerated)

	assert.Equal(t, int64(2), env.count(t, &model.SystemEvent{}, "event_type = ?", model.EventDailyReport))
	require.Len(t, env.sender.sent, 2)
	assert.Contains(t, env.sender.sent[0], "Daily Report")
	assert.Equal(t, dto.PerformanceSummary{}, env.service.ReportingService.PerformanceSummary(ctx))
}
