package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/pkg/cache"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/postgres"
	"trading-signal-bot/pkg/telegram"
	"trading-signal-bot/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/telebot.v3"
)

type AppDependency struct {
	db          *postgres.DB
	cfg         *config.Config
	log         *logger.Logger
	validator   *goValidator.Validate
	echo        *echo.Echo
	cache       cache.Cache
	metrics     *metrics.Recorder
	gatherer    prometheus.Gatherer
	telegram    *telegram.TelegramRateLimiter
	telegramBot *telebot.Bot
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	baseLog, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}
	for _, warning := range cfg.Warnings() {
		baseLog.Warn("Configuration warning", zap.String("warning", warning))
	}

	bot, err := telebot.NewBot(botSettings(cfg, baseLog))
	if err != nil {
		baseLog.Error("Failed to create telegram bot", zap.Error(err))
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	rateLimiter := telegram.NewTelegramRateLimiter(&cfg.Telegram, baseLog, bot)
	log := baseLog.WithAlert(zapcore.ErrorLevel, alertNotifier(ctx, cfg, baseLog, rateLimiter))

	startupCtx, cancel := context.WithTimeout(ctx, cfg.App.StartupTimeout)
	defer cancel()
	db, err := postgres.NewDB(startupCtx, cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	return &AppDependency{
		cfg:         cfg,
		log:         log,
		validator:   goValidator.New(),
		db:          db,
		echo:        echo.New(),
		cache:       cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		metrics:     metrics.New(prometheus.DefaultRegisterer),
		gatherer:    prometheus.DefaultGatherer,
		telegram:    rateLimiter,
		telegramBot: bot,
	}, nil
}

// alertNotifier forwards flagged log entries to the operator chat. Delivery
// failures go to the plain logger so they cannot trigger another alert.
func alertNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger, rateLimiter *telegram.TelegramRateLimiter) logger.AlertNotifier {
	return func(message string) {
		if cfg.Telegram.ChatID == 0 {
			return
		}
		utils.GoSafe(func() {
			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Telegram.TimeoutDuration)
			defer cancel()
			text := telegram.FormatErrorAlertMessage(utils.TimeNowUTC(), message)
			if _, err := rateLimiter.SendToChat(sendCtx, cfg.Telegram.ChatID, text); err != nil {
				log.Warn("Failed to deliver error alert", zap.Error(err))
			}
		})
	}
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	_ = d.log.Sync()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// botSettings bounds every Bot API call, including the getMe issued by
// telebot.NewBot, by the startup timeout. Long polling holds a request open
// for PollerTimeout, so the client timeout always leaves headroom above it.
func botSettings(cfg *config.Config, log *logger.Logger) telebot.Settings {
	timeout := cfg.App.StartupTimeout
	if timeout <= cfg.Telegram.PollerTimeout {
		timeout = cfg.Telegram.PollerTimeout + 5*time.Second
	}
	return telebot.Settings{
		Token:  cfg.Telegram.BotToken,
		Poller: &telebot.LongPoller{Timeout: cfg.Telegram.PollerTimeout},
		Client: &http.Client{Timeout: timeout},
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", zap.Error(err))
		},
	}
}
