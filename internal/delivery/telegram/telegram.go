package telegram

import (
	"context"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/service"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/telegram"

	"gopkg.in/telebot.v3"
)

type TelegramBotHandler struct {
	ctx      context.Context
	cfg      *config.Config
	bot      *telebot.Bot
	log      *logger.Logger
	telegram *telegram.TelegramRateLimiter
	service  *service.Service
	metrics  *metrics.Recorder
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	telegram *telegram.TelegramRateLimiter,
	service *service.Service,
	metrics *metrics.Recorder,
) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:      ctx,
		cfg:      cfg,
		log:      log,
		bot:      bot,
		telegram: telegram,
		service:  service,
		metrics:  metrics,
	}
}

// Start registers the handlers and long-polls until Stop is called.
func (t *TelegramBotHandler) Start() {
	t.log.Info("Starting Telegram bot...")
	t.RegisterHandlers()

	commands := make([]telebot.Command, 0, len(AllCommands()))
	for _, cmd := range AllCommands() {
		commands = append(commands, telebot.Command{Text: cmd.String(), Description: cmd.Description()})
	}
	if err := t.bot.SetCommands(commands); err != nil {
		t.log.Warn("Failed to set bot commands", logger.ErrorField(err))
	}

	t.sendStartupMessage()

	t.log.Info("Telegram bot started successfully")
	t.bot.Start()
}

func (t *TelegramBotHandler) sendStartupMessage() {
	if t.cfg.Telegram.ChatID == 0 {
		t.log.Info("No chat ID configured, skipping startup message")
		return
	}

	ctx, cancel := context.WithTimeout(t.ctx, t.cfg.Telegram.TimeoutDuration)
	defer cancel()

	if _, err := t.telegram.SendToChat(ctx, t.cfg.Telegram.ChatID, telegram.FormatStartupMessage(), telebot.ModeMarkdown); err != nil {
		t.log.ErrorContext(ctx, "Failed to send startup message", logger.ErrorField(err))
		return
	}
	t.log.Info("Startup message sent successfully")
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{})
	go func() {
		t.bot.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}
}
