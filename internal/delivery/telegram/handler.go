package telegram

import (
	"context"
	"fmt"
	"strings"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/middleware"
	"trading-signal-bot/pkg/utils"

	"gopkg.in/telebot.v3"
)

type handlerFunc func(ctx context.Context, c telebot.Context) error

func (t *TelegramBotHandler) RegisterHandlers() {
	for _, cmd := range AllCommands() {
		t.bot.Handle(cmd.Endpoint(), t.wrap(t.commandHandler(cmd)))
	}
	t.bot.Handle(telebot.OnCallback, t.wrap(t.handleCallback))
	t.bot.Handle(telebot.OnText, t.wrap(t.handleText))
}

func (t *TelegramBotHandler) wrap(handler handlerFunc) telebot.HandlerFunc {
	return middleware.WithContext(t.ctx, t.cfg.Telegram.TimeoutDuration, handler)
}

// commandHandler maps every command to its handler. The switch covers every Command value.
func (t *TelegramBotHandler) commandHandler(cmd Command) handlerFunc {
	var handler handlerFunc
	switch cmd {
	case CommandStart:
		handler = t.handleStart
	case CommandHelp:
		handler = t.handleHelp
	case CommandStatus:
		handler = t.handleStatus
	case CommandPerformance:
		handler = t.handlePerformance
	case CommandSignals:
		handler = t.handleSignals
	case CommandTrades:
		handler = t.handleTrades
	case CommandSettings:
		handler = t.handleSettings
	case CommandGenerate:
		handler = t.handleGenerate
	default:
		panic(fmt.Sprintf("no handler for %s", cmd))
	}

	return func(ctx context.Context, c telebot.Context) error {
		t.metrics.RecordCommand(cmd.String())
		t.audit(ctx, c, cmd.InteractionType(), nil)
		return handler(ctx, c)
	}
}

// audit stores the inbound update before any reply is computed.
func (t *TelegramBotHandler) audit(ctx context.Context, c telebot.Context, interactionType string, contextData map[string]interface{}) {
	interaction := &model.UserInteraction{InteractionType: interactionType}
	if sender := c.Sender(); sender != nil {
		interaction.UserID = fmt.Sprintf("%d", sender.ID)
	}
	if msg := c.Message(); msg != nil && c.Callback() == nil && msg.Text != "" {
		if strings.HasPrefix(msg.Text, "/") {
			interaction.Command = utils.ToPointer(msg.Text)
		} else {
			interaction.Message = utils.ToPointer(msg.Text)
		}
	}
	if chat := c.Chat(); chat != nil {
		if contextData == nil {
			contextData = map[string]interface{}{}
		}
		contextData["chat_id"] = chat.ID
	}
	t.service.TelegramBotService.RecordInteraction(ctx, interaction, contextData)
}

func (t *TelegramBotHandler) reply(ctx context.Context, c telebot.Context, message string, opts ...interface{}) error {
	opts = append([]interface{}{telebot.ModeMarkdown}, opts...)
	if _, err := t.telegram.Send(ctx, c, message, opts...); err != nil {
		t.log.ErrorContext(ctx, "Failed to send message", logger.ErrorField(err))
		return err
	}
	return nil
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, messageWelcome)
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, t.helpMessage())
}

func (t *TelegramBotHandler) handleText(ctx context.Context, c telebot.Context) error {
	t.metrics.RecordCommand("text")
	t.audit(ctx, c, interactionText, map[string]interface{}{"text": c.Text()})
	return t.reply(ctx, c, messageUnknownText)
}
