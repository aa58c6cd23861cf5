package telegram

import (
	"context"
	"testing"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type fakeSender struct {
	sent []sentMessage
}

type sentMessage struct {
	to   telebot.Recipient
	what interface{}
	opts []interface{}
}

func (f *fakeSender) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	f.sent = append(f.sent, sentMessage{to: to, what: what, opts: opts})
	return &telebot.Message{ID: len(f.sent)}, nil
}

func (f *fakeSender) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	return &telebot.Message{}, nil
}

func (f *fakeSender) Respond(c *telebot.Callback, resp ...*telebot.CallbackResponse) error {
	return nil
}

func TestTelegramRateLimiter_SendToChat(t *testing.T) {
	sender := &fakeSender{}
	limiter := NewTelegramRateLimiter(&config.TelegramConfig{
		MaxGlobalRequestPerSecond: 30,
		MaxUserRequestPerSecond:   5,
		MaxEditMessagePerSecond:   5,
		RatelimitExpireDuration:   time.Minute,
	}, logger.NewNop(), sender)

	_, err := limiter.SendToChat(context.Background(), 0, "hello")
	assert.ErrorIs(t, err, ErrNoChat)
	assert.Empty(t, sender.sent)

	_, err = limiter.SendToChat(context.Background(), 42, "hello", telebot.ModeMarkdown)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "42", sender.sent[0].to.Recipient())

	limiter.cleanupExpired(time.Now().Add(2 * time.Minute))
	assert.Empty(t, limiter.userLimiters)
	assert.Empty(t, limiter.chatLimiters)
}

func TestFormatTradingSignal(t *testing.T) {
	signal := &dto.Signal{
		ID:              "abc",
		Symbol:          "EURUSD",
		Type:            dto.SignalBuy,
		EntryPrice:      decimal.RequireFromString("1.0950"),
		StopLoss:        decimal.RequireFromString("1.0920"),
		TakeProfit:      decimal.RequireFromString("1.1025"),
		ConfluenceScore: 82.34,
		Strength:        "MEDIUM",
		Strategy:        "multi_confluence",
		Session:         "London/New York Overlap",
		CreatedAt:       time.Date(2026, 3, 2, 14, 5, 0, 0, time.UTC),
	}

	msg := FormatTradingSignal(signal)
	assert.Contains(t, msg, "*Entry:* 1.09500")
	assert.Contains(t, msg, "*Stop Loss:* 1.09200")
	assert.Contains(t, msg, "*Take Profit:* 1.10250")
	assert.Contains(t, msg, "82.3%")
	assert.Contains(t, msg, "1:2.5")
	assert.Contains(t, msg, "75 pips")
	assert.Contains(t, msg, `multi\_confluence`)
	assert.Contains(t, msg, "14:05 UTC")

	markup := TradeButtons(signal.ID)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "trade_taken_abc", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "trade_skipped_abc", markup.InlineKeyboard[0][1].Data)
}
