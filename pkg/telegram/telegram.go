package telegram

import (
	"context"
	"errors"
	"sync"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/utils"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

var ErrNoChat = errors.New("telegram chat id is not configured")

// Sender is the part of *telebot.Bot used to deliver messages.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Respond(c *telebot.Callback, resp ...*telebot.CallbackResponse) error
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// TelegramRateLimiter wraps every outbound call with a global, a per-user and a per-chat limit.
type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	globalLimiter *rate.Limiter
	userLimiters  map[int64]*limiterEntry
	chatLimiters  map[int64]*limiterEntry
	bot           Sender
	mu            sync.Mutex
	editMu        sync.Mutex
	wg            sync.WaitGroup
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, bot Sender) *TelegramRateLimiter {
	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: newLimiter(cfg.MaxGlobalRequestPerSecond),
		userLimiters:  make(map[int64]*limiterEntry),
		chatLimiters:  make(map[int64]*limiterEntry),
	}
}

func newLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

// Send replies in the chat the update came from.
func (t *TelegramRateLimiter) Send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	chat := c.Chat()
	if chat == nil {
		return nil, ErrNoChat
	}
	if err := t.checkRateLimit(ctx, senderID(c, chat.ID), chat.ID); err != nil {
		return nil, err
	}
	return t.bot.Send(chat, what, opts...)
}

// SendToChat delivers a message to a chat that is not the origin of an update.
func (t *TelegramRateLimiter) SendToChat(ctx context.Context, chatID int64, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if chatID == 0 {
		return nil, ErrNoChat
	}
	if err := t.checkRateLimit(ctx, chatID, chatID); err != nil {
		return nil, err
	}
	return t.bot.Send(&telebot.Chat{ID: chatID}, what, opts...)
}

// Edit replaces the message the update refers to, typically the one carrying inline buttons.
func (t *TelegramRateLimiter) Edit(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	msg := c.Message()
	if msg == nil {
		return nil, errors.New("update has no message to edit")
	}
	if err := t.checkRateLimit(ctx, senderID(c, msg.Chat.ID), msg.Chat.ID); err != nil {
		return nil, err
	}

	t.editMu.Lock()
	defer t.editMu.Unlock()
	return t.bot.Edit(msg, what, opts...)
}

func (t *TelegramRateLimiter) Respond(ctx context.Context, c telebot.Context, resp ...*telebot.CallbackResponse) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	if err := t.globalLimiter.Wait(ctx); err != nil {
		return err
	}
	return t.bot.Respond(cb, resp...)
}

func senderID(c telebot.Context, fallback int64) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return fallback
}

func (t *TelegramRateLimiter) getLimiter(limiters map[int64]*limiterEntry, id int64, perSecond int) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, exists := limiters[id]; exists {
		entry.lastAccess = time.Now()
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    newLimiter(perSecond),
		lastAccess: time.Now(),
	}
	limiters[id] = entry
	return entry.limiter
}

func (t *TelegramRateLimiter) checkRateLimit(ctx context.Context, userID int64, chatID int64) error {
	chatLimiter := t.getLimiter(t.chatLimiters, chatID, t.cfg.MaxEditMessagePerSecond)
	userLimiter := t.getLimiter(t.userLimiters, userID, t.cfg.MaxUserRequestPerSecond)

	if err := chatLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for chat rate limit", logger.ErrorField(err))
		return err
	}
	if err := t.globalLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	if err := userLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for user rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

// StartCleanupExpired drops idle per-user and per-chat limiters until ctx is done.
func (t *TelegramRateLimiter) StartCleanupExpired(ctx context.Context) {
	if t.cfg.RateLimitCleanupDuration <= 0 {
		return
	}
	t.wg.Add(1)
	utils.GoSafe(func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.cfg.RateLimitCleanupDuration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.log.Info("Received signal to stop Telegram rate limiter cleanup expired")
				return
			case <-ticker.C:
				t.cleanupExpired(time.Now())
			}
		}
	})
}

func (t *TelegramRateLimiter) cleanupExpired(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, limiters := range []map[int64]*limiterEntry{t.userLimiters, t.chatLimiters} {
		for id, entry := range limiters {
			if now.Sub(entry.lastAccess) > t.cfg.RatelimitExpireDuration {
				delete(limiters, id)
			}
		}
	}
}

func (t *TelegramRateLimiter) StopCleanupExpired() {
	t.wg.Wait()
	t.log.Info("Telegram rate limiter stopped")
}
