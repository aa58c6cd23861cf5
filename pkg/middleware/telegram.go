package middleware

import (
	"context"
	"time"

	"gopkg.in/telebot.v3"
)

// WithContext adapts a context-aware handler to telebot, bounding it by timeout.
func WithContext(rootCtx context.Context, timeout time.Duration, handler func(ctx context.Context, c telebot.Context) error) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(rootCtx, timeout)
		defer cancel()

		return handler(ctx, c)
	}
}
