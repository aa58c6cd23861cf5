package contract

import (
	"context"
	"trading-signal-bot/internal/dto"
)

type SignalContract interface {
	// PublishSignal persists a generated signal and broadcasts it to the configured chat.
	PublishSignal(ctx context.Context, signal *dto.Signal) error
}
