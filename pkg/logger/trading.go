package logger

import (
	"context"

	"go.uber.org/zap"
)

// LogSignal writes the structured entry emitted for every generated signal.
func (l *Logger) LogSignal(ctx context.Context, symbol, signalType string, confluence, entry, stopLoss, takeProfit float64) {
	l.FromContext(ctx).Info("Trading signal generated",
		zap.String("symbol", symbol),
		zap.String("signal_type", signalType),
		zap.Float64("confluence_score", confluence),
		zap.Float64("entry_price", entry),
		zap.Float64("stop_loss", stopLoss),
		zap.Float64("take_profit", takeProfit),
	)
}

// LogSystemEvent writes a system level event with arbitrary details.
func (l *Logger) LogSystemEvent(ctx context.Context, event string, fields ...zap.Field) {
	l.FromContext(ctx).Info(event, append(fields, zap.String("event_kind", "system"))...)
}
