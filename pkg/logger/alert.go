package logger

import (
	"fmt"
	"sort"
	"strings"
	"trading-signal-bot/pkg/common"

	"go.uber.org/zap/zapcore"
)

// AlertNotifier delivers a rendered alert message, usually to the operator chat.
type AlertNotifier func(message string)

// AlertCore tees entries flagged with common.KEY_LOG_HOOK_SEND_ALERT to a notifier.
type AlertCore struct {
	core     zapcore.Core
	minLevel zapcore.Level
	notify   AlertNotifier
}

func NewAlertCore(core zapcore.Core, minLevel zapcore.Level, notify AlertNotifier) *AlertCore {
	return &AlertCore{
		core:     core,
		minLevel: minLevel,
		notify:   notify,
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		core:     a.core.With(fields),
		minLevel: a.minLevel,
		notify:   a.notify,
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= a.minLevel && a.notify != nil && hasAlertFlag(fields) {
		msg := FormatAlert(entry, fields)
		go a.notify(msg) // never block the caller on chat delivery
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func hasAlertFlag(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

// FormatAlert renders an entry and its fields as a plain text chat message.
func FormatAlert(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("• %s: %v\n", k, enc.Fields[k]))
	}

	return fmt.Sprintf(
		"🚨 %s Alert\n\nMessage: %s\n\nFields:\n%s\nTime: %s UTC",
		entry.Level.CapitalString(),
		entry.Message,
		sb.String(),
		entry.Time.UTC().Format("2006-01-02 15:04:05"),
	)
}
