package strategy

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/utils"
)

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// SessionGate owns the daily counter and last-signal timestamp shared by the
// autonomous monitor and the manual /generate path. Hours are UTC.
type SessionGate struct {
	mu              sync.Mutex
	now             Clock
	windows         []config.SessionWindow
	maxDailySignals int
	minInterval     time.Duration

	// counterDay is the UTC date signalsToday belongs to; prevDay keeps the
	// count of the day before so the morning report can still read it.
	counterDay     time.Time
	signalsToday   int
	prevDay        time.Time
	prevCount      int
	lastSignalTime time.Time
}

func NewSessionGate(cfg config.Strategy, now Clock) *SessionGate {
	if now == nil {
		now = utils.TimeNowUTC
	}
	return &SessionGate{
		now:             now,
		windows:         cfg.Sessions,
		maxDailySignals: cfg.MaxDailySignals,
		minInterval:     cfg.MinSignalInterval,
	}
}

func (g *SessionGate) Now() time.Time {
	return g.now().UTC()
}

// IsOpenAt reports whether hour falls inside any window, each window being [start, end).
func (g *SessionGate) IsOpenAt(hour int) bool {
	for _, w := range g.windows {
		if hour >= w.StartHour && hour < w.EndHour {
			return true
		}
	}
	return false
}

func (g *SessionGate) IsSessionActive() bool {
	return g.IsOpenAt(g.Now().Hour())
}

// ActiveSession names the open windows at hour. Several open windows are
// reported as an overlap; the result is informational only.
func (g *SessionGate) ActiveSession(hour int) string {
	var open []string
	for _, w := range g.windows {
		if hour >= w.StartHour && hour < w.EndHour {
			open = append(open, w.Name)
		}
	}
	switch len(open) {
	case 0:
		return ""
	case 1:
		return open[0]
	default:
		return strings.Join(open, "/") + " Overlap"
	}
}

// Sessions describes every window with the next opening relative to hour.
func (g *SessionGate) Sessions(hour int) []dto.SessionInfo {
	infos := make([]dto.SessionInfo, 0, len(g.windows))
	for _, w := range g.windows {
		next := fmt.Sprintf("%02d:00 UTC", w.StartHour)
		if hour >= w.StartHour {
			next += " tomorrow"
		}
		infos = append(infos, dto.SessionInfo{
			Name:      w.Name,
			StartHour: w.StartHour,
			EndHour:   w.EndHour,
			NextOpen:  next,
		})
	}
	return infos
}

// Check evaluates the generation rules at now without consuming a slot.
// The daily counter is reset lazily here once the date has moved on.
func (g *SessionGate) Check() dto.RejectReason {
	return g.CheckAt(g.Now())
}

func (g *SessionGate) CheckAt(now time.Time) dto.RejectReason {
	g.mu.Lock()
	defer g.mu.Unlock()

	now = now.UTC()
	g.rollover(now)
	if !g.IsOpenAt(now.Hour()) {
		return dto.RejectSessionClosed
	}
	if g.signalsToday >= g.maxDailySignals {
		return dto.RejectDailyLimit
	}
	if !g.lastSignalTime.IsZero() && now.Sub(g.lastSignalTime) < g.minInterval {
		return dto.RejectThrottled
	}
	return dto.RejectNone
}

// Record consumes one daily slot at the given time.
func (g *SessionGate) Record(at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	at = at.UTC()
	g.rollover(at)
	g.signalsToday++
	g.lastSignalTime = at
}

// rollover moves the counter onto now's date. Callers hold mu.
func (g *SessionGate) rollover(now time.Time) {
	day := utils.StartOfDay(now)
	if g.counterDay.IsZero() {
		g.counterDay = day
		return
	}
	if !utils.IsNewerDay(now, g.counterDay) {
		return
	}
	g.prevDay, g.prevCount = g.counterDay, g.signalsToday
	if !g.prevDay.Equal(day.AddDate(0, 0, -1)) {
		g.prevDay, g.prevCount = day.AddDate(0, 0, -1), 0
	}
	g.counterDay = day
	g.signalsToday = 0
}

// SignalsToday reports the counter for the current date.
func (g *SessionGate) SignalsToday() int {
	return g.SignalsOn(g.Now())
}

// SignalsOn reports how many signals were recorded on date's UTC day. Only
// the current and the previous day are retained; older dates report zero.
func (g *SessionGate) SignalsOn(date time.Time) int {
	now := g.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover(now)

	day := utils.StartOfDay(date)
	switch {
	case day.Equal(g.counterDay):
		return g.signalsToday
	case day.Equal(g.prevDay):
		return g.prevCount
	default:
		return 0
	}
}

func (g *SessionGate) MaxDailySignals() int {
	return g.maxDailySignals
}

// LastSignalTime returns nil when no signal has been generated yet.
func (g *SessionGate) LastSignalTime() *time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastSignalTime.IsZero() {
		return nil
	}
	t := g.lastSignalTime
	return &t
}
