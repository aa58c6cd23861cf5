package strategy

import (
	"math/rand"
	"sync"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/internal/model"

	"github.com/shopspring/decimal"
)

// SignalGenerator produces placeholder signals: the confluence score and the
// direction are random, SL/TP sit at fixed offsets from the entry price.
type SignalGenerator struct {
	cfg  config.Strategy
	gate *SessionGate

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSignalGenerator(cfg config.Strategy, gate *SessionGate, rnd *rand.Rand) *SignalGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SignalGenerator{
		cfg:  cfg,
		gate: gate,
		rnd:  rnd,
	}
}

func (g *SignalGenerator) Gate() *SessionGate {
	return g.gate
}

// Generate returns a signal for symbol at entry, or the reason none was produced.
// Rejections are not errors.
func (g *SignalGenerator) Generate(symbol string, entry float64, source string) dto.GenerateResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	result := dto.GenerateResult{MaxDailySignals: g.gate.MaxDailySignals()}

	now := g.gate.Now()
	if reason := g.gate.CheckAt(now); reason != dto.RejectNone {
		result.Reason = reason
		result.SignalsToday = g.gate.SignalsToday()
		return result
	}

	score := g.cfg.ScoreMin + g.rnd.Float64()*(g.cfg.ScoreMax-g.cfg.ScoreMin)
	if score < g.cfg.MinConfluenceScore {
		result.Reason = dto.RejectLowConfluence
		result.SignalsToday = g.gate.SignalsToday()
		return result
	}

	signalType := dto.SignalBuy
	if g.rnd.Intn(2) == 1 {
		signalType = dto.SignalSell
	}

	entryPrice := decimal.NewFromFloat(entry)
	slOffset := decimal.NewFromFloat(g.cfg.StopLossOffset)
	tpOffset := decimal.NewFromFloat(g.cfg.TakeProfitOffset)

	stopLoss := entryPrice.Sub(slOffset)
	takeProfit := entryPrice.Add(tpOffset)
	if signalType == dto.SignalSell {
		stopLoss = entryPrice.Add(slOffset)
		takeProfit = entryPrice.Sub(tpOffset)
	}

	g.gate.Record(now)

	result.SignalsToday = g.gate.SignalsToday()
	result.Signal = &dto.Signal{
		Symbol:          symbol,
		Type:            signalType,
		EntryPrice:      entryPrice,
		StopLoss:        stopLoss,
		TakeProfit:      takeProfit,
		ConfluenceScore: score,
		Strength:        StrengthFor(score),
		Strategy:        g.cfg.ActiveStrategy,
		Session:         g.gate.ActiveSession(now.Hour()),
		Source:          source,
		CreatedAt:       now,
		ExpiresAt:       now.Add(g.cfg.SignalExpiry),
	}
	return result
}

// StrengthFor buckets a confluence score.
func StrengthFor(score float64) string {
	switch {
	case score >= 85:
		return model.SignalStrengthStrong
	case score >= 75:
		return model.SignalStrengthMedium
	default:
		return model.SignalStrengthWeak
	}
}
