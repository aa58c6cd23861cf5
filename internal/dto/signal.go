package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

const (
	SignalSourceAutonomous = "autonomous"
	SignalSourceManual     = "manual"
)

var pipFactor = decimal.NewFromInt(10000)

type Signal struct {
	ID              string
	Symbol          string
	Type            SignalType
	EntryPrice      decimal.Decimal
	StopLoss        decimal.Decimal
	TakeProfit      decimal.Decimal
	ConfluenceScore float64
	Strength        string
	Strategy        string
	Session         string
	Source          string
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// Risk is the absolute distance from entry to stop loss.
func (s *Signal) Risk() decimal.Decimal {
	return s.EntryPrice.Sub(s.StopLoss).Abs()
}

// Reward is the absolute distance from entry to take profit.
func (s *Signal) Reward() decimal.Decimal {
	return s.TakeProfit.Sub(s.EntryPrice).Abs()
}

func (s *Signal) RiskReward() decimal.Decimal {
	if s.Risk().IsZero() {
		return decimal.Zero
	}
	return s.Reward().Div(s.Risk())
}

// PipsPotential expresses the reward in pips of a four-decimal quote.
func (s *Signal) PipsPotential() decimal.Decimal {
	return s.Reward().Mul(pipFactor)
}

type RejectReason string

const (
	RejectNone          RejectReason = ""
	RejectSessionClosed RejectReason = "session_closed"
	RejectDailyLimit    RejectReason = "daily_limit"
	RejectThrottled     RejectReason = "throttled"
	RejectLowConfluence RejectReason = "low_confluence"
)

// GenerateResult carries either a signal or the reason none was produced.
type GenerateResult struct {
	Signal          *Signal
	Reason          RejectReason
	SignalsToday    int
	MaxDailySignals int
}

func (r GenerateResult) Generated() bool {
	return r.Signal != nil
}
