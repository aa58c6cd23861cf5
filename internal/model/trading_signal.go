package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SignalStatusActive  = "ACTIVE"
	SignalStatusTaken   = "TAKEN"
	SignalStatusSkipped = "SKIPPED"
	SignalStatusExpired = "EXPIRED"
)

const (
	SignalStrengthWeak   = "WEAK"
	SignalStrengthMedium = "MEDIUM"
	SignalStrengthStrong = "STRONG"
)

type TradingSignal struct {
	UUIDModel
	Symbol            string         `gorm:"column:symbol;type:varchar(20);not null;index:idx_trading_signals_symbol" json:"symbol"`
	SignalType        string         `gorm:"column:signal_type;type:varchar(10);not null" json:"signal_type"`
	StrategyName      string         `gorm:"column:strategy_name;type:varchar(50);not null" json:"strategy_name"`
	EntryPrice        float64        `gorm:"column:entry_price;not null" json:"entry_price"`
	StopLoss          float64        `gorm:"column:stop_loss;not null" json:"stop_loss"`
	TakeProfit        float64        `gorm:"column:take_profit;not null" json:"take_profit"`
	ConfluenceScore   float64        `gorm:"column:confluence_score;not null" json:"confluence_score"`
	Strength          string         `gorm:"column:strength;type:varchar(10);not null" json:"strength"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime;index:idx_trading_signals_created_at" json:"created_at"`
	ExpiresAt         *time.Time     `gorm:"column:expires_at" json:"expires_at"`
	Status            string         `gorm:"column:status;type:varchar(20);default:ACTIVE;index:idx_trading_signals_status" json:"status"`
	SentToTelegram    bool           `gorm:"column:sent_to_telegram;default:false" json:"sent_to_telegram"`
	IsSecondarySignal bool           `gorm:"column:is_secondary_signal;default:false" json:"is_secondary_signal"`
	IndicatorsData    datatypes.JSON `gorm:"column:indicators_data;type:jsonb" json:"indicators_data"`
}

func (TradingSignal) TableName() string {
	return "trading_signals"
}
