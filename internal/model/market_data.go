package model

import "time"

// MarketBar is one OHLCV candle. Indicator columns stay empty until something computes them.
type MarketBar struct {
	UUIDModel
	Symbol     string    `gorm:"column:symbol;type:varchar(20);not null;index:idx_market_data_symbol_timeframe,priority:1;uniqueIndex:uq_market_data_bar,priority:1" json:"symbol"`
	Timeframe  string    `gorm:"column:timeframe;type:varchar(5);not null;index:idx_market_data_symbol_timeframe,priority:2;uniqueIndex:uq_market_data_bar,priority:2" json:"timeframe"`
	Timestamp  time.Time `gorm:"column:timestamp;not null;index:idx_market_data_timestamp;uniqueIndex:uq_market_data_bar,priority:3" json:"timestamp"`
	Open       float64   `gorm:"column:open;not null" json:"open"`
	High       float64   `gorm:"column:high;not null" json:"high"`
	Low        float64   `gorm:"column:low;not null" json:"low"`
	Close      float64   `gorm:"column:close;not null" json:"close"`
	Volume     float64   `gorm:"column:volume;default:0" json:"volume"`
	RSI        *float64  `gorm:"column:rsi" json:"rsi"`
	MACD       *float64  `gorm:"column:macd" json:"macd"`
	MACDSignal *float64  `gorm:"column:macd_signal" json:"macd_signal"`
	BBUpper    *float64  `gorm:"column:bb_upper" json:"bb_upper"`
	BBLower    *float64  `gorm:"column:bb_lower" json:"bb_lower"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MarketBar) TableName() string {
	return "market_data"
}
