package model

import "time"

const (
	TradeStatusOpen   = "OPEN"
	TradeStatusClosed = "CLOSED"
)

type Trade struct {
	UUIDModel
	SignalID         *string        `gorm:"column:signal_id;type:varchar(36)" json:"signal_id"`
	Signal           *TradingSignal `gorm:"foreignKey:SignalID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
	Symbol           string         `gorm:"column:symbol;type:varchar(20);not null;index:idx_trades_symbol" json:"symbol"`
	TradeType        string         `gorm:"column:trade_type;type:varchar(10);not null" json:"trade_type"`
	EntryPrice       float64        `gorm:"column:entry_price;not null" json:"entry_price"`
	ExitPrice        *float64       `gorm:"column:exit_price" json:"exit_price"`
	Quantity         float64        `gorm:"column:quantity;not null;default:1" json:"quantity"`
	StopLoss         float64        `gorm:"column:stop_loss" json:"stop_loss"`
	TakeProfit       float64        `gorm:"column:take_profit" json:"take_profit"`
	PipsGained       *float64       `gorm:"column:pips_gained" json:"pips_gained"`
	PnL              *float64       `gorm:"column:pnl" json:"pnl"`
	Commission       float64        `gorm:"column:commission;default:0" json:"commission"`
	EnteredAt        time.Time      `gorm:"column:entered_at;not null;index:idx_trades_entered_at" json:"entered_at"`
	ExitedAt         *time.Time     `gorm:"column:exited_at" json:"exited_at"`
	Status           string         `gorm:"column:status;type:varchar(20);default:OPEN;index:idx_trades_status" json:"status"`
	Outcome          *string        `gorm:"column:outcome;type:varchar(20)" json:"outcome"`
	UserConfirmed    bool           `gorm:"column:user_confirmed;default:false" json:"user_confirmed"`
	ConfirmationTime *time.Time     `gorm:"column:confirmation_time" json:"confirmation_time"`
}

func (Trade) TableName() string {
	return "trades"
}
