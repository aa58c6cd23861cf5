package model

import "time"

const (
	PeriodDaily   = "DAILY"
	PeriodWeekly  = "WEEKLY"
	PeriodMonthly = "MONTHLY"
)

type StrategyPerformance struct {
	UUIDModel
	StrategyName       string    `gorm:"column:strategy_name;type:varchar(50);not null;uniqueIndex:uq_strategy_performance_period" json:"strategy_name"`
	Date               time.Time `gorm:"column:date;not null;uniqueIndex:uq_strategy_performance_period" json:"date"`
	PeriodType         string    `gorm:"column:period_type;type:varchar(10);not null;uniqueIndex:uq_strategy_performance_period" json:"period_type"`
	SignalsGenerated   int       `gorm:"column:signals_generated;default:0" json:"signals_generated"`
	TradesExecuted     int       `gorm:"column:trades_executed;default:0" json:"trades_executed"`
	TradesWon          int       `gorm:"column:trades_won;default:0" json:"trades_won"`
	TradesLost         int       `gorm:"column:trades_lost;default:0" json:"trades_lost"`
	TotalPips          float64   `gorm:"column:total_pips;default:0" json:"total_pips"`
	TotalPnL           float64   `gorm:"column:total_pnl;default:0" json:"total_pnl"`
	WinRate            float64   `gorm:"column:win_rate;default:0" json:"win_rate"`
	AvgRiskReward      float64   `gorm:"column:avg_risk_reward;default:0" json:"avg_risk_reward"`
	AvgConfluenceScore float64   `gorm:"column:avg_confluence_score;default:0" json:"avg_confluence_score"`
	MaxDrawdown        float64   `gorm:"column:max_drawdown;default:0" json:"max_drawdown"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StrategyPerformance) TableName() string {
	return "strategy_performance"
}
