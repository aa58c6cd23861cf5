package repository

import (
	"context"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StrategyPerformanceRepository interface {
	Upsert(ctx context.Context, perf *model.StrategyPerformance, opts ...utils.DBOption) error
}

type strategyPerformanceRepository struct {
	db *gorm.DB
}

func NewStrategyPerformanceRepository(db *gorm.DB) StrategyPerformanceRepository {
	return &strategyPerformanceRepository{db: db}
}

// Upsert writes one snapshot per (strategy, date, period); a rerun for the same key overwrites the counters.
func (r *strategyPerformanceRepository) Upsert(ctx context.Context, perf *model.StrategyPerformance, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db, opts...)
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "strategy_name"}, {Name: "date"}, {Name: "period_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"signals_generated", "trades_executed", "trades_won", "trades_lost",
			"total_pips", "total_pnl", "win_rate", "avg_risk_reward",
			"avg_confluence_score", "max_drawdown",
		}),
	}).Create(perf).Error
}

