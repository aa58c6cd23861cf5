package repository

import (
	"context"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MarketDataRepository interface {
	SaveBars(ctx context.Context, bars []model.MarketBar, opts ...utils.DBOption) (int64, error)
}

type marketDataRepository struct {
	db *gorm.DB
}

func NewMarketDataRepository(db *gorm.DB) MarketDataRepository {
	return &marketDataRepository{db: db}
}

// SaveBars inserts bars, skipping any (symbol, timeframe, timestamp) already stored.
func (r *marketDataRepository) SaveBars(ctx context.Context, bars []model.MarketBar, opts ...utils.DBOption) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	db := utils.ApplyOptions(r.db, opts...)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "timeframe"}, {Name: "timestamp"}},
		DoNothing: true,
	}).CreateInBatches(bars, 100)
	return result.RowsAffected, result.Error
}

