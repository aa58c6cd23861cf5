package repository

import (
	"context"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/pkg/utils"

	"gorm.io/gorm"
)

type TradeRepository interface {
	Create(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.Trade, error)
}

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) Create(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db, opts...)
	return db.WithContext(ctx).Omit("Signal").Create(trade).Error
}

func (r *tradeRepository) GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.Trade, error) {
	db := utils.ApplyOptions(r.db, opts...)
	var trade model.Trade
	if err := db.WithContext(ctx).Where("id = ?", id).First(&trade).Error; err != nil {
		return nil, err
	}
	return &trade, nil
}
