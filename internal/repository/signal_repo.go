package repository

import (
	"context"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/pkg/utils"

	"gorm.io/gorm"
)

type SignalRepository interface {
	Create(ctx context.Context, signal *model.TradingSignal, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.TradingSignal, error)
	TransitionStatus(ctx context.Context, id string, from, to string, opts ...utils.DBOption) (bool, error)
	MarkSent(ctx context.Context, id string, opts ...utils.DBOption) error
}

type signalRepository struct {
	db *gorm.DB
}

func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

func (r *signalRepository) Create(ctx context.Context, signal *model.TradingSignal, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db, opts...)
	return db.WithContext(ctx).Create(signal).Error
}

func (r *signalRepository) GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.TradingSignal, error) {
	db := utils.ApplyOptions(r.db, opts...)
	var signal model.TradingSignal
	if err := db.WithContext(ctx).Where("id = ?", id).First(&signal).Error; err != nil {
		return nil, err
	}
	return &signal, nil
}

// TransitionStatus moves a signal to status "to" only while it is still in "from".
// It reports false when no row was in the expected state.
func (r *signalRepository) TransitionStatus(ctx context.Context, id string, from, to string, opts ...utils.DBOption) (bool, error) {
	db := utils.ApplyOptions(r.db, opts...)
	result := db.WithContext(ctx).Model(&model.TradingSignal{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *signalRepository) MarkSent(ctx context.Context, id string, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db, opts...)
	return db.WithContext(ctx).Model(&model.TradingSignal{}).Where("id = ?", id).Update("sent_to_telegram", true).Error
}
