package repository

import (
	"context"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/pkg/utils"

	"gorm.io/gorm"
)

type SystemEventRepository interface {
	Create(ctx context.Context, event *model.SystemEvent, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.SystemEvent, error)
}

type systemEventRepository struct {
	db *gorm.DB
}

func NewSystemEventRepository(db *gorm.DB) SystemEventRepository {
	return &systemEventRepository{db: db}
}

func (r *systemEventRepository) Create(ctx context.Context, event *model.SystemEvent, opts ...utils.DBOption) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = utils.TimeNowUTC()
	}
	db := utils.ApplyOptions(r.db, opts...)
	return db.WithContext(ctx).Create(event).Error
}

func (r *systemEventRepository) GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.SystemEvent, error) {
	db := utils.ApplyOptions(r.db, opts...)
	var event model.SystemEvent
	if err := db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}
