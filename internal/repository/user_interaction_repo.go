package repository

import (
	"context"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/pkg/utils"

	"gorm.io/gorm"
)

type UserInteractionRepository interface {
	Create(ctx context.Context, interaction *model.UserInteraction, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.UserInteraction, error)
}

type userInteractionRepository struct {
	db *gorm.DB
}

func NewUserInteractionRepository(db *gorm.DB) UserInteractionRepository {
	return &userInteractionRepository{db: db}
}

func (r *userInteractionRepository) Create(ctx context.Context, interaction *model.UserInteraction, opts ...utils.DBOption) error {
	if interaction.OccurredAt.IsZero() {
		interaction.OccurredAt = utils.TimeNowUTC()
	}
	db := utils.ApplyOptions(r.db, opts...)
	return db.WithContext(ctx).Create(interaction).Error
}

func (r *userInteractionRepository) GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.UserInteraction, error) {
	db := utils.ApplyOptions(r.db, opts...)
	var interaction model.UserInteraction
	if err := db.WithContext(ctx).Where("id = ?", id).First(&interaction).Error; err != nil {
		return nil, err
	}
	return &interaction, nil
}
