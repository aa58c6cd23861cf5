package model

import (
	"time"

	"gorm.io/datatypes"
)

type UserInteraction struct {
	UUIDModel
	UserID          string         `gorm:"column:user_id;type:varchar(50);not null;index:idx_user_interactions_user_id" json:"user_id"`
	InteractionType string         `gorm:"column:interaction_type;type:varchar(50);not null;index:idx_user_interactions_type" json:"interaction_type"`
	Command         *string        `gorm:"column:command;type:varchar(100)" json:"command"`
	Message         *string        `gorm:"column:message;type:text" json:"message"`
	Response        *string        `gorm:"column:response;type:text" json:"response"`
	ContextData     datatypes.JSON `gorm:"column:context_data;type:jsonb" json:"context_data"`
	OccurredAt      time.Time      `gorm:"column:occurred_at;not null;index:idx_user_interactions_occurred_at" json:"occurred_at"`
}

func (UserInteraction) TableName() string {
	return "user_interactions"
}

// AllModels lists every persisted table, used by tests to build a schema.
func AllModels() []interface{} {
	return []interface{}{
		&TradingSignal{},
		&Trade{},
		&StrategyPerformance{},
		&SystemEvent{},
		&MarketBar{},
		&UserInteraction{},
	}
}
