package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDModel gives a table a string UUID primary key assigned on insert.
type UUIDModel struct {
	ID string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
}

func (m *UUIDModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
