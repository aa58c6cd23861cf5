package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventSystemStartup   = "SYSTEM_STARTUP"
	EventSystemShutdown  = "SYSTEM_SHUTDOWN"
	EventDataFeedError   = "DATA_FEED_ERROR"
	EventSignalGenerated = "SIGNAL_GENERATED"
	EventDailyReport     = "DAILY_REPORT"
)

const (
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

type SystemEvent struct {
	UUIDModel
	EventType   string         `gorm:"column:event_type;type:varchar(50);not null;index:idx_system_events_type" json:"event_type"`
	Title       string         `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Severity    string         `gorm:"column:severity;type:varchar(20);default:INFO;index:idx_system_events_severity" json:"severity"`
	ContextData datatypes.JSON `gorm:"column:context_data;type:jsonb" json:"context_data"`
	OccurredAt  time.Time      `gorm:"column:occurred_at;not null;index:idx_system_events_occurred_at" json:"occurred_at"`
	ResolvedAt  *time.Time     `gorm:"column:resolved_at" json:"resolved_at"`
	Status      string         `gorm:"column:status;type:varchar(20);default:ACTIVE" json:"status"`
}

func (SystemEvent) TableName() string {
	return "system_events"
}
