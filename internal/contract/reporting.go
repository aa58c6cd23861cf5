package contract

import "context"

type ReportingContract interface {
	SendDailyReport(ctx context.Context) error
}

type SystemEventContract interface {
	RecordEvent(ctx context.Context, eventType, severity, title, description string, contextData map[string]interface{})
}
