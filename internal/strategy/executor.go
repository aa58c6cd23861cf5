package strategy

import (
	"context"
)

const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_FAILED          = 500
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
)

type JobType string

const (
	JobTypeMarketDataCollector JobType = "market_data_collector"
	JobTypeSignalMonitor       JobType = "signal_monitor"
	JobTypeDailyReport         JobType = "daily_report"
)

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

// JobExecutionStrategy is one iteration of a background loop.
type JobExecutionStrategy interface {
	Execute(ctx context.Context) (JobResult, error)
	GetType() JobType
}
