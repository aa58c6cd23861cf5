package strategy

import (
	"context"
	"fmt"
	"trading-signal-bot/internal/contract"
	"trading-signal-bot/pkg/logger"
)

type DailyReportStrategy struct {
	logger            *logger.Logger
	reportingContract contract.ReportingContract
}

func NewDailyReportStrategy(logger *logger.Logger, reportingContract contract.ReportingContract) JobExecutionStrategy {
	return &DailyReportStrategy{
		logger:            logger,
		reportingContract: reportingContract,
	}
}

func (s *DailyReportStrategy) GetType() JobType {
	return JobTypeDailyReport
}

func (s *DailyReportStrategy) Execute(ctx context.Context) (JobResult, error) {
	s.logger.InfoContext(ctx, "Generating daily report")
	if err := s.reportingContract.SendDailyReport(ctx); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to send daily report: %v", err)}, err
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: "daily report sent"}, nil
}
