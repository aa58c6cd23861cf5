package service

import (
	"context"
	"fmt"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/strategy"
	"trading-signal-bot/pkg/logger"
)

type TaskExecutor interface {
	Execute(ctx context.Context, jobType strategy.JobType, timeout time.Duration) (strategy.JobResult, error)
}

type taskExecutor struct {
	cfg                *config.Config
	log                *logger.Logger
	executorStrategies map[strategy.JobType]strategy.JobExecutionStrategy
}

func NewTaskExecutor(cfg *config.Config, log *logger.Logger, executorStrategies map[strategy.JobType]strategy.JobExecutionStrategy) TaskExecutor {
	return &taskExecutor{
		cfg:                cfg,
		log:                log,
		executorStrategies: executorStrategies,
	}
}

// Execute runs one iteration of the job. A panic inside the job is turned
// into an error so the loop keeps running.
func (t *taskExecutor) Execute(ctx context.Context, jobType strategy.JobType, timeout time.Duration) (result strategy.JobResult, err error) {
	executor := t.executorStrategies[jobType]
	if executor == nil {
		t.log.ErrorContext(ctx, "Job type not found", logger.StringField("job_type", string(jobType)))
		return strategy.JobResult{ExitCode: strategy.JOB_EXIT_CODE_FAILED, Output: "job type not found"}, fmt.Errorf("job type %s not found", jobType)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", jobType, r)
			result = strategy.JobResult{ExitCode: strategy.JOB_EXIT_CODE_FAILED, Output: err.Error()}
			t.log.ErrorContextWithAlert(ctx, "Job panicked", logger.ErrorField(err), logger.StringField("job_type", string(jobType)))
		}
	}()

	start := time.Now()
	t.log.DebugContext(ctx, "Processing job", logger.StringField("job_type", string(jobType)))

	result, err = executor.Execute(ctx)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to execute job",
			logger.ErrorField(err),
			logger.StringField("job_type", string(jobType)),
			logger.IntField("exit_code", int(result.ExitCode)),
		)
		return result, err
	}

	t.log.DebugContext(ctx, "Job execution completed",
		logger.StringField("job_type", string(jobType)),
		logger.IntField("exit_code", int(result.ExitCode)),
		logger.DurationField("elapsed", time.Since(start)),
	)
	return result, nil
}
