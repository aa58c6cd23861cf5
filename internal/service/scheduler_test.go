package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"trading-signal-bot/internal/strategy"
	"trading-signal-bot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExecutor struct {
	mu    sync.Mutex
	runs  int
	err   error
	onRun func(runs int)
}

func (c *countingExecutor) Execute(ctx context.Context, jobType strategy.JobType, timeout time.Duration) (strategy.JobResult, error) {
	c.mu.Lock()
	c.runs++
	runs := c.runs
	c.mu.Unlock()
	if c.onRun != nil {
		c.onRun(runs)
	}
	return strategy.JobResult{}, c.err
}

func (c *countingExecutor) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

func runLoop(t *testing.T, s *schedulerService, loop Loop) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, loop) }()
	return cancel, done
}

func TestSchedulerService_Run(t *testing.T) {
	t.Run("interval loop repeats until cancelled", func(t *testing.T) {
		exec := &countingExecutor{}
		s := NewSchedulerService(testConfig(), logger.NewNop(), exec)

		cancel, done := runLoop(t, s, Loop{Job: strategy.JobTypeSignalMonitor, Interval: 5 * time.Millisecond})
		require.Eventually(t, func() bool { return exec.Runs() >= 3 }, time.Second, time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("loop did not stop after cancellation")
		}
	})

	t.Run("errors switch to the retry interval", func(t *testing.T) {
		exec := &countingExecutor{err: errors.New("provider down")}
		s := NewSchedulerService(testConfig(), logger.NewNop(), exec)

		cancel, done := runLoop(t, s, Loop{
			Job:                strategy.JobTypeMarketDataCollector,
			Interval:           time.Hour,
			ErrorRetryInterval: 5 * time.Millisecond,
		})
		require.Eventually(t, func() bool { return exec.Runs() >= 3 }, time.Second, time.Millisecond)
		cancel()
		<-done
	})

	t.Run("cancellation interrupts a long sleep", func(t *testing.T) {
		exec := &countingExecutor{}
		s := NewSchedulerService(testConfig(), logger.NewNop(), exec)

		cancel, done := runLoop(t, s, Loop{Job: strategy.JobTypeSignalMonitor, Interval: time.Hour})
		require.Eventually(t, func() bool { return exec.Runs() == 1 }, time.Second, time.Millisecond)

		start := time.Now()
		cancel()
		<-done
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("scheduled loop waits for the next cron time", func(t *testing.T) {
		exec := &countingExecutor{}
		s := NewSchedulerService(testConfig(), logger.NewNop(), exec)
		s.now = func() time.Time { return time.Date(2026, 3, 2, 7, 59, 59, 999000000, time.UTC) }

		cancel, done := runLoop(t, s, Loop{Job: strategy.JobTypeDailyReport, Schedule: "0 8 * * *"})
		require.Eventually(t, func() bool { return exec.Runs() >= 1 }, time.Second, time.Millisecond)
		cancel()
		<-done
	})

	t.Run("invalid loops are rejected", func(t *testing.T) {
		s := NewSchedulerService(testConfig(), logger.NewNop(), &countingExecutor{})
		assert.Error(t, s.Run(context.Background(), Loop{Job: strategy.JobTypeDailyReport, Schedule: "not a cron"}))
		assert.Error(t, s.Run(context.Background(), Loop{Job: strategy.JobTypeSignalMonitor}))
	})
}

func TestTaskExecutor_Execute(t *testing.T) {
	panicking := &panickingJob{}
	exec := NewTaskExecutor(testConfig(), logger.NewNop(), map[strategy.JobType]strategy.JobExecutionStrategy{
		panicking.GetType(): panicking,
	})

	result, err := exec.Execute(context.Background(), panicking.GetType(), time.Second)
	require.Error(t, err)
	assert.Equal(t, int32(strategy.JOB_EXIT_CODE_FAILED), result.ExitCode)

	_, err = exec.Execute(context.Background(), strategy.JobTypeDailyReport, 0)
	assert.Error(t, err)
}

type panickingJob struct{}

func (p *panickingJob) GetType() strategy.JobType { return strategy.JobTypeSignalMonitor }

func (p *panickingJob) Execute(ctx context.Context) (strategy.JobResult, error) {
	panic("boom")
}
