package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gym_crm_backend/pkg/utils"
)

// RunFunc is one cycle of a scheduled job.
type RunFunc func(ctx context.Context) error

// CronTriggerConfig holds configuration for a daily trigger
type CronTriggerConfig struct {
	// Name identifies the job in logs and lock keys
	Name string

	// Hour and Minute are the local time of day to run at (24h format)
	Hour   int
	Minute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration

	// JobTimeout bounds a single run
	JobTimeout time.Duration
}

// CronTrigger runs a job once a day at a fixed local time.
type CronTrigger struct {
	config CronTriggerConfig
	run    RunFunc
	locker Locker
	logger zerolog.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // Track which date we last ran for
}

// NewCronTrigger creates a new cron trigger. A nil locker means a LocalLocker.
func NewCronTrigger(config CronTriggerConfig, run RunFunc, locker Locker) *CronTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = 30 * time.Second
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 10 * time.Minute
	}
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &CronTrigger{
		config: config,
		run:    run,
		locker: locker,
		logger: utils.Component("cron").With().Str("job", config.Name).Logger(),
		now:    time.Now,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info().
		Int("hour", c.config.Hour).
		Int("minute", c.config.Minute).
		Dur("check_interval", c.config.CheckInterval).
		Msg("Cron trigger started")
	return nil
}

// Stop stops the cron trigger and waits for an in-flight run to finish or ctx to expire.
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info().Msg("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the job if the configured time has come and it has not run today.
func (c *CronTrigger) checkAndTrigger(ctx context.Context) bool {
	now := c.now()
	currentDate := now.Format("2006-01-02")

	c.mu.Lock()
	if c.lastRunDate == currentDate {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	if now.Hour() != c.config.Hour || now.Minute() != c.config.Minute {
		return false
	}

	c.mu.Lock()
	c.lastRunDate = currentDate
	c.mu.Unlock()

	acquired, err := c.locker.TryLock(ctx, "job:"+c.config.Name+":"+currentDate, 23*time.Hour)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Job lock unavailable, running without it")
	} else if !acquired {
		c.logger.Info().Str("date", currentDate).Msg("Job already claimed by another instance")
		return false
	}

	c.execute(ctx)
	return true
}

// execute runs one cycle with a timeout. Errors and panics are logged, never propagated.
func (c *CronTrigger) execute(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, c.config.JobTimeout)
	defer cancel()

	started := time.Now()
	c.logger.Info().Msg("Job started")

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return c.run(runCtx)
	}()
	if err != nil {
		c.logger.Error().Err(err).Dur("duration", time.Since(started)).Msg("Job failed")
		return
	}
	c.logger.Info().Dur("duration", time.Since(started)).Msg("Job finished")
}
