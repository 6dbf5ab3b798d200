/*
scheduler.go - Expiring-benefit reminder scheduler

PURPOSE:
  Periodically finds benefits whose current window closes soon with value
  still unused, and hands them to a Notifier.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Each pass is a pure read over all cards (benefits.Service.Reminders)
  - Delivery is the Notifier's job; a failed delivery is logged and the
    next tick tries again

CONFIGURATION:
  - Interval:   How often to check (default: 24 hours)
  - DaysBefore: Remind when a window closes within this many days (default: 7)
  - Enabled:    Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReminderScheduler(svc, benefits.LogNotifier{Logger: logger}, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
)

// ReminderScheduler runs the reminder pass on a ticker.
type ReminderScheduler struct {
	Service    *benefits.Service
	Notifier   benefits.Notifier
	Logger     *slog.Logger
	Interval   time.Duration
	DaysBefore int
	Enabled    bool

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(svc *benefits.Service, notifier benefits.Notifier, logger *slog.Logger) *ReminderScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderScheduler{
		Service:    svc,
		Notifier:   notifier,
		Logger:     logger.With("component", "reminders"),
		Interval:   24 * time.Hour,
		DaysBefore: 7,
		Enabled:    true,
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("scheduler disabled, not starting")
		return
	}
	if rs.running {
		return
	}

	rs.ticker = time.NewTicker(rs.Interval)
	rs.stop = make(chan struct{})
	rs.running = true
	rs.wg.Add(1)

	go rs.run()

	rs.Logger.Info("scheduler started", "interval", rs.Interval, "days_before", rs.DaysBefore)
}

// Stop stops the scheduler and waits for an in-flight pass to finish.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.running {
		return
	}
	rs.ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	rs.running = false
	rs.Logger.Info("scheduler stopped")
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-rs.stop
		cancel()
	}()

	// Run immediately on start
	rs.tick(ctx)

	for {
		select {
		case <-rs.ticker.C:
			rs.tick(ctx)
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReminderScheduler) tick(ctx context.Context) {
	if _, err := rs.RunNow(ctx); err != nil && ctx.Err() == nil {
		rs.Logger.Error("reminder pass failed", "error", err)
	}
}

// RunNow performs one reminder pass and returns the reminders delivered.
func (rs *ReminderScheduler) RunNow(ctx context.Context) ([]benefits.Reminder, error) {
	reminders, err := rs.Service.Reminders(ctx, rs.DaysBefore)
	if err != nil {
		return nil, err
	}
	rs.Logger.Info("reminder pass complete", "count", len(reminders))
	if len(reminders) == 0 || rs.Notifier == nil {
		return reminders, nil
	}
	if err := rs.Notifier.Notify(ctx, reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}
