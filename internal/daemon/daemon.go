package daemon

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/username/salary-ticker/internal/calendar"
	"github.com/username/salary-ticker/internal/earnings"
	"github.com/username/salary-ticker/internal/report"
)

// CalendarService is the part of the resolver the daemon drives
type CalendarService interface {
	Resolve(ctx context.Context, year int) *calendar.Calendar
	Refresh(ctx context.Context, year int) *calendar.Calendar
	Status() calendar.Status
}

// Options configures a Daemon
type Options struct {
	TickInterval    time.Duration
	RefreshInterval time.Duration
	RetryInterval   time.Duration // refresh interval while the calendar is failed
	SystemTray      bool          // Show system tray icon (Windows only)
	Out             io.Writer     // one line per tick, nil to disable
}

// Daemon re-evaluates earnings on every tick and keeps the holiday calendar current
type Daemon struct {
	engine    *earnings.Engine
	calendar  CalendarService
	settings  earnings.ScheduleSettings
	formatter *report.Formatter
	opts      Options
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	trayApp   *TrayApp

	mu          sync.Mutex
	year        int       // year the calendar was last resolved for
	lastRefresh time.Time // engine clock at last resolve
	last        earnings.Results
	ticks       int
}

// NewDaemon creates a new daemon instance
func NewDaemon(engine *earnings.Engine, cal CalendarService, settings earnings.ScheduleSettings, formatter *report.Formatter, opts Options, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 24 * time.Hour
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 5 * time.Minute
	}
	if opts.RetryInterval > opts.RefreshInterval {
		opts.RetryInterval = opts.RefreshInterval
	}

	return &Daemon{
		engine:    engine,
		calendar:  cal,
		settings:  settings,
		formatter: formatter,
		opts:      opts,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start runs the daemon until it is stopped or interrupted
func (d *Daemon) Start() error {
	// Initialize system tray if enabled (Windows only)
	if d.opts.SystemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			return d.runLoop()
		}
		d.trayApp = trayApp
		// Run tray (blocks until Quit)
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	return d.runLoop()
}

// runLoop ticks until the context is cancelled or a signal arrives
func (d *Daemon) runLoop() error {
	d.logger.Info("Daemon started",
		zap.Duration("tick_interval", d.opts.TickInterval),
		zap.Duration("refresh_interval", d.opts.RefreshInterval))

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	d.tick()

	ticker := time.NewTicker(d.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			return nil

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			d.Stop()
			return nil

		case <-ticker.C:
			d.tick()
		}
	}
}

// RunWithTimeout runs the tick loop for a bounded time (for testing)
func (d *Daemon) RunWithTimeout(timeout time.Duration) error {
	d.logger.Info("Daemon started with timeout",
		zap.Duration("timeout", timeout),
		zap.Duration("tick_interval", d.opts.TickInterval))

	timeoutCtx, timeoutCancel := context.WithTimeout(d.ctx, timeout)
	defer timeoutCancel()

	d.tick()

	ticker := time.NewTicker(d.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeoutCtx.Done():
			d.logger.Info("Daemon stopped (timeout reached)")
			return nil

		case <-ticker.C:
			d.tick()
		}
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// tick keeps the calendar current and recomputes the results
func (d *Daemon) tick() earnings.Results {
	d.syncCalendar()

	res := d.engine.Calculate(d.settings)

	d.mu.Lock()
	d.last = res
	d.ticks++
	d.mu.Unlock()

	d.logger.Debug("Tick",
		zap.Float64("today", res.TodayEarnings),
		zap.Float64("progress", res.TodayProgress),
		zap.Stringer("phase", res.Phase))

	if d.opts.Out != nil {
		fmt.Fprintf(d.opts.Out, "%s\n", report.Line(d.formatter, res))
	}
	if d.trayApp != nil {
		d.trayApp.Update(res)
	}

	return res
}

// syncCalendar resolves on year change and refreshes once the refresh interval
// has elapsed, or the retry interval while the calendar is failed
func (d *Daemon) syncCalendar() {
	now := d.engine.Now()
	failed := d.calendar.Status().Failed

	interval := d.opts.RefreshInterval
	if failed {
		interval = d.opts.RetryInterval
	}

	d.mu.Lock()
	prevYear := d.year
	stale := !d.lastRefresh.IsZero() && now.Sub(d.lastRefresh) >= interval
	d.mu.Unlock()

	switch {
	case prevYear != now.Year():
		if prevYear != 0 {
			d.logger.Info("Year changed, resolving holiday calendar",
				zap.Int("from", prevYear),
				zap.Int("to", now.Year()))
		}
		d.calendar.Resolve(d.ctx, now.Year())
	case stale:
		d.logger.Info("Refreshing holiday calendar",
			zap.Int("year", now.Year()),
			zap.Bool("retry", failed))
		d.calendar.Refresh(d.ctx, now.Year())
	default:
		return
	}

	d.mu.Lock()
	d.year = now.Year()
	d.lastRefresh = now
	d.mu.Unlock()
}

// RefreshNow re-fetches the holiday calendar (called from tray menu)
func (d *Daemon) RefreshNow() {
	now := d.engine.Now()
	d.logger.Info("Manual holiday refresh triggered", zap.Int("year", now.Year()))
	d.calendar.Refresh(d.ctx, now.Year())

	d.mu.Lock()
	d.year = now.Year()
	d.lastRefresh = now
	d.mu.Unlock()

	if d.trayApp != nil {
		status := d.calendar.Status()
		d.trayApp.ShowNotification("Holidays", report.CalendarStatus(status))
	}
}

// Last returns the most recent results and whether any tick has run
func (d *Daemon) Last() (earnings.Results, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.ticks > 0
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	res, ticks := d.last, d.ticks
	d.mu.Unlock()

	status := map[string]interface{}{
		"running":          d.ctx.Err() == nil,
		"tick_interval":    d.opts.TickInterval.String(),
		"refresh_interval": d.opts.RefreshInterval.String(),
		"retry_interval":   d.opts.RetryInterval.String(),
		"ticks":            ticks,
		"calendar":         report.CalendarStatus(d.calendar.Status()),
	}

	if ticks > 0 {
		status["today"] = map[string]interface{}{
			"date":             res.Now.Format("2006-01-02"),
			"earned":           d.formatter.Money(res.TodayEarnings),
			"progress_percent": res.TodayProgress,
			"phase":            res.Phase.String(),
			"work_end":         report.WorkEnd(res.TimeUntilWorkEnd),
		}
	}

	return status
}
