package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/salary-ticker/internal/api"
	"github.com/username/salary-ticker/internal/calendar"
	"github.com/username/salary-ticker/internal/daemon"
	"github.com/username/salary-ticker/internal/earnings"
	"github.com/username/salary-ticker/internal/report"
	"github.com/username/salary-ticker/pkg/dateutil"
)

const atLayout = "2006-01-02 15:04"

func statusCmd() *cobra.Command {
	var asJSON bool
	var at string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show earnings and countdowns for now",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []earnings.EngineOption
			if at != "" {
				fixed, err := time.ParseInLocation(atLayout, at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at value (use %q): %w", atLayout, err)
				}
				opts = append(opts, earnings.WithClock(func() time.Time { return fixed }))
			}

			a, err := initializeApp(cfg, opts...)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			a.resolver.Resolve(ctx, a.engine.Now().Year())
			res := a.engine.Calculate(a.settings)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(api.NewResultsDTO(res))
			}
			return report.Write(cmd.OutOrStdout(), a.formatter, res)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at a local time instead of now ("+atLayout+")")

	return cmd
}

func watchCmd() *cobra.Command {
	var tray bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print live earnings on every tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			d := daemon.NewDaemon(a.engine, a.resolver, a.settings, a.formatter, daemon.Options{
				TickInterval:    cfg.Daemon.GetTickInterval(),
				RefreshInterval: cfg.Daemon.GetRefreshInterval(),
				RetryInterval:   cfg.Daemon.GetRetryInterval(),
				SystemTray:      tray || cfg.Daemon.SystemTray,
				Out:             cmd.OutOrStdout(),
			}, logger)

			return d.Start()
		},
	}

	cmd.Flags().BoolVar(&tray, "tray", false, "Show a system tray icon (Windows only)")

	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve results over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.resolver.Resolve(ctx, a.engine.Now().Year())
			go refreshLoop(ctx, a, cfg.Daemon.GetRefreshInterval(), cfg.Daemon.GetRetryInterval())

			handler := api.NewHandler(a.engine, a.resolver, a.settings, logger)
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(handler, cfg.Server.AllowedOrigins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server listening", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
				logger.Info("Shutting down HTTP server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")

	return cmd
}

// refreshLoop re-fetches the current year on every interval, sooner while the
// calendar is failed
func refreshLoop(ctx context.Context, a *app, interval, retry time.Duration) {
	timer := time.NewTimer(nextRefresh(a, interval, retry))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			a.resolver.Refresh(ctx, a.engine.Now().Year())
			timer.Reset(nextRefresh(a, interval, retry))
		}
	}
}

// nextRefresh waits the short retry interval while the calendar is failed
func nextRefresh(a *app, interval, retry time.Duration) time.Duration {
	if a.resolver.Status().Failed && retry < interval {
		return retry
	}
	return interval
}

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect the holiday calendar",
	}

	cmd.AddCommand(calendarShowCmd())
	cmd.AddCommand(calendarNextCmd())

	return cmd
}

func calendarShowCmd() *cobra.Command {
	var year int
	var refresh bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List holiday and make-up workday records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if year == 0 {
				year = a.engine.Now().Year()
			}

			var cal *calendar.Calendar
			if refresh {
				cal = a.resolver.Refresh(cmd.Context(), year)
			} else {
				cal = a.resolver.Resolve(cmd.Context(), year)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Calendar: %s\n\n", report.CalendarStatus(a.resolver.Status()))
			if cal.Len() == 0 {
				fmt.Fprintln(out, "No records")
				return nil
			}

			fmt.Fprintln(out, "  Date         | Type | Wage | Name")
			fmt.Fprintln(out, "---------------+------+------+----------------")
			for _, rec := range cal.Records() {
				kind := "work"
				if rec.IsRestDay {
					kind = "rest"
				}
				fmt.Fprintf(out, "  %s   | %-4s | %4d | %s\n", rec.Date, kind, rec.Wage, rec.Name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year to show (default: current year)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Drop the cache and fetch again")

	return cmd
}

func calendarNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next holiday and the time until the break",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			now := a.engine.Now()
			cal := a.resolver.Resolve(cmd.Context(), now.Year())
			out := cmd.OutOrStdout()

			if next, ok := cal.NextHoliday(now); ok {
				fmt.Fprintf(out, "Next holiday: %s (%s)\n", next.Name, dateutil.DateKey(next.Date))
			}
			fmt.Fprintf(out, "Break starts: %s\n",
				report.NextHoliday(a.engine.TimeUntilNextHoliday(a.settings), a.resolver.Status().Loaded))
			return nil
		},
	}
}
