package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/username/salary-ticker/internal/calendar"
	"github.com/username/salary-ticker/internal/config"
	"github.com/username/salary-ticker/internal/earnings"
	"github.com/username/salary-ticker/internal/report"
	"github.com/username/salary-ticker/internal/snapshot"
)

// app holds the components every command shares
type app struct {
	settings  earnings.ScheduleSettings
	resolver  *calendar.Resolver
	engine    *earnings.Engine
	formatter *report.Formatter
	closers   []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
}

func initializeApp(cfg *config.Config, opts ...earnings.EngineOption) (*app, error) {
	settings, err := cfg.Salary.Settings()
	if err != nil {
		return nil, err
	}

	a := &app{
		settings:  settings,
		formatter: report.DefaultFormatter(),
	}

	source, err := buildSource(cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.resolver = calendar.NewResolver(source, logger, calendar.WithLookahead(cfg.Calendar.Lookahead))
	a.engine = earnings.NewEngine(a.resolver, logger, opts...)

	return a, nil
}

// buildSource chains primary source, snapshot store and fallback file
func buildSource(cfg *config.Config, a *app) (calendar.Source, error) {
	var primary calendar.Source

	switch cfg.Calendar.Source {
	case "timor":
		logger.Info("Using timor.tech holiday API", zap.String("url", cfg.Calendar.APIURL))
		primary = calendar.NewTimorSource(
			cfg.Calendar.APIURL,
			cfg.Calendar.UserAgent,
			cfg.Calendar.GetTimeout(),
			cfg.Calendar.Retries,
			logger,
		)
	case "file":
		logger.Info("Using holiday file", zap.String("file", cfg.Calendar.FallbackFile))
		return calendar.NewFileSource(cfg.Calendar.FallbackFile, logger), nil
	case "none":
		logger.Info("Holiday calendar disabled, using weekend rule")
		return calendar.NewCompositeSource(logger), nil
	default:
		return nil, fmt.Errorf("unknown calendar source: %s", cfg.Calendar.Source)
	}

	store, err := buildStore(cfg, a)
	if err != nil {
		return nil, err
	}
	if store != nil {
		primary = calendar.NewSnapshotSource(primary, store, logger)
	}

	if cfg.Calendar.FallbackFile != "" {
		primary = calendar.NewCompositeSource(logger, primary, calendar.NewFileSource(cfg.Calendar.FallbackFile, logger))
	}

	return primary, nil
}

func buildStore(cfg *config.Config, a *app) (calendar.SnapshotStore, error) {
	switch cfg.Calendar.SnapshotStore {
	case "", "none":
		return nil, nil
	case "file":
		return snapshot.NewFileStore(cfg.Calendar.SnapshotPath, logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Calendar.SnapshotPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		store, err := snapshot.NewSQLiteStore(cfg.Calendar.SnapshotPath, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown snapshot store: %s", cfg.Calendar.SnapshotStore)
	}
}
