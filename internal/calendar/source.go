package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrCalendarUnavailable is returned when a source cannot produce a year
	ErrCalendarUnavailable = errors.New("holiday calendar unavailable")

	// ErrInvalidResponse is returned when the payload is not a usable holiday map
	ErrInvalidResponse = errors.New("invalid holiday response")

	// ErrSnapshotNotFound is returned by a SnapshotStore without data for the year
	ErrSnapshotNotFound = errors.New("holiday snapshot not found")
)

// Source fetches one year of holiday records keyed by ISO date (YYYY-MM-DD)
type Source interface {
	FetchYear(ctx context.Context, year int) (map[string]HolidayRecord, error)
	Name() string
}

// CompositeSource tries sources in order, first success wins
type CompositeSource struct {
	sources []Source
	logger  *zap.Logger
}

// NewCompositeSource creates a new CompositeSource
func NewCompositeSource(logger *zap.Logger, sources ...Source) *CompositeSource {
	return &CompositeSource{
		sources: sources,
		logger:  logger,
	}
}

// FetchYear returns the first successful fetch
func (cs *CompositeSource) FetchYear(ctx context.Context, year int) (map[string]HolidayRecord, error) {
	var errs []error
	for i, src := range cs.sources {
		records, err := src.FetchYear(ctx, year)
		if err == nil {
			if i > 0 {
				cs.logger.Info("Using fallback holiday source",
					zap.String("source", src.Name()),
					zap.Int("year", year))
			}
			return records, nil
		}

		cs.logger.Warn("Holiday source failed, trying next",
			zap.String("source", src.Name()),
			zap.Int("year", year),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", ErrCalendarUnavailable)
	}
	return nil, errors.Join(errs...)
}

// Name lists the chained sources
func (cs *CompositeSource) Name() string {
	names := make([]string, 0, len(cs.sources))
	for _, src := range cs.sources {
		names = append(names, src.Name())
	}
	return strings.Join(names, ">")
}
