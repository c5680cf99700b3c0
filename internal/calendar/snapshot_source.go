package calendar

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SnapshotStore persists resolved years for offline use
type SnapshotStore interface {
	Save(ctx context.Context, year int, records map[string]HolidayRecord) error
	Load(ctx context.Context, year int) (map[string]HolidayRecord, error)
}

// SnapshotSource records every successful primary fetch and serves the stored
// copy when the primary fails
type SnapshotSource struct {
	primary Source
	store   SnapshotStore
	logger  *zap.Logger
}

// NewSnapshotSource creates a new SnapshotSource
func NewSnapshotSource(primary Source, store SnapshotStore, logger *zap.Logger) *SnapshotSource {
	return &SnapshotSource{
		primary: primary,
		store:   store,
		logger:  logger,
	}
}

// Name implements Source
func (ss *SnapshotSource) Name() string {
	return ss.primary.Name() + "+snapshot"
}

// FetchYear implements Source
func (ss *SnapshotSource) FetchYear(ctx context.Context, year int) (map[string]HolidayRecord, error) {
	records, err := ss.primary.FetchYear(ctx, year)
	if err == nil {
		if saveErr := ss.store.Save(ctx, year, records); saveErr != nil {
			ss.logger.Warn("Failed to store holiday snapshot",
				zap.Int("year", year),
				zap.Error(saveErr))
		}
		return records, nil
	}

	stored, loadErr := ss.store.Load(ctx, year)
	if loadErr != nil {
		return nil, fmt.Errorf("%w (snapshot: %v)", err, loadErr)
	}

	ss.logger.Warn("Primary holiday source failed, using stored snapshot",
		zap.Int("year", year),
		zap.Int("records", len(stored)),
		zap.Error(err))

	return stored, nil
}
