package calendar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	years map[int]map[string]HolidayRecord
}

func (m *memoryStore) Save(_ context.Context, year int, records map[string]HolidayRecord) error {
	if m.years == nil {
		m.years = make(map[int]map[string]HolidayRecord)
	}
	m.years[year] = records
	return nil
}

func (m *memoryStore) Load(_ context.Context, year int) (map[string]HolidayRecord, error) {
	records, ok := m.years[year]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return records, nil
}

func TestSnapshotSource_SavesAndServesOffline(t *testing.T) {
	primary := newStubSource(stubYears())
	store := &memoryStore{}
	src := NewSnapshotSource(primary, store, zap.NewNop())

	online, err := src.FetchYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Len(t, store.years[2025], len(online))

	primary.err = errors.New("offline")
	offline, err := src.FetchYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, online, offline)
	assert.Equal(t, "stub+snapshot", src.Name())
}

func TestSnapshotSource_NoSnapshot(t *testing.T) {
	primary := newStubSource(nil)
	primary.err = ErrCalendarUnavailable
	src := NewSnapshotSource(primary, &memoryStore{}, zap.NewNop())

	_, err := src.FetchYear(context.Background(), 2025)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCalendarUnavailable))
	assert.Contains(t, err.Error(), ErrSnapshotNotFound.Error())
}
