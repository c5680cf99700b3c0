package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/username/salary-ticker/internal/calendar"
	"go.uber.org/zap"
)

// YearSnapshot is one stored year
type YearSnapshot struct {
	Year    int                               `json:"year"`
	SavedAt string                            `json:"saved_at"`
	Records map[string]calendar.HolidayRecord `json:"records"`
}

// FileStore keeps resolved years in a single JSON state file
type FileStore struct {
	stateFile string
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewFileStore creates a new file-backed snapshot store
func NewFileStore(stateFile string, logger *zap.Logger) *FileStore {
	return &FileStore{
		stateFile: stateFile,
		logger:    logger,
	}
}

// Save stores the year, replacing any earlier copy
func (fs *FileStore) Save(_ context.Context, year int, records map[string]calendar.HolidayRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	state, err := fs.read()
	if err != nil {
		return err
	}

	state[strconv.Itoa(year)] = YearSnapshot{
		Year:    year,
		SavedAt: time.Now().Format(time.RFC3339),
		Records: records,
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if dir := filepath.Dir(fs.stateFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state dir: %w", err)
		}
	}

	if err := os.WriteFile(fs.stateFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	fs.logger.Info("Holiday snapshot saved",
		zap.String("file", fs.stateFile),
		zap.Int("year", year),
		zap.Int("records", len(records)))

	return nil
}

// Load returns the stored year or calendar.ErrSnapshotNotFound
func (fs *FileStore) Load(_ context.Context, year int) (map[string]calendar.HolidayRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	state, err := fs.read()
	if err != nil {
		return nil, err
	}

	snap, ok := state[strconv.Itoa(year)]
	if !ok {
		return nil, fmt.Errorf("%w: year %d", calendar.ErrSnapshotNotFound, year)
	}

	fs.logger.Info("Holiday snapshot loaded",
		zap.Int("year", year),
		zap.String("saved_at", snap.SavedAt))

	return snap.Records, nil
}

func (fs *FileStore) read() (map[string]YearSnapshot, error) {
	data, err := os.ReadFile(fs.stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet - will be created on first save
			return make(map[string]YearSnapshot), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state := make(map[string]YearSnapshot)
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return state, nil
}
