package calendar

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileSource reads holiday records from a local text file
//
// Format: YYYY-MM-DD rest|work [name]
// Example: 2025-10-01 rest National Day
//
// UTF-8 and BOM-marked UTF-16 files are accepted.
type FileSource struct {
	filePath string
	logger   *zap.Logger
}

// NewFileSource creates a new FileSource instance
func NewFileSource(filePath string, logger *zap.Logger) *FileSource {
	return &FileSource{
		filePath: filePath,
		logger:   logger,
	}
}

// Name implements Source
func (fs *FileSource) Name() string {
	return "file"
}

// FetchYear returns the records of the file that fall in year
func (fs *FileSource) FetchYear(ctx context.Context, year int) (map[string]HolidayRecord, error) {
	file, err := os.Open(fs.filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open holiday file: %v", ErrCalendarUnavailable, err)
	}
	defer file.Close()

	records := make(map[string]HolidayRecord)
	decoded := transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, ok := fs.parseLine(line)
		if !ok || !strings.HasPrefix(rec.Date, fmt.Sprintf("%04d-", year)) {
			continue
		}
		records[rec.Date] = rec
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading holiday file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records for %d in %s", ErrCalendarUnavailable, year, fs.filePath)
	}

	fs.logger.Info("Holiday file loaded",
		zap.String("file", fs.filePath),
		zap.Int("year", year),
		zap.Int("records", len(records)))

	return records, nil
}

func (fs *FileSource) parseLine(line string) (HolidayRecord, bool) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		fs.logger.Warn("Invalid line format", zap.String("line", line))
		return HolidayRecord{}, false
	}

	date, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		fs.logger.Warn("Failed to parse date", zap.String("date", parts[0]), zap.Error(err))
		return HolidayRecord{}, false
	}

	rec := HolidayRecord{Date: date.Format("2006-01-02")}
	if len(parts) == 3 {
		rec.Name = strings.TrimSpace(parts[2])
	}

	switch parts[1] {
	case "rest", "holiday":
		rec.IsRestDay = true
	case "work", "workday":
		rec.IsRestDay = false
	default:
		fs.logger.Warn("Unknown day type", zap.String("type", parts[1]))
		return HolidayRecord{}, false
	}

	return rec, true
}
