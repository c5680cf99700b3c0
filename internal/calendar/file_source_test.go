package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

const holidayFile = `# holidays
2025-10-01 rest National Day
2025-10-11 work National Day make-up
2025-10-02 holiday
2026-01-01 rest New Year
not-a-date rest broken
2025-10-05 maybe Unknown
2025-10-06
`

func writeHolidayFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "holidays.txt")
	require.NoError(t, os.WriteFile(path, []byte(holidayFile), 0o644))
	return path
}

func TestFileSource_FetchYear(t *testing.T) {
	src := NewFileSource(writeHolidayFile(t), zap.NewNop())

	records, err := src.FetchYear(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.True(t, records["2025-10-01"].IsRestDay)
	assert.Equal(t, "National Day", records["2025-10-01"].Name)
	assert.False(t, records["2025-10-11"].IsRestDay)
	assert.Equal(t, "National Day make-up", records["2025-10-11"].Name)
	assert.True(t, records["2025-10-02"].IsRestDay)
	assert.Empty(t, records["2025-10-02"].Name)
}

func TestFileSource_DecodesBOM(t *testing.T) {
	content := "2025-10-01 rest 国庆节\n2025-10-11 work 国庆节\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(content)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"utf-8 with BOM", append([]byte{0xEF, 0xBB, 0xBF}, content...)},
		{"utf-16le with BOM", []byte(utf16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "holidays.txt")
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))

			records, err := NewFileSource(path, zap.NewNop()).FetchYear(context.Background(), 2025)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "国庆节", records["2025-10-01"].Name)
			assert.True(t, records["2025-10-01"].IsRestDay)
		})
	}
}

func TestFileSource_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		src := NewFileSource(filepath.Join(t.TempDir(), "nope.txt"), zap.NewNop())
		_, err := src.FetchYear(context.Background(), 2025)
		assert.True(t, errors.Is(err, ErrCalendarUnavailable))
	})

	t.Run("year not present", func(t *testing.T) {
		src := NewFileSource(writeHolidayFile(t), zap.NewNop())
		_, err := src.FetchYear(context.Background(), 2030)
		assert.True(t, errors.Is(err, ErrCalendarUnavailable))
	})
}

func TestCompositeSource_FallsThrough(t *testing.T) {
	failing := newStubSource(nil)
	failing.err = errors.New("boom")
	file := NewFileSource(writeHolidayFile(t), zap.NewNop())

	cs := NewCompositeSource(zap.NewNop(), failing, file)

	records, err := cs.FetchYear(context.Background(), 2026)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, failing.calls[2026])
	assert.Equal(t, "stub>file", cs.Name())
}

func TestCompositeSource_AllFail(t *testing.T) {
	a := newStubSource(nil)
	a.err = errors.New("a down")
	b := newStubSource(nil)

	_, err := NewCompositeSource(zap.NewNop(), a, b).FetchYear(context.Background(), 2025)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCalendarUnavailable))
	assert.Contains(t, err.Error(), "a down")

	_, err = NewCompositeSource(zap.NewNop()).FetchYear(context.Background(), 2025)
	assert.True(t, errors.Is(err, ErrCalendarUnavailable))
}
