package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const timorPayload2025 = `{
  "code": 0,
  "holiday": {
    "01-01": {"holiday": true, "name": "元旦", "wage": 3, "date": "2025-01-01", "rest": 1},
    "01-26": {"holiday": false, "name": "春节前补班", "wage": 1, "after": false, "target": "春节", "date": "2025-01-26"},
    "10-01": {"holiday": true, "name": "国庆节", "wage": 3, "date": "2025-10-01"}
  }
}`

func newTestTimor(t *testing.T, handler http.HandlerFunc) *TimorSource {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src := NewTimorSource(srv.URL, "", 2*time.Second, 2, zap.NewNop())
	src.retryDelay = time.Millisecond
	return src
}

func TestTimorSource_FetchYear(t *testing.T) {
	var gotPath, gotUA string
	src := newTestTimor(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(timorPayload2025))
	})

	records, err := src.FetchYear(context.Background(), 2025)
	require.NoError(t, err)

	assert.Equal(t, "/api/holiday/year/2025/", gotPath)
	assert.NotEmpty(t, gotUA)
	require.Len(t, records, 3)

	newYear := records["2025-01-01"]
	assert.True(t, newYear.IsRestDay)
	assert.Equal(t, "元旦", newYear.Name)
	assert.Equal(t, 3, newYear.Wage)
	assert.Equal(t, 1, newYear.Rest)

	makeUp := records["2025-01-26"]
	assert.False(t, makeUp.IsRestDay)
	assert.Equal(t, "春节", makeUp.Target)
	assert.Equal(t, "2025-01-26", makeUp.Date)
}

func TestTimorSource_InvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-zero code", `{"code": -1, "holiday": {}}`},
		{"missing holiday map", `{"code": 0}`},
		{"bad key", `{"code": 0, "holiday": {"13-45": {"holiday": true}}}`},
		{"not json", `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestTimor(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := src.FetchYear(context.Background(), 2025)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidResponse))
		})
	}
}

func TestTimorSource_RetriesThenFails(t *testing.T) {
	var calls int32
	src := newTestTimor(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := src.FetchYear(context.Background(), 2025)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCalendarUnavailable))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTimorSource_RetryRecovers(t *testing.T) {
	var calls int32
	src := newTestTimor(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(timorPayload2025))
	})

	records, err := src.FetchYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
