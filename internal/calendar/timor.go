package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/salary-ticker/pkg/random"
)

const (
	DefaultTimorURL    = "https://timor.tech"
	defaultHTTPTimeout = 10 * time.Second
	defaultUserAgent   = "salary-ticker/1.0"
	defaultRetries     = 3
	retryJitterPercent = 20
)

// TimorSource fetches Chinese public holidays and make-up workdays from timor.tech
type TimorSource struct {
	baseURL    string
	userAgent  string
	retries    int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// timorResponse represents GET /api/holiday/year/{year}/
type timorResponse struct {
	Code    int                     `json:"code"`
	Holiday map[string]timorHoliday `json:"holiday"` // key "MM-DD"
}

type timorHoliday struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
	Wage    int    `json:"wage"`
	Date    string `json:"date"`
	Rest    int    `json:"rest,omitempty"`
	After   bool   `json:"after,omitempty"`
	Target  string `json:"target,omitempty"`
}

// NewTimorSource creates a new TimorSource instance
func NewTimorSource(baseURL, userAgent string, timeout time.Duration, retries int, logger *zap.Logger) *TimorSource {
	if baseURL == "" {
		baseURL = DefaultTimorURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if retries <= 0 {
		retries = defaultRetries
	}

	return &TimorSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		retries:    retries,
		retryDelay: time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name implements Source
func (s *TimorSource) Name() string {
	return "timor"
}

// FetchYear downloads the year and expands "MM-DD" keys to full ISO dates
func (s *TimorSource) FetchYear(ctx context.Context, year int) (map[string]HolidayRecord, error) {
	url := fmt.Sprintf("%s/api/holiday/year/%d/", s.baseURL, year)

	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		body, err := s.get(ctx, url)
		if err == nil {
			return s.parseYear(year, body)
		}

		lastErr = err
		s.logger.Warn("Holiday request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", s.retries),
			zap.Error(err))

		if attempt < s.retries {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrCalendarUnavailable, ctx.Err())
			case <-time.After(random.Backoff(s.retryDelay, attempt, retryJitterPercent)):
			}
		}
	}

	return nil, fmt.Errorf("%w: request failed after %d attempts: %v", ErrCalendarUnavailable, s.retries, lastErr)
}

func (s *TimorSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	s.logger.Debug("Fetching holiday year", zap.String("url", url))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return body, nil
}

// parseYear converts the API payload into ISO-keyed records
func (s *TimorSource) parseYear(year int, body []byte) (map[string]HolidayRecord, error) {
	var apiResp timorResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", ErrInvalidResponse, err)
	}

	if apiResp.Code != 0 || apiResp.Holiday == nil {
		return nil, fmt.Errorf("%w: code=%d", ErrInvalidResponse, apiResp.Code)
	}

	records := make(map[string]HolidayRecord, len(apiResp.Holiday))
	for key, day := range apiResp.Holiday {
		fullDate := fmt.Sprintf("%d-%s", year, key)
		if _, err := time.Parse("2006-01-02", fullDate); err != nil {
			return nil, fmt.Errorf("%w: bad day key %q", ErrInvalidResponse, key)
		}

		records[fullDate] = HolidayRecord{
			Date:      fullDate,
			Name:      day.Name,
			IsRestDay: day.Holiday,
			Wage:      day.Wage,
			Rest:      day.Rest,
			After:     day.After,
			Target:    day.Target,
		}
	}

	s.logger.Info("Holiday year fetched",
		zap.Int("year", year),
		zap.Int("records", len(records)))

	return records, nil
}
