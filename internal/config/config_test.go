package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/salary-ticker/internal/earnings"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
salary:
  monthly_salary: 22000
  work_start_time: "08:30"
  work_end_time: "17:30"
  pay_day: 10
calendar:
  source: file
  fallback_file: /tmp/holidays.txt
  snapshot_store: sqlite
  snapshot_path: /tmp/holidays.db
  lookahead: false
daemon:
  tick_interval: 500ms
server:
  addr: ":9090"
  allowed_origins: ["http://example.com"]
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	settings, err := cfg.Salary.Settings()
	require.NoError(t, err)
	assert.Equal(t, 22000.0, settings.MonthlySalary)
	assert.Equal(t, earnings.ClockTime{Hour: 8, Minute: 30}, settings.WorkStartTime)
	assert.Equal(t, earnings.ClockTime{Hour: 12}, settings.LunchBreakStart, "default lunch applies")
	assert.Equal(t, 10, settings.PayDay)

	assert.Equal(t, "file", cfg.Calendar.Source)
	assert.Equal(t, "sqlite", cfg.Calendar.SnapshotStore)
	assert.False(t, cfg.Calendar.Lookahead)
	assert.Equal(t, 3, cfg.Calendar.Retries)
	assert.Equal(t, 10*time.Second, cfg.Calendar.GetTimeout())

	assert.Equal(t, 500*time.Millisecond, cfg.Daemon.GetTickInterval())
	assert.Equal(t, 24*time.Hour, cfg.Daemon.GetRefreshInterval())
	assert.Equal(t, 5*time.Minute, cfg.Daemon.GetRetryInterval())
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	settings, err := cfg.Salary.Settings()
	require.NoError(t, err)
	assert.Equal(t, earnings.DefaultSettings(), settings)

	assert.Equal(t, "timor", cfg.Calendar.Source)
	assert.Equal(t, "https://timor.tech", cfg.Calendar.APIURL)
	assert.True(t, cfg.Calendar.Lookahead)
	assert.Equal(t, time.Second, cfg.Daemon.GetTickInterval())
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SALARY_TICKER_SALARY_MONTHLY_SALARY", "30000")
	t.Setenv("SALARY_TICKER_CALENDAR_SOURCE", "none")

	cfg, err := Load(writeConfig(t, "salary:\n  monthly_salary: 15000\n"))
	require.NoError(t, err)

	assert.Equal(t, 30000.0, cfg.Salary.MonthlySalary)
	assert.Equal(t, "none", cfg.Calendar.Source)
}

func TestLoad_ExpandsPaths(t *testing.T) {
	t.Setenv("HOLIDAY_DIR", "/srv/holidays")

	cfg, err := Load(writeConfig(t, `
calendar:
  source: file
  fallback_file: $HOLIDAY_DIR/holidays.txt
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/holidays/holidays.txt", cfg.Calendar.FallbackFile)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "salary:\n  pay_day: 40\n"))
	assert.ErrorContains(t, err, "invalid config")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Salary: SalaryConfig{
				MonthlySalary:   10000,
				WorkStartTime:   "09:00",
				WorkEndTime:     "18:00",
				LunchBreakStart: "12:00",
				LunchBreakEnd:   "13:00",
				PayDay:          15,
			},
			Calendar: CalendarConfig{Source: "timor", APIURL: "https://timor.tech"},
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad clock", func(c *Config) { c.Salary.WorkEndTime = "6pm" }, "salary.work_end_time"},
		{"lunch outside work", func(c *Config) { c.Salary.LunchBreakStart = "08:00" }, "salary:"},
		{"unknown source", func(c *Config) { c.Calendar.Source = "isdayoff" }, "calendar.source"},
		{"timor without url", func(c *Config) { c.Calendar.APIURL = "" }, "calendar.api_url"},
		{"file without path", func(c *Config) { c.Calendar.Source = "file" }, "calendar.fallback_file"},
		{"none source", func(c *Config) { c.Calendar.Source = "none" }, ""},
		{"unknown store", func(c *Config) { c.Calendar.SnapshotStore = "redis" }, "calendar.snapshot_store"},
		{"store without path", func(c *Config) { c.Calendar.SnapshotStore = "sqlite" }, "calendar.snapshot_path"},
		{"negative retries", func(c *Config) { c.Calendar.Retries = -1 }, "calendar.retries"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetDurations_FallBack(t *testing.T) {
	d := DaemonConfig{TickInterval: "soon", RefreshInterval: "-1h"}
	assert.Equal(t, time.Second, d.GetTickInterval())
	assert.Equal(t, 24*time.Hour, d.GetRefreshInterval())
	assert.Equal(t, 5*time.Minute, d.GetRetryInterval())

	c := CalendarConfig{Timeout: "3s"}
	assert.Equal(t, 3*time.Second, c.GetTimeout())
}
