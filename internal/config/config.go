package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/username/salary-ticker/internal/earnings"
)

// Config represents application configuration
type Config struct {
	Salary   SalaryConfig   `mapstructure:"salary"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// SalaryConfig represents the salary and work schedule
type SalaryConfig struct {
	MonthlySalary   float64 `mapstructure:"monthly_salary"`
	WorkStartTime   string  `mapstructure:"work_start_time"`   // HH:MM
	WorkEndTime     string  `mapstructure:"work_end_time"`     // HH:MM
	LunchBreakStart string  `mapstructure:"lunch_break_start"` // HH:MM
	LunchBreakEnd   string  `mapstructure:"lunch_break_end"`   // HH:MM
	PayDay          int     `mapstructure:"pay_day"`
}

// CalendarConfig represents holiday calendar configuration
type CalendarConfig struct {
	Source        string `mapstructure:"source"` // "timor", "file" or "none"
	APIURL        string `mapstructure:"api_url"`
	FallbackFile  string `mapstructure:"fallback_file"`
	SnapshotStore string `mapstructure:"snapshot_store"` // "none", "file" or "sqlite"
	SnapshotPath  string `mapstructure:"snapshot_path"`
	Timeout       string `mapstructure:"timeout"`
	Retries       int    `mapstructure:"retries"`
	Lookahead     bool   `mapstructure:"lookahead"` // also load next year's holidays
	UserAgent     string `mapstructure:"user_agent"`
}

// DaemonConfig represents watch mode configuration
type DaemonConfig struct {
	TickInterval    string `mapstructure:"tick_interval"`
	RefreshInterval string `mapstructure:"refresh_interval"`
	RetryInterval   string `mapstructure:"retry_interval"` // while the calendar is failed
	SystemTray      bool   `mapstructure:"system_tray"`    // Show system tray icon (Windows only)
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

const (
	defaultTickInterval    = time.Second
	defaultRefreshInterval = 24 * time.Hour
	defaultRetryInterval   = 5 * time.Minute
	defaultTimeout         = 10 * time.Second
)

func setDefaults(v *viper.Viper) {
	def := earnings.DefaultSettings()
	v.SetDefault("salary.monthly_salary", def.MonthlySalary)
	v.SetDefault("salary.work_start_time", def.WorkStartTime.String())
	v.SetDefault("salary.work_end_time", def.WorkEndTime.String())
	v.SetDefault("salary.lunch_break_start", def.LunchBreakStart.String())
	v.SetDefault("salary.lunch_break_end", def.LunchBreakEnd.String())
	v.SetDefault("salary.pay_day", def.PayDay)

	v.SetDefault("calendar.source", "timor")
	v.SetDefault("calendar.api_url", "https://timor.tech")
	v.SetDefault("calendar.snapshot_store", "file")
	v.SetDefault("calendar.snapshot_path", "$HOME/.salary-ticker/holidays.json")
	v.SetDefault("calendar.timeout", defaultTimeout.String())
	v.SetDefault("calendar.retries", 3)
	v.SetDefault("calendar.lookahead", true)

	v.SetDefault("daemon.tick_interval", defaultTickInterval.String())
	v.SetDefault("daemon.refresh_interval", defaultRefreshInterval.String())
	v.SetDefault("daemon.retry_interval", defaultRetryInterval.String())
	v.SetDefault("daemon.system_tray", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("log.level", "info")
}

// Load loads configuration from file, environment and defaults.
// Without an explicit path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.salary-ticker")
		v.AddConfigPath("/etc/salary-ticker")
	}

	// SALARY_TICKER_SALARY_MONTHLY_SALARY overrides salary.monthly_salary
	v.SetEnvPrefix("SALARY_TICKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	settings, err := c.Salary.Settings()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("salary: %w", err)
	}

	switch c.Calendar.Source {
	case "timor":
		if c.Calendar.APIURL == "" {
			return fmt.Errorf("calendar.api_url is required for timor source")
		}
	case "file":
		if c.Calendar.FallbackFile == "" {
			return fmt.Errorf("calendar.fallback_file is required for file source")
		}
	case "none":
	default:
		return fmt.Errorf("calendar.source must be 'timor', 'file' or 'none', got '%s'", c.Calendar.Source)
	}

	switch c.Calendar.SnapshotStore {
	case "", "none":
	case "file", "sqlite":
		if c.Calendar.SnapshotPath == "" {
			return fmt.Errorf("calendar.snapshot_path is required for %s snapshot store", c.Calendar.SnapshotStore)
		}
	default:
		return fmt.Errorf("calendar.snapshot_store must be 'none', 'file' or 'sqlite', got '%s'", c.Calendar.SnapshotStore)
	}

	if c.Calendar.Retries < 0 {
		return fmt.Errorf("calendar.retries must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}

	return nil
}

// Settings converts the salary section into engine settings
func (s *SalaryConfig) Settings() (earnings.ScheduleSettings, error) {
	settings := earnings.ScheduleSettings{
		MonthlySalary: s.MonthlySalary,
		PayDay:        s.PayDay,
	}

	fields := []struct {
		key   string
		value string
		dst   *earnings.ClockTime
	}{
		{"salary.work_start_time", s.WorkStartTime, &settings.WorkStartTime},
		{"salary.work_end_time", s.WorkEndTime, &settings.WorkEndTime},
		{"salary.lunch_break_start", s.LunchBreakStart, &settings.LunchBreakStart},
		{"salary.lunch_break_end", s.LunchBreakEnd, &settings.LunchBreakEnd},
	}

	for _, f := range fields {
		parsed, err := earnings.ParseClockTime(f.value)
		if err != nil {
			return earnings.ScheduleSettings{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = parsed
	}

	return settings, nil
}

// GetTimeout returns the holiday API request timeout
func (c *CalendarConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, defaultTimeout)
}

// GetTickInterval returns how often watch mode recomputes
func (c *DaemonConfig) GetTickInterval() time.Duration {
	return parseDuration(c.TickInterval, defaultTickInterval)
}

// GetRefreshInterval returns how often the holiday calendar is re-fetched
func (c *DaemonConfig) GetRefreshInterval() time.Duration {
	return parseDuration(c.RefreshInterval, defaultRefreshInterval)
}

// GetRetryInterval returns how often a failed holiday calendar is re-fetched
func (c *DaemonConfig) GetRetryInterval() time.Duration {
	return parseDuration(c.RetryInterval, defaultRetryInterval)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

// ExpandEnvVars expands environment variables in config paths
func (c *Config) ExpandEnvVars() {
	c.Calendar.FallbackFile = os.ExpandEnv(c.Calendar.FallbackFile)
	c.Calendar.SnapshotPath = os.ExpandEnv(c.Calendar.SnapshotPath)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
