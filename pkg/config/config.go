package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	xdgAppName = "dayplan"
	configFile = "config.toml"

	// EnvHome overrides the configuration directory.
	EnvHome = "DAYPLAN_HOME"
	// EnvGoogleCredentials points at a service account key file.
	EnvGoogleCredentials = "GOOGLE_CALENDAR_CREDENTIALS"
	// EnvOutlookToken carries a Microsoft Graph bearer token.
	EnvOutlookToken = "OUTLOOK_TOKEN"
)

type Config struct {
	Day     DayConfig     `toml:"day"`
	Storage StorageConfig `toml:"storage"`
	Tasks   TasksConfig   `toml:"tasks"`
	Google  GoogleConfig  `toml:"google"`
	Outlook OutlookConfig `toml:"outlook"`
	Sources SourcesConfig `toml:"sources"`
	Server  ServerConfig  `toml:"server"`
}

// DayConfig describes the workday window. Clock values are "HH:MM".
type DayConfig struct {
	Start              string `toml:"start"`
	End                string `toml:"end"`
	BreakMinutes       int    `toml:"break_minutes"`
	LunchStart         string `toml:"lunch_start"`
	LunchMinutes       int    `toml:"lunch_minutes"`
	DefaultTaskMinutes int    `toml:"default_task_minutes"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
	// HistoryBackend is one of "json", "sqlite" or "memory".
	HistoryBackend string `toml:"history_backend"`
}

type TasksConfig struct {
	// Source is one of "file", "taskwarrior" or "orgmode".
	Source   string   `toml:"source"`
	OrgFiles []string `toml:"org_files"`
}

type GoogleConfig struct {
	CredentialsFile string `toml:"credentials_file"`
	CalendarID      string `toml:"calendar_id"`
	// UseToken enables the installed-app token saved by `dayplan auth`.
	UseToken bool `toml:"use_token"`
}

type OutlookConfig struct {
	Token    string `toml:"token"`
	Endpoint string `toml:"endpoint"`
}

type SourcesConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type ServerConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Day: DayConfig{
			Start:              "09:00",
			End:                "18:00",
			BreakMinutes:       10,
			LunchStart:         "12:30",
			LunchMinutes:       30,
			DefaultTaskMinutes: 50,
		},
		Storage: StorageConfig{
			DataDir:        filepath.Join(Home(), "data"),
			HistoryBackend: "json",
		},
		Tasks: TasksConfig{
			Source: "file",
		},
		Google: GoogleConfig{
			CalendarID: "primary",
		},
		Outlook: OutlookConfig{
			Endpoint: "https://graph.microsoft.com/v1.0",
		},
		Sources: SourcesConfig{
			TimeoutSeconds: 10,
		},
		Server: ServerConfig{
			Addr:    "127.0.0.1:8787",
			Metrics: true,
		},
	}
}

// Home returns the configuration directory.
func Home() string {
	if env := os.Getenv(EnvHome); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+xdgAppName)
	}
	return filepath.Join(home, ".config", xdgAppName)
}

func GetConfigPath() string {
	return filepath.Join(Home(), configFile)
}

// Load reads the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads path, falling back to defaults when it does not exist.
// Environment variables win over the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if v := os.Getenv(EnvGoogleCredentials); v != "" {
		cfg.Google.CredentialsFile = v
	}
	if v := os.Getenv(EnvOutlookToken); v != "" {
		cfg.Outlook.Token = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks the day window and numeric settings.
func (c *Config) Validate() error {
	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	start, err := c.Day.At(ref, c.Day.Start)
	if err != nil {
		return err
	}
	end, err := c.Day.At(ref, c.Day.End)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("day start %s must be before day end %s", c.Day.Start, c.Day.End)
	}
	if _, err := c.Day.At(ref, c.Day.LunchStart); err != nil {
		return err
	}
	if c.Day.BreakMinutes < 0 {
		return fmt.Errorf("break_minutes must not be negative, got %d", c.Day.BreakMinutes)
	}
	if c.Day.LunchMinutes <= 0 {
		return fmt.Errorf("lunch_minutes must be positive, got %d", c.Day.LunchMinutes)
	}
	if c.Day.DefaultTaskMinutes <= 0 {
		return fmt.Errorf("default_task_minutes must be positive, got %d", c.Day.DefaultTaskMinutes)
	}
	switch c.Storage.HistoryBackend {
	case "json", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown history backend %q", c.Storage.HistoryBackend)
	}
	switch c.Tasks.Source {
	case "file", "taskwarrior", "orgmode":
	default:
		return fmt.Errorf("unknown task source %q", c.Tasks.Source)
	}
	return nil
}

// SourceTimeout is the per-source fetch budget.
func (c *Config) SourceTimeout() time.Duration {
	if c.Sources.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

// DataPath joins name onto the data directory.
func (c *Config) DataPath(name string) string {
	return filepath.Join(c.Storage.DataDir, name)
}

// At resolves an "HH:MM" clock value on day's date, in day's location.
func (d DayConfig) At(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	y, m, dd := day.Date()
	return time.Date(y, m, dd, t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// Window returns the workday bounds for day.
func (d DayConfig) Window(day time.Time) (start, end time.Time, err error) {
	if start, err = d.At(day, d.Start); err != nil {
		return
	}
	end, err = d.At(day, d.End)
	return
}

// Lunch returns the fixed lunch block bounds for day.
func (d DayConfig) Lunch(day time.Time) (start, end time.Time, err error) {
	if start, err = d.At(day, d.LunchStart); err != nil {
		return
	}
	end = start.Add(time.Duration(d.LunchMinutes) * time.Minute)
	return
}
