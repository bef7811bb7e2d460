package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ServerConfig locates the backend.
type ServerConfig struct {
	// BaseURL is the root of the REST API (e.g., https://tracker.example.com).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// WebURL is the root of the browser UI used for task navigation.
	// Defaults to BaseURL when empty.
	WebURL string `mapstructure:"web_url" yaml:"web_url"`
}

// NotifyConfig holds timings and limits of the notification core.
type NotifyConfig struct {
	PollIntervalSec  int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	PollLimit        int `mapstructure:"poll_limit" yaml:"poll_limit"`
	StaggerMs        int `mapstructure:"stagger_ms" yaml:"stagger_ms"`
	ToastDurationSec int `mapstructure:"toast_duration_sec" yaml:"toast_duration_sec"`
	ToastExitMs      int `mapstructure:"toast_exit_ms" yaml:"toast_exit_ms"`
	CenterLimit      int `mapstructure:"center_limit" yaml:"center_limit"`
	BadgeCap         int `mapstructure:"badge_cap" yaml:"badge_cap"`
	AlertSec         int `mapstructure:"alert_sec" yaml:"alert_sec"`
}

// AudioConfig controls the chime played when new notifications arrive.
type AudioConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	BaseHz     float64 `mapstructure:"base_hz" yaml:"base_hz"`
	HarmonicHz float64 `mapstructure:"harmonic_hz" yaml:"harmonic_hz"`
	DurationMs int     `mapstructure:"duration_ms" yaml:"duration_ms"`
	Volume     float64 `mapstructure:"volume" yaml:"volume"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DevServerConfig configures the local development backend.
type DevServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	DBPath    string `mapstructure:"db_path" yaml:"db_path"`
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Notify    NotifyConfig    `mapstructure:"notify" yaml:"notify"`
	Audio     AudioConfig     `mapstructure:"audio" yaml:"audio"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	DevServer DevServerConfig `mapstructure:"devserver" yaml:"devserver"`
}

// PollInterval returns the poll period as a duration.
func (c NotifyConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// Stagger returns the delay between consecutive toasts of one cycle.
func (c NotifyConfig) Stagger() time.Duration {
	return time.Duration(c.StaggerMs) * time.Millisecond
}

// ToastDuration returns how long a toast stays on screen.
func (c NotifyConfig) ToastDuration() time.Duration {
	return time.Duration(c.ToastDurationSec) * time.Second
}

// ToastExit returns the length of the toast exit transition.
func (c NotifyConfig) ToastExit() time.Duration {
	return time.Duration(c.ToastExitMs) * time.Millisecond
}

// AlertDuration returns how long a transient alert is shown.
func (c NotifyConfig) AlertDuration() time.Duration {
	return time.Duration(c.AlertSec) * time.Second
}

// Duration returns the chime length.
func (c AudioConfig) Duration() time.Duration {
	return time.Duration(c.DurationMs) * time.Millisecond
}

// ConfigDir returns ~/.config/tasknotify.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tasknotify")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tasknotify/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL: "http://127.0.0.1:8765",
		},
		Notify: NotifyConfig{
			PollIntervalSec:  10,
			PollLimit:        10,
			StaggerMs:        300,
			ToastDurationSec: 8,
			ToastExitMs:      300,
			CenterLimit:      100,
			BadgeCap:         99,
			AlertSec:         4,
		},
		Audio: AudioConfig{
			Enabled:    true,
			BaseHz:     880,
			HarmonicHz: 1320,
			DurationMs: 300,
			Volume:     0.25,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "tasknotify.log"),
		},
		DevServer: DevServerConfig{
			Addr:      "127.0.0.1:8765",
			DBPath:    filepath.Join(ConfigDir(), "devserver.db"),
			JWTSecret: "tasknotify-dev-secret",
		},
	}
}

// setDefaults registers every default with v so that env overrides and
// partial files resolve to sensible values.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()

	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.web_url", d.Server.WebURL)

	v.SetDefault("notify.poll_interval_sec", d.Notify.PollIntervalSec)
	v.SetDefault("notify.poll_limit", d.Notify.PollLimit)
	v.SetDefault("notify.stagger_ms", d.Notify.StaggerMs)
	v.SetDefault("notify.toast_duration_sec", d.Notify.ToastDurationSec)
	v.SetDefault("notify.toast_exit_ms", d.Notify.ToastExitMs)
	v.SetDefault("notify.center_limit", d.Notify.CenterLimit)
	v.SetDefault("notify.badge_cap", d.Notify.BadgeCap)
	v.SetDefault("notify.alert_sec", d.Notify.AlertSec)

	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.base_hz", d.Audio.BaseHz)
	v.SetDefault("audio.harmonic_hz", d.Audio.HarmonicHz)
	v.SetDefault("audio.duration_ms", d.Audio.DurationMs)
	v.SetDefault("audio.volume", d.Audio.Volume)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("devserver.addr", d.DevServer.Addr)
	v.SetDefault("devserver.db_path", d.DevServer.DBPath)
	v.SetDefault("devserver.jwt_secret", d.DevServer.JWTSecret)
}

// Config wraps a loaded configuration together with the viper instance
// that produced it, so callers can watch the file for changes.
type Config struct {
	*AppConfig
	v *viper.Viper
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and TASKNOTIFY_* environment
// variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TASKNOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.normalize()

	return &Config{AppConfig: cfg, v: v}, nil
}

// normalize repairs values that would break the notification core.
func (c *AppConfig) normalize() {
	d := DefaultAppConfig()
	if c.Notify.PollIntervalSec <= 0 {
		c.Notify.PollIntervalSec = d.Notify.PollIntervalSec
	}
	if c.Notify.PollLimit <= 0 {
		c.Notify.PollLimit = d.Notify.PollLimit
	}
	if c.Notify.StaggerMs < 0 {
		c.Notify.StaggerMs = 0
	}
	if c.Notify.ToastDurationSec <= 0 {
		c.Notify.ToastDurationSec = d.Notify.ToastDurationSec
	}
	if c.Notify.ToastExitMs < 0 {
		c.Notify.ToastExitMs = 0
	}
	if c.Notify.CenterLimit <= 0 {
		c.Notify.CenterLimit = d.Notify.CenterLimit
	}
	if c.Notify.BadgeCap <= 0 {
		c.Notify.BadgeCap = d.Notify.BadgeCap
	}
	if c.Notify.AlertSec <= 0 {
		c.Notify.AlertSec = d.Notify.AlertSec
	}
	if c.Audio.Volume <= 0 || c.Audio.Volume > 1 {
		c.Audio.Volume = d.Audio.Volume
	}
	if c.Audio.DurationMs <= 0 {
		c.Audio.DurationMs = d.Audio.DurationMs
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	if c.Server.WebURL == "" {
		c.Server.WebURL = c.Server.BaseURL
	}
	c.Server.WebURL = strings.TrimRight(c.Server.WebURL, "/")
}

// WatchAudio calls fn with the new audio.enabled value whenever the
// config file changes on disk.
func (c *Config) WatchAudio(fn func(enabled bool)) {
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fn(c.v.GetBool("audio.enabled"))
	})
	c.v.WatchConfig()
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("notify", cfg.Notify)
	v.Set("audio", cfg.Audio)
	v.Set("log", cfg.Log)
	v.Set("devserver", cfg.DevServer)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
