// Package config loads retheme configuration from defaults, a YAML file and
// RETHEME_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the full configuration.
type Config struct {
	Palette PaletteConfig `mapstructure:"palette"`
	Bar     BarConfig     `mapstructure:"bar"`
	Borders BordersConfig `mapstructure:"borders"`
	VSCode  VSCodeConfig  `mapstructure:"vscode"`
	Zed     ZedConfig     `mapstructure:"zed"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// PaletteConfig locates the palette file and its generator.
type PaletteConfig struct {
	File string `mapstructure:"file"`
	// Tool is the wal binary; empty means search for it.
	Tool string `mapstructure:"tool"`
}

// BarConfig controls the status bar env export and reload.
type BarConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	EnvFile string `mapstructure:"env_file"`
	Process string `mapstructure:"process"`
}

// BordersConfig controls the border daemon restart.
type BordersConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Service string `mapstructure:"service"`
}

// VSCodeConfig points at the VS Code user settings.
type VSCodeConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Settings string `mapstructure:"settings"`
}

// ZedConfig controls the Zed theme file and selector.
type ZedConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ThemesDir  string `mapstructure:"themes_dir"`
	ThemeFile  string `mapstructure:"theme_file"`
	Settings   string `mapstructure:"settings"`
	ThemeName  string `mapstructure:"theme_name"`
	LightTheme string `mapstructure:"light_theme"`
	Author     string `mapstructure:"author"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Limit   int    `mapstructure:"limit"`
}

// LoggingConfig controls the structured log file.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Palette: PaletteConfig{
			File: "~/.cache/wal/colors.json",
		},
		Bar: BarConfig{
			Enabled: true,
			EnvFile: "~/.config/sketchybar/colors.env",
			Process: "sketchybar",
		},
		Borders: BordersConfig{
			Enabled: true,
			Service: "borders",
		},
		VSCode: VSCodeConfig{
			Enabled:  true,
			Settings: "~/Library/Application Support/Code/User/settings.json",
		},
		Zed: ZedConfig{
			Enabled:    true,
			ThemesDir:  "~/.config/zed/themes",
			ThemeFile:  "pywal.json",
			Settings:   "~/.config/zed/settings.json",
			ThemeName:  "Pywal",
			LightTheme: "Ayu Light",
			Author:     "retheme",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(stateHome(), "retheme", "history.db"),
			Limit:   200,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(stateHome(), "retheme", "retheme.log"),
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/retheme/config.yaml.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "retheme", "config.yaml")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "retheme", "config.yaml")
}

func stateHome() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return base
	}
	return filepath.Join("~", ".local", "state")
}

// Load builds the configuration. An explicit path must exist; the default
// path may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("RETHEME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("palette.file", cfg.Palette.File)
	v.SetDefault("palette.tool", cfg.Palette.Tool)
	v.SetDefault("bar.enabled", cfg.Bar.Enabled)
	v.SetDefault("bar.env_file", cfg.Bar.EnvFile)
	v.SetDefault("bar.process", cfg.Bar.Process)
	v.SetDefault("borders.enabled", cfg.Borders.Enabled)
	v.SetDefault("borders.service", cfg.Borders.Service)
	v.SetDefault("vscode.enabled", cfg.VSCode.Enabled)
	v.SetDefault("vscode.settings", cfg.VSCode.Settings)
	v.SetDefault("zed.enabled", cfg.Zed.Enabled)
	v.SetDefault("zed.themes_dir", cfg.Zed.ThemesDir)
	v.SetDefault("zed.theme_file", cfg.Zed.ThemeFile)
	v.SetDefault("zed.settings", cfg.Zed.Settings)
	v.SetDefault("zed.theme_name", cfg.Zed.ThemeName)
	v.SetDefault("zed.light_theme", cfg.Zed.LightTheme)
	v.SetDefault("zed.author", cfg.Zed.Author)
	v.SetDefault("history.enabled", cfg.History.Enabled)
	v.SetDefault("history.path", cfg.History.Path)
	v.SetDefault("history.limit", cfg.History.Limit)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("watch.debounce", cfg.Watch.Debounce)
}

func (c *Config) expandPaths() {
	for _, p := range []*string{
		&c.Palette.File,
		&c.Palette.Tool,
		&c.Bar.EnvFile,
		&c.VSCode.Settings,
		&c.Zed.ThemesDir,
		&c.Zed.Settings,
		&c.History.Path,
		&c.Logging.File,
	} {
		*p = ExpandUser(*p)
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Palette.File) == "" {
		return errors.New("palette.file is required")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if c.Bar.Enabled && c.Bar.EnvFile == "" {
		return errors.New("bar.env_file is required when the bar is enabled")
	}
	if c.Bar.Enabled && c.Bar.Process == "" {
		return errors.New("bar.process is required when the bar is enabled")
	}
	if c.Borders.Enabled && c.Borders.Service == "" {
		return errors.New("borders.service is required when borders are enabled")
	}
	if c.Zed.Enabled && (c.Zed.ThemesDir == "" || c.Zed.ThemeFile == "") {
		return errors.New("zed.themes_dir and zed.theme_file are required when zed is enabled")
	}
	if c.Zed.Enabled && strings.ContainsRune(c.Zed.ThemeFile, filepath.Separator) {
		return fmt.Errorf("zed.theme_file must be a file name, got %q", c.Zed.ThemeFile)
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("history.limit must be positive, got %d", c.History.Limit)
	}
	if c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging.max_size_mb must be positive, got %d", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxBackups < 0 {
		return fmt.Errorf("logging.max_backups must not be negative, got %d", c.Logging.MaxBackups)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// ExpandUser replaces a leading ~ with the home directory.
func ExpandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
