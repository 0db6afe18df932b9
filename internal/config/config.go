// Package config handles configuration loading, validation and hot reload
// for goxviet.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"goxviet/internal/composition"
	"goxviet/internal/engine"
	"goxviet/internal/inject"
	"goxviet/internal/interceptor"
	"goxviet/internal/logging"
	"goxviet/internal/shortcut"
	"goxviet/internal/synth"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete configuration.
type Config struct {
	Version int `toml:"version" json:"version" yaml:"version"`

	// Input holds the engine options.
	Input InputConfig `toml:"input" json:"input" yaml:"input"`

	// Toggle is the shortcut that switches Vietnamese input on and off.
	Toggle ToggleConfig `toml:"toggle" json:"toggle" yaml:"toggle"`

	// Injection tunes how text is rewritten in the focused app.
	Injection InjectionConfig `toml:"injection" json:"injection" yaml:"injection"`

	// Expansion locates the text-expansion dictionary.
	Expansion ExpansionConfig `toml:"expansion" json:"expansion" yaml:"expansion"`

	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// InputConfig holds engine options.
type InputConfig struct {
	// Method is "telex" or "vni".
	Method string `toml:"method" json:"method" yaml:"method"`

	// ModernTone places tone marks in the modern style (hoà rather than hòa).
	ModernTone bool `toml:"modern_tone" json:"modern_tone" yaml:"modern_tone"`

	// EscRestore makes Escape undo the transformation of the current word.
	EscRestore bool `toml:"esc_restore" json:"esc_restore" yaml:"esc_restore"`

	FreeTone       bool `toml:"free_tone" json:"free_tone" yaml:"free_tone"`
	InstantRestore bool `toml:"instant_restore" json:"instant_restore" yaml:"instant_restore"`

	// SkipW disables the Telex "w" to "ư" shortcut.
	SkipW bool `toml:"skip_w" json:"skip_w" yaml:"skip_w"`

	// Shortcuts enables text expansion.
	Shortcuts bool `toml:"shortcuts" json:"shortcuts" yaml:"shortcuts"`

	// StartEnabled starts with Vietnamese input on.
	StartEnabled bool `toml:"start_enabled" json:"start_enabled" yaml:"start_enabled"`
}

// ToggleConfig holds the on/off shortcut.
type ToggleConfig struct {
	// Shortcut is written like "ctrl+space" or "ctrl+shift".
	Shortcut string `toml:"shortcut" json:"shortcut" yaml:"shortcut"`
}

// InjectionConfig tunes text injection.
type InjectionConfig struct {
	// CacheTTLMs is how long a strategy decision is reused.
	CacheTTLMs int `toml:"cache_ttl_ms" json:"cache_ttl_ms" yaml:"cache_ttl_ms"`

	// ChunkSize bounds one synthesized text event in UTF-16 units.
	ChunkSize int `toml:"chunk_size" json:"chunk_size" yaml:"chunk_size"`

	FocusRetries int `toml:"focus_retries" json:"focus_retries" yaml:"focus_retries"`

	// AXRetries is the number of retries of a direct accessibility write.
	AXRetries int `toml:"ax_retries" json:"ax_retries" yaml:"ax_retries"`

	// AXBackoffMs is the base backoff between direct write attempts.
	AXBackoffMs int `toml:"ax_backoff_ms" json:"ax_backoff_ms" yaml:"ax_backoff_ms"`

	// WordDelete turns Shift+Delete into a native word delete.
	WordDelete bool `toml:"word_delete" json:"word_delete" yaml:"word_delete"`

	WordDeleteWindowMs int `toml:"word_delete_window_ms" json:"word_delete_window_ms" yaml:"word_delete_window_ms"`

	// Overrides maps a bundle identifier to a strategy name such as
	// "slow" or "ax_direct".
	Overrides map[string]string `toml:"overrides" json:"overrides" yaml:"overrides"`
}

// ExpansionConfig locates the dictionary.
type ExpansionConfig struct {
	// DatabasePath is the SQLite dictionary file.
	DatabasePath string `toml:"database_path" json:"database_path" yaml:"database_path"`

	// Seed stores the built-in abbreviations into an empty dictionary.
	Seed bool `toml:"seed" json:"seed" yaml:"seed"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is stdout, stderr, file, both or discard.
	Output string `toml:"output" json:"output" yaml:"output"`

	FilePath   string `toml:"file_path" json:"file_path" yaml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		Version: Version,
		Input: InputConfig{
			Method:         "telex",
			ModernTone:     true,
			EscRestore:     true,
			InstantRestore: true,
			Shortcuts:      true,
			StartEnabled:   true,
		},
		Toggle: ToggleConfig{
			Shortcut: shortcut.Default().String(),
		},
		Injection: InjectionConfig{
			CacheTTLMs:         int(inject.DefaultCacheTTL / time.Millisecond),
			ChunkSize:          synth.DefaultChunkLimit,
			FocusRetries:       inject.DefaultFocusRetries,
			AXRetries:          inject.DefaultAXRetries,
			AXBackoffMs:        int(inject.DefaultAXBackoff / time.Millisecond),
			WordDelete:         true,
			WordDeleteWindowMs: int(composition.DefaultWordDeleteWindow / time.Millisecond),
			Overrides:          map[string]string{},
		},
		Expansion: ExpansionConfig{
			DatabasePath: filepath.Join(dir, "shortcuts.db"),
			Seed:         true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   logging.DefaultLogPath(),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// DataDir returns the goxviet data directory. GOXVIET_DATA_DIR overrides
// the platform default.
func DataDir() string {
	if dir := os.Getenv("GOXVIET_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "goxviet")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "goxviet")
		}
		return filepath.Join(home, ".local", "share", "goxviet")
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	if p := os.Getenv("GOXVIET_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DataDir(), "config.toml")
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist. The format follows the extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies GOXVIET_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GOXVIET_INPUT_METHOD"); v != "" {
		c.Input.Method = v
	}
	if v := os.Getenv("GOXVIET_TOGGLE_SHORTCUT"); v != "" {
		c.Toggle.Shortcut = v
	}
	if v := os.Getenv("GOXVIET_DB_PATH"); v != "" {
		c.Expansion.DatabasePath = v
	}
	if v := os.Getenv("GOXVIET_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GOXVIET_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("GOXVIET_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("GOXVIET_START_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Input.StartEnabled = b
		}
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Injection.Overrides = make(map[string]string, len(c.Injection.Overrides))
	for k, v := range c.Injection.Overrides {
		clone.Injection.Overrides[k] = v
	}
	return &clone
}

// EngineSettings converts the input section.
func (c *Config) EngineSettings() (engine.Settings, error) {
	m, err := engine.ParseMethod(c.Input.Method)
	if err != nil {
		return engine.Settings{}, err
	}
	return engine.Settings{
		Method:           m,
		ModernTone:       c.Input.ModernTone,
		EscRestore:       c.Input.EscRestore,
		FreeTone:         c.Input.FreeTone,
		InstantRestore:   c.Input.InstantRestore,
		SkipWShortcut:    c.Input.SkipW,
		ShortcutsEnabled: c.Input.Shortcuts,
	}, nil
}

// ToggleShortcut parses and validates the toggle section.
func (c *Config) ToggleShortcut() (shortcut.Toggle, error) {
	return shortcut.Parse(c.Toggle.Shortcut)
}

// StrategyTable returns the default table with the configured per-app
// overrides applied.
func (c *Config) StrategyTable() (*inject.Table, error) {
	table := inject.DefaultTable()
	for app, name := range c.Injection.Overrides {
		s, err := inject.ParseStrategy(name)
		if err != nil {
			return nil, fmt.Errorf("override for %s: %w", app, err)
		}
		table.Override(app, s)
	}
	return table, nil
}

// LoggerConfig converts the logging section.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	lc := logging.DefaultConfig()
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	lc.Level = level
	lc.Format = format
	lc.Output = strings.ToLower(c.Logging.Output)
	lc.FilePath = c.Logging.FilePath
	lc.MaxSize = int64(c.Logging.MaxSizeMB)
	lc.MaxBackups = c.Logging.MaxBackups
	lc.MaxAge = c.Logging.MaxAgeDays
	lc.Compress = c.Logging.Compress
	return lc, nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Pipeline assembles the interceptor pipeline configuration.
func (c *Config) Pipeline(logger *logging.Logger) (interceptor.PipelineConfig, error) {
	settings, err := c.EngineSettings()
	if err != nil {
		return interceptor.PipelineConfig{}, err
	}
	toggle, err := c.ToggleShortcut()
	if err != nil {
		return interceptor.PipelineConfig{}, err
	}
	table, err := c.StrategyTable()
	if err != nil {
		return interceptor.PipelineConfig{}, err
	}

	comp := composition.DefaultOptions()
	comp.WordDelete = c.Injection.WordDelete
	comp.WordDeleteWindow = ms(c.Injection.WordDeleteWindowMs)

	sel := inject.DefaultSelectorOptions()
	sel.CacheTTL = ms(c.Injection.CacheTTLMs)
	sel.FocusRetries = c.Injection.FocusRetries

	inj := inject.DefaultOptions()
	inj.ChunkLimit = c.Injection.ChunkSize
	inj.AXRetries = c.Injection.AXRetries
	inj.AXBackoff = ms(c.Injection.AXBackoffMs)

	return interceptor.PipelineConfig{
		Interceptor: interceptor.Options{Toggle: toggle, Enabled: c.Input.StartEnabled},
		Settings:    settings,
		Composition: comp,
		Selector:    sel,
		Injector:    inj,
		Table:       table,
		Logger:      logger,
	}, nil
}
