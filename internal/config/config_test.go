package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"goxviet/internal/engine"
	"goxviet/internal/engine/enginetest"
	"goxviet/internal/inject"
	"goxviet/internal/interceptor"
	"goxviet/internal/logging"
	"goxviet/internal/platform/platformtest"
	"goxviet/internal/shortcut"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("GOXVIET_DATA_DIR", "/tmp/goxviet-test")
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Input.Method != "telex" {
		t.Errorf("expected telex, got %s", cfg.Input.Method)
	}
	if cfg.Expansion.DatabasePath != filepath.Join("/tmp/goxviet-test", "shortcuts.db") {
		t.Errorf("unexpected database path: %s", cfg.Expansion.DatabasePath)
	}
	toggle, err := cfg.ToggleShortcut()
	if err != nil {
		t.Fatalf("ToggleShortcut failed: %v", err)
	}
	if toggle != shortcut.Default() {
		t.Errorf("expected default toggle, got %v", toggle)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("GOXVIET_DATA_DIR", "/tmp/goxviet-test")
	if got := ConfigPath(); got != filepath.Join("/tmp/goxviet-test", "config.toml") {
		t.Errorf("unexpected config path: %s", got)
	}
	t.Setenv("GOXVIET_CONFIG", "/etc/goxviet.yaml")
	if got := ConfigPath(); got != "/etc/goxviet.yaml" {
		t.Errorf("GOXVIET_CONFIG not honored: %s", got)
	}
}

func TestLoadNonexistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Input.StartEnabled {
		t.Error("expected defaults")
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
version = 1

[input]
method = "vni"
modern_tone = false

[toggle]
shortcut = "ctrl+shift"

[injection]
ax_retries = 5

[injection.overrides]
"com.example.Editor" = "slow"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config invalid: %v", err)
	}

	settings, err := cfg.EngineSettings()
	if err != nil {
		t.Fatalf("EngineSettings failed: %v", err)
	}
	if settings.Method != engine.MethodVNI || settings.ModernTone {
		t.Errorf("unexpected settings: %+v", settings)
	}
	if !settings.EscRestore {
		t.Error("unset keys should keep their defaults")
	}

	toggle, err := cfg.ToggleShortcut()
	if err != nil {
		t.Fatalf("ToggleShortcut failed: %v", err)
	}
	if !toggle.IsModifierOnly() {
		t.Errorf("expected modifier-only toggle, got %v", toggle)
	}

	table, err := cfg.StrategyTable()
	if err != nil {
		t.Fatalf("StrategyTable failed: %v", err)
	}
	if d := table.Decide(inject.RoleTextField, "com.example.Editor"); d.Strategy != inject.Slow || d.Rule != "override" {
		t.Errorf("override not applied: %+v", d)
	}
	if cfg.Injection.AXRetries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.Injection.AXRetries)
	}
}

func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	writeFile(t, jsonPath, `{"version": 1, "input": {"method": "vni"}}`)
	cfg, err := Load(jsonPath)
	if err != nil {
		t.Fatalf("Load JSON failed: %v", err)
	}
	if cfg.Input.Method != "vni" {
		t.Errorf("expected vni, got %s", cfg.Input.Method)
	}

	yamlPath := filepath.Join(dir, "config.yaml")
	writeFile(t, yamlPath, "version: 1\ninput:\n  skip_w: true\nlogging:\n  level: debug\n")
	cfg, err = Load(yamlPath)
	if err != nil {
		t.Fatalf("Load YAML failed: %v", err)
	}
	if !cfg.Input.SkipW || cfg.Logging.Level != "debug" {
		t.Errorf("YAML values not applied: %+v %+v", cfg.Input, cfg.Logging)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "this is not valid toml {{{\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOXVIET_INPUT_METHOD", "vni")
	t.Setenv("GOXVIET_TOGGLE_SHORTCUT", "cmd+shift+v")
	t.Setenv("GOXVIET_LOG_LEVEL", "debug")
	t.Setenv("GOXVIET_START_ENABLED", "false")
	t.Setenv("GOXVIET_DB_PATH", "/tmp/x.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Input.Method != "vni" || cfg.Toggle.Shortcut != "cmd+shift+v" ||
		cfg.Logging.Level != "debug" || cfg.Input.StartEnabled || cfg.Expansion.DatabasePath != "/tmp/x.db" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = 0
	cfg.Input.Method = "qwerty"
	cfg.Toggle.Shortcut = "ctrl+nosuchkey"
	cfg.Injection.ChunkSize = 0
	cfg.Injection.Overrides = map[string]string{"com.example.App": "warp"}
	cfg.Expansion.DatabasePath = ""
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("validation errors should match ErrInvalidConfig")
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	fields := strings.Join(verrs.Fields(), ",")
	for _, want := range []string{
		"version", "input.method", "toggle.shortcut", "injection.chunk_size",
		"injection.overrides[com.example.App]", "expansion.database_path", "logging.level",
	} {
		if !strings.Contains(fields, want) {
			t.Errorf("missing %s in %s", want, fields)
		}
	}
}

func TestValidateFileOutputNeedsPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for file output without a path")
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Injection.Overrides["com.example.App"] = "slow"
	clone := cfg.Clone()
	clone.Injection.Overrides["com.example.App"] = "fast"
	if cfg.Injection.Overrides["com.example.App"] != "slow" {
		t.Error("clone shares the overrides map")
	}
}

func TestPipeline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.StartEnabled = false
	cfg.Injection.WordDelete = false
	cfg.Injection.WordDeleteWindowMs = 80
	cfg.Injection.AXBackoffMs = 3

	pc, err := cfg.Pipeline(nil)
	if err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}
	if pc.Interceptor.Enabled {
		t.Error("start_enabled not carried")
	}
	if pc.Composition.WordDelete || pc.Composition.WordDeleteWindow != 80*time.Millisecond {
		t.Errorf("composition options wrong: %+v", pc.Composition)
	}
	if pc.Injector.AXBackoff != 3*time.Millisecond {
		t.Errorf("unexpected backoff %v", pc.Injector.AXBackoff)
	}
	if pc.Selector.CacheTTL != inject.DefaultCacheTTL {
		t.Errorf("unexpected cache ttl %v", pc.Selector.CacheTTL)
	}
	if pc.Table == nil {
		t.Error("expected a strategy table")
	}

	cfg.Input.Method = "qwerty"
	if _, err := cfg.Pipeline(nil); err == nil {
		t.Error("expected error for bad method")
	}
}

func TestPipelineZeroRetries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Injection.AXRetries = 0
	cfg.Injection.FocusRetries = 0
	cfg.Injection.AXBackoffMs = 0
	cfg.Logging.Output = "discard"

	pc, err := cfg.Pipeline(nil)
	if err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}
	if pc.Injector.AXRetries != 0 || pc.Selector.FocusRetries != 0 {
		t.Fatalf("zero retries not carried: %+v %+v", pc.Injector, pc.Selector)
	}
	rec := &inject.RecordingDelayer{}
	pc.Injector.Delayer = rec
	pc.Selector.Delayer = rec

	env := platformtest.NewEnv(inject.RoleTextField, "com.apple.Spotlight", "ab")
	env.Field.FailWrites = 100
	p := interceptor.Build(env.Services(), enginetest.New(), pc)

	rep := p.Injector.Replace(1, []rune("ă"))
	if rep.Attempts != 1 {
		t.Errorf("expected a single direct attempt, got %d", rep.Attempts)
	}
	if rep.Outcome != inject.OutcomeTransientFailure {
		t.Errorf("unexpected outcome %s", rep.Outcome)
	}
	if d := rec.Delays(); len(d) != 0 {
		t.Errorf("expected no backoff, got %v", d)
	}
	if got := env.Field.Text(); got != "aă" {
		t.Errorf("expected fallback to type the text, got %q", got)
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "json"
	lc, err := cfg.LoggerConfig()
	if err != nil {
		t.Fatalf("LoggerConfig failed: %v", err)
	}
	if lc.Level != logging.LevelWarn || lc.Format != logging.FormatJSON {
		t.Errorf("unexpected logging config: %+v", lc)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"config.toml", "config.json", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Input.Method = "vni"
			cfg.Injection.Overrides["com.example.App"] = "ax_direct"

			path := filepath.Join(dir, "sub", name)
			if err := SaveConfig(cfg, path); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Input.Method != "vni" || loaded.Injection.Overrides["com.example.App"] != "ax_direct" {
				t.Errorf("round trip lost values: %+v", loaded)
			}
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, created, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if !created || cfg == nil {
		t.Fatal("expected a new config file")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	_, created, err = LoadOrCreate(path)
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}
	if created {
		t.Error("existing file should not be recreated")
	}
}
