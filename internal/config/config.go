package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

type LiveConfig struct {
	PollIntervalMillis int `json:"poll_interval_millis"`
}

type Config struct {
	// TelemetryDirs lists the roots scanned for telemetry files. Empty means
	// the built-in Gemini CLI locations.
	TelemetryDirs []string   `json:"telemetry_dirs"`
	Offline       bool       `json:"offline"`
	CheckUpdates  bool       `json:"check_updates"`
	Live          LiveConfig `json:"live"`
}

func DefaultConfig() Config {
	return Config{
		CheckUpdates: true,
		Live: LiveConfig{
			PollIntervalMillis: 100,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "gemusage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gemusage")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Live.PollIntervalMillis <= 0 {
		cfg.Live.PollIntervalMillis = DefaultConfig().Live.PollIntervalMillis
	}

	return cfg, nil
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// PollInterval returns the live-mode poll interval as a duration.
func (c Config) PollInterval() time.Duration {
	ms := c.Live.PollIntervalMillis
	if ms <= 0 {
		ms = DefaultConfig().Live.PollIntervalMillis
	}
	return time.Duration(ms) * time.Millisecond
}
