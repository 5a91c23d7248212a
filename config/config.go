package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const defaultWatchInterval = 2 * time.Second

type Config struct {
	DataDir        string `json:"data_dir"`
	ListenAddr     string `json:"listen_addr"`
	ThemesDir      string `json:"themes_dir,omitempty"`
	DefaultTheme   string `json:"default_theme,omitempty"`
	DefaultVariant string `json:"default_variant,omitempty"`
	WatchInterval  string `json:"watch_interval"`
	Public         bool   `json:"public"`
}

func Default() Config {
	return Config{
		DataDir:       ".",
		ListenAddr:    ":8080",
		WatchInterval: defaultWatchInterval.String(),
	}
}

// WatchEvery returns the parsed watch interval, falling back to the default
// when the configured value is empty or unparsable.
func (c Config) WatchEvery() time.Duration {
	if c.WatchInterval == "" {
		return defaultWatchInterval
	}
	d, err := time.ParseDuration(c.WatchInterval)
	if err != nil || d <= 0 {
		return defaultWatchInterval
	}
	return d
}

func Load(dataDir string) (Config, error) {
	cfgPath := filepath.Join(dataDir, "themeplane.config")

	f, err := os.Open(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}

	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.WatchInterval == "" {
		cfg.WatchInterval = def.WatchInterval
	}

	return cfg, nil
}

func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.DataDir, "themeplane.config")

	// Create directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	tmp := cfgPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}
