package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
)

// Config is the CLI configuration. File values are overridden by ACCONVERT_*
// environment variables, which are overridden by flags.
type Config struct {
	BaseURL      string `toml:"base_url"`
	Agent        string `toml:"agent"`
	OutputFormat string `toml:"output_format"`
	Mode         string `toml:"mode"`
	CacheFile    string `toml:"cache_file"`
	PollInterval string `toml:"poll_interval"`
	Timeout      string `toml:"timeout"`

	pollInterval time.Duration
	timeout      time.Duration
}

func defaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:3000",
		Agent:        "gemini",
		OutputFormat: "gherkin",
		Mode:         string(relaysdk.ModeAuto),
		CacheFile:    relaysdk.DefaultCachePath(),
		PollInterval: relaysdk.DefaultPollInterval.String(),
		Timeout:      relaysdk.DefaultAwaitTimeout.String(),
	}
}

// defaultConfigPath is $XDG_CONFIG_HOME/acconvert/config.toml.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "acconvert", "config.toml")
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file is not an error; a missing explicit one is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"ACCONVERT_BASE_URL":      &c.BaseURL,
		"ACCONVERT_AGENT":         &c.Agent,
		"ACCONVERT_OUTPUT_FORMAT": &c.OutputFormat,
		"ACCONVERT_MODE":          &c.Mode,
		"ACCONVERT_CACHE_FILE":    &c.CacheFile,
		"ACCONVERT_POLL_INTERVAL": &c.PollInterval,
		"ACCONVERT_TIMEOUT":       &c.Timeout,
	}
	for key, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}
}

func (c *Config) normalize() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return errors.New("base_url must be set")
	}

	switch relaysdk.Mode(c.Mode) {
	case relaysdk.ModeAuto, relaysdk.ModeDirect, relaysdk.ModeAsync:
	default:
		return fmt.Errorf("mode %q: want auto, direct or async", c.Mode)
	}

	var err error
	if c.pollInterval, err = parsePositiveDuration("poll_interval", c.PollInterval); err != nil {
		return err
	}
	if c.timeout, err = parsePositiveDuration("timeout", c.Timeout); err != nil {
		return err
	}

	if strings.HasPrefix(c.CacheFile, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.CacheFile = filepath.Join(home, c.CacheFile[2:])
		}
	}
	return nil
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}
