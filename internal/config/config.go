package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Defaults applied before the config file and environment are consulted.
const (
	DefaultServerURL       = "http://localhost:5001"
	DefaultPushPath        = "/push"
	DefaultPollInterval    = 5 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultDiscoverTimeout = 10 * time.Second
)

// Config holds client settings for the relaydeck dashboard.
//
// Values are resolved in three layers: built-in defaults, then the YAML
// config file (if present), then environment variables. The environment
// always wins, which is how secrets and per-shell overrides are passed in.
type Config struct {
	// ServerURL is the base URL of the hub backend (scheme + host + port).
	ServerURL string `yaml:"server_url" envconfig:"RELAYDECK_SERVER_URL"`

	// PushPath is the websocket path for the push channel, relative to ServerURL.
	PushPath string `yaml:"push_path" envconfig:"RELAYDECK_PUSH_PATH"`

	// PollInterval is the cadence of the full-state poll fallback.
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"RELAYDECK_POLL_INTERVAL"`

	// RequestTimeout bounds each individual API request.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"RELAYDECK_REQUEST_TIMEOUT"`

	// DiscoverTimeout bounds mDNS scans for relay boards.
	DiscoverTimeout time.Duration `yaml:"discover_timeout" envconfig:"RELAYDECK_DISCOVER_TIMEOUT"`

	// LogLevel, when set, enables zap output at the given level.
	LogLevel string `yaml:"log_level" envconfig:"RELAYDECK_LOG_LEVEL"`
}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		ServerURL:       DefaultServerURL,
		PushPath:        DefaultPushPath,
		PollInterval:    DefaultPollInterval,
		RequestTimeout:  DefaultRequestTimeout,
		DiscoverTimeout: DefaultDiscoverTimeout,
	}
}

// DefaultPath returns the conventional location of the config file,
// ~/.config/relaydeck/config.yaml, or a file in the working directory when
// the home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "relaydeck.yaml"
	}
	return filepath.Join(home, ".config", "relaydeck", "config.yaml")
}

// Load resolves the configuration from the given YAML file path and the
// environment. A missing file is not an error; defaults still apply and the
// environment can still override.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			decoder := yaml.NewDecoder(f)
			if err := decoder.Decode(&cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
	}

	// Environment overrides the file. This can be used to either override
	// the config or pass in secrets.
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.PushPath == "" || c.PushPath[0] != '/' {
		return fmt.Errorf("push_path must start with '/', got %q", c.PushPath)
	}
	return nil
}
