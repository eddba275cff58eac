package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/ryu-ryuk/omnidim-go/internal/paths"
)

const (
	EnvAPIKey       = "OMNIDIM_API_KEY"
	EnvAPIKeyLegacy = "OMNIDIMENSION_API_KEY"
	EnvBaseURL      = "OMNIDIM_BASE_URL"
	EnvTimeout      = "OMNIDIM_TIMEOUT"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config is the on-disk CLI configuration.
type Config struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
	// Timeout is a Go duration string such as "30s".
	Timeout string `toml:"timeout,omitempty"`
}

// Load reads the default config file, expanding ${VAR} placeholders.
// A missing file yields an empty Config.
func Load() (*Config, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom reads and parses the config file at path.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path, true)
}

// LoadForEditFrom reads path without expanding placeholders, so a later
// save does not bake secrets into the file.
func LoadForEditFrom(path string) (*Config, error) {
	return loadFrom(path, false)
}

func loadFrom(path string, expand bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if expand {
		cfg.APIKey = expandEnvVars(cfg.APIKey)
		cfg.BaseURL = expandEnvVars(cfg.BaseURL)
		cfg.Timeout = expandEnvVars(cfg.Timeout)
	}
	return &cfg, nil
}

// Validate checks the values that are set. Unexpanded ${VAR} placeholders
// are not checked.
func (c *Config) Validate() error {
	if c.BaseURL != "" && !hasPlaceholder(c.BaseURL) {
		if err := validateBaseURL(c.BaseURL); err != nil {
			return err
		}
	}
	if c.Timeout != "" && !hasPlaceholder(c.Timeout) {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("timeout %q: %w", c.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout %q: must be positive", c.Timeout)
		}
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("base_url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q: missing host", raw)
	}
	return nil
}

func hasPlaceholder(s string) bool {
	return envVarRe.MatchString(s)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// expandEnvVars replaces ${VAR} with the environment value. Unset
// variables are left as written.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// MaskKey hides all but the last eight characters of an API key.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return "Not set"
	case len(key) <= 8:
		return "***"
	default:
		return "***" + key[len(key)-8:]
	}
}
