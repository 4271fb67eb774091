package humanizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEndpointURL is where the humanizer service listens in a local checkout.
const DefaultEndpointURL = "http://localhost:5000/api/process-text"

// Config is the runtime configuration for talking to the humanizer service.
type Config struct {
	// EndpointURL is the full URL requests are POSTed to.
	EndpointURL string
	// CAPath is an optional PEM bundle trusted for TLS instead of the system roots.
	CAPath string
	// Timeout bounds a single request. Zero leaves timing to the network stack.
	Timeout time.Duration
	// MinInterval throttles dispatches triggered from one surface. Zero disables it.
	MinInterval time.Duration
}

// fileConfig mirrors the optional YAML config file.
//
// Example (YAML):
//
//	endpoint_url: https://humanizer.internal/api/process-text
//	ca_path: /etc/ssl/humanizer-ca.pem
//	timeout: 45s
//	min_interval: 500ms
type fileConfig struct {
	EndpointURL string `yaml:"endpoint_url"`
	CAPath      string `yaml:"ca_path"`
	Timeout     string `yaml:"timeout"`
	MinInterval string `yaml:"min_interval"`
}

// LoadConfig resolves Config from, lowest precedence first: defaults, the YAML file
// named by HUMANIZER_CONFIG, a dotenv file, and the process environment.
//
// Recognized env vars:
//   - HUMANIZER_ENV_FILE (dotenv path, default ".env" when present)
//   - HUMANIZER_CONFIG (YAML path)
//   - HUMANIZER_ENDPOINT_URL
//   - HUMANIZER_CA_PATH
//   - HUMANIZER_TIMEOUT
//   - HUMANIZER_MIN_INTERVAL
func LoadConfig() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{EndpointURL: DefaultEndpointURL}

	if p := strings.TrimSpace(os.Getenv("HUMANIZER_CONFIG")); p != "" {
		fc, err := readConfigFile(p)
		if err != nil {
			return Config{}, err
		}
		if err := cfg.apply(fc, "HUMANIZER_CONFIG"); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.apply(fileConfig{
		EndpointURL: os.Getenv("HUMANIZER_ENDPOINT_URL"),
		CAPath:      os.Getenv("HUMANIZER_CA_PATH"),
		Timeout:     os.Getenv("HUMANIZER_TIMEOUT"),
		MinInterval: os.Getenv("HUMANIZER_MIN_INTERVAL"),
	}, "env"); err != nil {
		return Config{}, err
	}

	if _, err := parseEndpoint(cfg.EndpointURL); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotEnv() error {
	path := strings.TrimSpace(os.Getenv("HUMANIZER_ENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	// godotenv.Load never overrides variables that are already set.
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load HUMANIZER_ENV_FILE %q: %w", path, err)
	}
	return nil
}

func readConfigFile(path string) (fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read HUMANIZER_CONFIG file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse HUMANIZER_CONFIG YAML: %w", err)
	}
	return fc, nil
}

// apply overlays the non-empty values of fc onto c.
func (c *Config) apply(fc fileConfig, source string) error {
	if v := strings.TrimSpace(fc.EndpointURL); v != "" {
		c.EndpointURL = v
	}
	if v := strings.TrimSpace(fc.CAPath); v != "" {
		c.CAPath = v
	}
	if v := strings.TrimSpace(fc.Timeout); v != "" {
		d, err := parseNonNegativeDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s timeout=%q: %w", source, v, err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(fc.MinInterval); v != "" {
		d, err := parseNonNegativeDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s min_interval=%q: %w", source, v, err)
		}
		c.MinInterval = d
	}
	return nil
}

func parseNonNegativeDuration(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}
