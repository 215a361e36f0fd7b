package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// JST is the fixed UTC+9 zone used for log timestamps and spreadsheet dates.
var JST = time.FixedZone("JST", 9*60*60)

const (
	DefaultBaseURL       = "https://web.pref.hyogo.lg.jp"
	DefaultDataDir       = "./data"
	DefaultUserAgent     = "covid19-scraping/1.0 (github.com/pfrederiksen/covid19-scraping)"
	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 5
	DefaultRetryDelay    = 5 * time.Second
	DefaultLogLevel      = "info"
)

// Config holds settings that are fixed for the lifetime of the process.
type Config struct {
	BaseURL string `yaml:"base_url" validate:"required"`

	// DataDir must exist before use. A leading "~/" means the home directory.
	DataDir       string        `yaml:"data_dir" validate:"required"`
	UserAgent     string        `yaml:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
	RetryAttempts int           `yaml:"retry_attempts" validate:"gte=1"`
	RetryDelay    time.Duration `yaml:"retry_delay" validate:"gte=0"`
	LogLevel      string        `yaml:"log_level"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		DataDir:       DefaultDataDir,
		UserAgent:     DefaultUserAgent,
		Timeout:       DefaultTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryDelay:    DefaultRetryDelay,
		LogLevel:      DefaultLogLevel,
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped when
// path is empty), then COVID19_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.BaseURL = envOrDefault("COVID19_BASE_URL", c.BaseURL)
	c.DataDir = envOrDefault("COVID19_DATA_DIR", c.DataDir)
	c.UserAgent = envOrDefault("COVID19_USER_AGENT", c.UserAgent)
	c.LogLevel = envOrDefault("COVID19_LOG_LEVEL", c.LogLevel)

	if s := os.Getenv("COVID19_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid COVID19_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if s := os.Getenv("COVID19_RETRY_ATTEMPTS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid COVID19_RETRY_ATTEMPTS: %w", err)
		}
		c.RetryAttempts = n
	}
	if s := os.Getenv("COVID19_RETRY_DELAY"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid COVID19_RETRY_DELAY: %w", err)
		}
		c.RetryDelay = d
	}
	return nil
}

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		return name
	})
	return v
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return err
		}
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%s is required", fe.Field())
		case "gte":
			return fmt.Errorf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
		default:
			return fmt.Errorf("%s: failed %s check", fe.Field(), fe.Tag())
		}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute origin, got %q", c.BaseURL)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
