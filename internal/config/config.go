package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "KASHI_CONFIG"
	// EnvAPIURL overrides api.base_url.
	EnvAPIURL = "KASHI_API_URL"

	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 10
	DefaultLogLevel = "warn"
)

// Duration is a time.Duration written as "30s" or "1h" in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultPageSizes are the page sizes offered when listing.page_sizes is unset.
var DefaultPageSizes = []int{5, 10, 20, 50}

// KashiConfig represents the top-level kashi.yml (or kashi.toml) configuration
type KashiConfig struct {
	Version       string              `yaml:"version" toml:"version"`
	API           APIConfig           `yaml:"api" toml:"api"`
	Auth          AuthConfig          `yaml:"auth" toml:"auth"`
	Listing       ListingConfig       `yaml:"listing,omitempty" toml:"listing"`
	Session       SessionConfig       `yaml:"session,omitempty" toml:"session"`
	Images        ImagesConfig        `yaml:"images,omitempty" toml:"images"`
	Log           LogConfig           `yaml:"log,omitempty" toml:"log"`
	Notifications NotificationsConfig `yaml:"notifications,omitempty" toml:"notifications"`
}

// APIConfig locates the marketplace API.
type APIConfig struct {
	BaseURL string   `yaml:"base_url" toml:"base_url"`
	Timeout Duration `yaml:"timeout,omitempty" toml:"timeout"`
}

// AuthConfig configures the OAuth2 authorization-code login
type AuthConfig struct {
	AuthorizeURL string   `yaml:"authorize_url" toml:"authorize_url"`
	TokenURL     string   `yaml:"token_url" toml:"token_url"`
	ClientID     string   `yaml:"client_id" toml:"client_id"`
	ClientSecret string   `yaml:"client_secret,omitempty" toml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url" toml:"redirect_url"`
	Scopes       []string `yaml:"scopes,omitempty" toml:"scopes"`
}

// ListingConfig holds listing defaults.
type ListingConfig struct {
	PageSize  int   `yaml:"page_size,omitempty" toml:"page_size"`
	PageSizes []int `yaml:"page_sizes,omitempty" toml:"page_sizes"`
}

// SessionConfig selects where the login session lives.
type SessionConfig struct {
	Store    string   `yaml:"store,omitempty" toml:"store"` // "file" (default) or "redis"
	Path     string   `yaml:"path,omitempty" toml:"path"`
	RedisURL string   `yaml:"redis_url,omitempty" toml:"redis_url"`
	TTL      Duration `yaml:"ttl,omitempty" toml:"ttl"`
}

// ImagesConfig selects how images are uploaded
type ImagesConfig struct {
	Mode string    `yaml:"mode,omitempty" toml:"mode"` // "api" (default) or "s3"
	S3   *S3Config `yaml:"s3,omitempty" toml:"s3"`
}

// S3Config specifies direct bucket uploads
type S3Config struct {
	Bucket    string `yaml:"bucket" toml:"bucket"`
	Region    string `yaml:"region" toml:"region"`
	Endpoint  string `yaml:"endpoint,omitempty" toml:"endpoint"`
	AccessKey string `yaml:"access_key,omitempty" toml:"access_key"`
	SecretKey string `yaml:"secret_key,omitempty" toml:"secret_key"`
	PublicURL string `yaml:"public_url,omitempty" toml:"public_url"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level,omitempty" toml:"level"`
}

// NotificationsConfig toggles offer emails.
type NotificationsConfig struct {
	Enabled *bool `yaml:"enabled,omitempty" toml:"enabled"`
}

// NotificationsEnabled reports whether offer emails are sent (default true).
func (c *KashiConfig) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// Validate performs strict validation on the configuration and applies defaults
func (c *KashiConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := c.API.validate(); err != nil {
		return err
	}
	if err := c.Listing.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if err := c.Images.validate(); err != nil {
		return err
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "":
		c.Log.Level = DefaultLogLevel
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Log.Level)
	}

	if c.Auth.TokenURL != "" && c.Auth.ClientID == "" {
		return fmt.Errorf("auth.client_id is required when auth.token_url is set")
	}
	if len(c.Auth.Scopes) == 0 {
		c.Auth.Scopes = []string{"openid", "email", "profile"}
	}

	return nil
}

func (a *APIConfig) validate() error {
	if a.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("api.base_url must be an absolute URL: %s", a.BaseURL)
	}
	if a.Timeout == 0 {
		a.Timeout = Duration(DefaultTimeout)
	}
	if a.Timeout < 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", a.Timeout)
	}
	return nil
}

func (l *ListingConfig) validate() error {
	if l.PageSize == 0 {
		l.PageSize = DefaultPageSize
	}
	if l.PageSize < 1 {
		return fmt.Errorf("listing.page_size must be >= 1, got %d", l.PageSize)
	}
	if len(l.PageSizes) == 0 {
		l.PageSizes = append([]int(nil), DefaultPageSizes...)
	}
	for _, size := range l.PageSizes {
		if size < 1 {
			return fmt.Errorf("listing.page_sizes must all be >= 1, got %d", size)
		}
	}
	return nil
}

func (s *SessionConfig) validate() error {
	switch s.Store {
	case "", "file":
		s.Store = "file"
		if s.Path == "" {
			s.Path = filepath.Join(configHome(), "kashi", "session.yml")
		}
	case "redis":
		if s.RedisURL == "" {
			return fmt.Errorf("session.redis_url is required when session.store is 'redis'")
		}
	default:
		return fmt.Errorf("invalid session.store: %s (must be 'file' or 'redis')", s.Store)
	}
	if s.TTL < 0 {
		return fmt.Errorf("session.ttl must be >= 0, got %s", s.TTL)
	}
	return nil
}

func (i *ImagesConfig) validate() error {
	switch i.Mode {
	case "", "api":
		i.Mode = "api"
	case "s3":
		if i.S3 == nil {
			return fmt.Errorf("images.mode is 's3' but no images.s3 configuration")
		}
		if i.S3.Bucket == "" {
			return fmt.Errorf("images.s3.bucket is required")
		}
		if i.S3.Region == "" {
			return fmt.Errorf("images.s3.region is required")
		}
		if (i.S3.AccessKey == "") != (i.S3.SecretKey == "") {
			return fmt.Errorf("images.s3.access_key and images.s3.secret_key must be set together")
		}
	default:
		return fmt.Errorf("invalid images.mode: %s (must be 'api' or 's3')", i.Mode)
	}
	return nil
}

// Load reads and validates the configuration at path. Files ending in .toml are
// parsed as TOML, everything else as YAML.
func Load(path string) (*KashiConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config KashiConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		config.API.BaseURL = v
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultPath returns the config file to use: flag if set, then $KASHI_CONFIG,
// then $XDG_CONFIG_HOME/kashi/kashi.yml.
func DefaultPath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return filepath.Join(configHome(), "kashi", "kashi.yml")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}
