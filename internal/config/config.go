package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "DCHAT"
	DirName    = ".dchat"
	FileName   = "config.toml"
	DotEnvName = ".env"

	BackendTOML   = "toml"
	BackendFile   = "file"
	BackendPass   = "pass"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	DefaultEndpoint    = "https://luminai.my.id"
	DefaultPrompt      = "You are Danz-dev, a friendly assistant who is great at programming. Keep answers helpful and concise."
	DefaultTimeout     = 30 * time.Second
	DefaultMinInterval = time.Second
	DefaultResetHour   = 7
)

type Config struct {
	Dir      string
	State    StateConfig
	Endpoint EndpointConfig
	Quota    QuotaConfig
	Log      LogConfig

	v *viper.Viper
}

type StateConfig struct {
	Backend string
	Path    string
}

type EndpointConfig struct {
	URL         string
	Prompt      string
	Timeout     time.Duration
	MinInterval time.Duration
}

type QuotaConfig struct {
	ResetHour int
	AutoReset bool
}

type LogConfig struct {
	Level string
	File  string
}

// Load resolves configuration from defaults, ~/.dchat/config.toml (or
// configFile when set), ~/.dchat/.env and DCHAT_* environment variables,
// in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(homeDir, DirName)

	if err := loadDotEnv(filepath.Join(dir, DotEnvName)); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("toml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigFile(filepath.Join(dir, FileName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || (!errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Dir: dir,
		State: StateConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("state.backend"))),
			Path:    v.GetString("state.path"),
		},
		Endpoint: EndpointConfig{
			URL:         v.GetString("endpoint.url"),
			Prompt:      v.GetString("endpoint.prompt"),
			Timeout:     v.GetDuration("endpoint.timeout"),
			MinInterval: v.GetDuration("endpoint.min_interval"),
		},
		Quota: QuotaConfig{
			ResetHour: v.GetInt("quota.reset_hour"),
			AutoReset: v.GetBool("quota.auto_reset"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		v: v,
	}
	if cfg.State.Path == "" {
		cfg.State.Path = DefaultStatePath(dir, cfg.State.Backend)
		v.Set("state.path", cfg.State.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Viper exposes the resolved settings for adapters that read their own keys.
func (c *Config) Viper() *viper.Viper {
	return c.v
}

func (c *Config) Validate() error {
	var errs []error

	switch c.State.Backend {
	case BackendTOML, BackendFile, BackendPass, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown state backend %q", c.State.Backend))
	}
	if strings.TrimSpace(c.Endpoint.URL) == "" {
		errs = append(errs, errors.New("endpoint url is empty"))
	}
	if c.Endpoint.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("endpoint timeout must be positive, got %s", c.Endpoint.Timeout))
	}
	if c.Endpoint.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("endpoint min_interval must not be negative, got %s", c.Endpoint.MinInterval))
	}
	if c.Quota.ResetHour < 0 || c.Quota.ResetHour > 23 {
		errs = append(errs, fmt.Errorf("quota reset_hour must be within 0..23, got %d", c.Quota.ResetHour))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// DefaultStatePath is where a backend keeps its data when state.path is unset.
func DefaultStatePath(dir, backend string) string {
	switch backend {
	case BackendFile, BackendPass:
		return filepath.Join(dir, "state")
	case BackendSQLite:
		return filepath.Join(dir, "state.db")
	default:
		return filepath.Join(dir, "state.toml")
	}
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("state.backend", BackendTOML)
	v.SetDefault("endpoint.url", DefaultEndpoint)
	v.SetDefault("endpoint.prompt", DefaultPrompt)
	v.SetDefault("endpoint.timeout", DefaultTimeout)
	v.SetDefault("endpoint.min_interval", DefaultMinInterval)
	v.SetDefault("quota.reset_hour", DefaultResetHour)
	v.SetDefault("quota.auto_reset", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "dchat.log"))
}

// loadDotEnv populates the process environment from path without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}
