package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/roster"
	"github.com/ysy950803/chatroster/internal/source"
)

const (
	DefaultHTTPAddr = "127.0.0.1:5031"
	DefaultBaseURL  = "http://127.0.0.1:5030"
	EnvPrefix       = "CHATROSTER"
)

type SourceConfig struct {
	Type           string `mapstructure:"type" json:"type"`
	BaseURL        string `mapstructure:"base_url" json:"base_url"`
	Token          string `mapstructure:"token" json:"-"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	DBPath         string `mapstructure:"db_path" json:"db_path"`
	Watch          bool   `mapstructure:"watch" json:"watch"`
}

type RosterConfig struct {
	PageSize       int `mapstructure:"page_size" json:"page_size"`
	RefreshDelayMS int `mapstructure:"refresh_delay_ms" json:"refresh_delay_ms"`
}

type ResolverConfig struct {
	PacingDelayMS  int    `mapstructure:"pacing_delay_ms" json:"pacing_delay_ms"`
	WindowCap      int    `mapstructure:"window_cap" json:"window_cap"`
	FailurePolicy  string `mapstructure:"failure_policy" json:"failure_policy"`
	MaxRetries     int    `mapstructure:"max_retries" json:"max_retries"`
	RetryBackoffMS int    `mapstructure:"retry_backoff_ms" json:"retry_backoff_ms"`
}

type Config struct {
	HTTPAddr     string         `mapstructure:"http_addr" json:"http_addr"`
	RequireLogin bool           `mapstructure:"require_login" json:"require_login"`
	Source       SourceConfig   `mapstructure:"source" json:"source"`
	Roster       RosterConfig   `mapstructure:"roster" json:"roster"`
	Resolver     ResolverConfig `mapstructure:"resolver" json:"resolver"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", DefaultHTTPAddr)
	v.SetDefault("require_login", true)
	v.SetDefault("source.type", source.TypeAPI)
	v.SetDefault("source.base_url", DefaultBaseURL)
	v.SetDefault("source.token", "")
	v.SetDefault("source.db_path", "")
	v.SetDefault("source.timeout_seconds", 30)
	v.SetDefault("source.watch", true)
	v.SetDefault("roster.page_size", roster.DefaultPageSize)
	v.SetDefault("roster.refresh_delay_ms", roster.DefaultRefreshDelay.Milliseconds())
	v.SetDefault("resolver.pacing_delay_ms", roster.DefaultPacingDelay.Milliseconds())
	v.SetDefault("resolver.window_cap", roster.DefaultWindowCap)
	v.SetDefault("resolver.failure_policy", string(roster.FailAbort))
	v.SetDefault("resolver.max_retries", roster.DefaultMaxRetries)
	v.SetDefault("resolver.retry_backoff_ms", roster.DefaultRetryBackoff.Milliseconds())
}

// Load reads configPath (any format viper knows) when given, otherwise
// chatroster.yaml from the working directory, then CHATROSTER_* env vars.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("chatroster")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return decode(v.AllSettings())
}

func decode(settings map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, errors.ConfigInvalid("decode", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize trims fields and fills zero values with defaults.
func (c *Config) Normalize() error {
	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}

	c.Source.Type = strings.ToLower(strings.TrimSpace(c.Source.Type))
	if c.Source.Type == "" {
		c.Source.Type = source.TypeAPI
	}
	c.Source.BaseURL = strings.TrimSpace(c.Source.BaseURL)
	c.Source.DBPath = strings.TrimSpace(c.Source.DBPath)
	switch c.Source.Type {
	case source.TypeAPI:
		if c.Source.BaseURL == "" {
			c.Source.BaseURL = DefaultBaseURL
		}
	case source.TypeSQLite:
		if c.Source.DBPath == "" {
			return errors.ConfigInvalid("source.db_path", nil)
		}
	default:
		return errors.ConfigInvalid("source.type", errors.ErrSourceUnsupported)
	}

	if c.Roster.PageSize <= 0 {
		c.Roster.PageSize = roster.DefaultPageSize
	}
	if c.Roster.RefreshDelayMS < 0 {
		c.Roster.RefreshDelayMS = 0
	}

	if c.Resolver.PacingDelayMS < 0 {
		c.Resolver.PacingDelayMS = 0
	}
	if c.Resolver.WindowCap <= 0 {
		c.Resolver.WindowCap = roster.DefaultWindowCap
	}
	policy, err := roster.ParseFailurePolicy(c.Resolver.FailurePolicy)
	if err != nil {
		return errors.ConfigInvalid("resolver.failure_policy", err)
	}
	c.Resolver.FailurePolicy = string(policy)
	if c.Resolver.MaxRetries < 0 {
		c.Resolver.MaxRetries = 0
	}
	if c.Resolver.RetryBackoffMS < 0 {
		c.Resolver.RetryBackoffMS = 0
	}
	return nil
}

func (c *Config) SourceConfig() source.Config {
	return source.Config{
		Type:    c.Source.Type,
		BaseURL: c.Source.BaseURL,
		Token:   c.Source.Token,
		Timeout: time.Duration(c.Source.TimeoutSeconds) * time.Second,
		DBPath:  c.Source.DBPath,
	}
}

func (c *Config) RefreshDelay() time.Duration {
	return time.Duration(c.Roster.RefreshDelayMS) * time.Millisecond
}

// ResolverOptions maps the resolver section onto roster.ResolverConfig.
func (c *Config) ResolverOptions() roster.ResolverConfig {
	opts := roster.DefaultResolverConfig()
	opts.PacingDelay = time.Duration(c.Resolver.PacingDelayMS) * time.Millisecond
	opts.WindowCap = c.Resolver.WindowCap
	opts.Policy = roster.FailurePolicy(c.Resolver.FailurePolicy)
	opts.MaxRetries = c.Resolver.MaxRetries
	opts.RetryBackoff = time.Duration(c.Resolver.RetryBackoffMS) * time.Millisecond
	return opts
}
