// Package config loads the runtime configuration of the portfolio binary from
// defaults, an optional YAML file and PORTFOLIO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "PORTFOLIO"

	BackendFS  = "fs"
	BackendGCS = "gcs"
)

type Config struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	Log             LogConfig     `mapstructure:"log"`
	Content         ContentConfig `mapstructure:"content"`
	DB              DBConfig      `mapstructure:"db"`
	GitHub          GitHubConfig  `mapstructure:"github"`
	CMS             CMSConfig     `mapstructure:"cms"`
	Build           BuildConfig   `mapstructure:"build"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ContentConfig selects the content store: a local directory or a GCS bucket
// prefix.
type ContentConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// GitHubConfig points at the repository the CMS commits to. Sync is enabled
// only when Owner and Repo are both set.
type GitHubConfig struct {
	Owner         string `mapstructure:"owner"`
	Repo          string `mapstructure:"repo"`
	Token         string `mapstructure:"token"`
	WebhookSecret string `mapstructure:"webhookSecret"`
	ContentPath   string `mapstructure:"contentPath"`
}

func (g GitHubConfig) Enabled() bool {
	return g.Owner != "" && g.Repo != ""
}

type CMSConfig struct {
	Upstream string `mapstructure:"upstream"`
}

type BuildConfig struct {
	OutputDir   string `mapstructure:"outputDir"`
	Concurrency int    `mapstructure:"concurrency"`
}

func setDefaults(v *viper.Viper) {
	// every key needs a default so AutomaticEnv can override it on Unmarshal
	v.SetDefault("addr", ":8080")
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("content.backend", BackendFS)
	v.SetDefault("content.dir", "content")
	v.SetDefault("content.bucket", "")
	v.SetDefault("content.prefix", "")
	v.SetDefault("db.path", "./portfolio.db")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.webhookSecret", "")
	v.SetDefault("github.contentPath", "content")
	v.SetDefault("cms.upstream", "")
	v.SetDefault("build.outputDir", "public")
	v.SetDefault("build.concurrency", 4)
}

// Load reads the configuration. With an empty cfgFile a portfolio.yaml in the
// working directory is used when present; an explicit cfgFile must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("portfolio")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot be served.
func (c *Config) Validate() error {
	var errs []error

	switch c.Content.Backend {
	case BackendFS:
		if c.Content.Dir == "" {
			errs = append(errs, errors.New("content.dir is required for the fs backend"))
		}
	case BackendGCS:
		if c.Content.Bucket == "" {
			errs = append(errs, errors.New("content.bucket is required for the gcs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown content.backend %q", c.Content.Backend))
	}

	if c.GitHub.Enabled() && c.GitHub.WebhookSecret == "" {
		errs = append(errs, errors.New("github.webhookSecret is required when github sync is configured"))
	}
	if c.Build.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("build.concurrency must be positive, got %d", c.Build.Concurrency))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdownTimeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
