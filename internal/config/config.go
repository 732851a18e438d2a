// Package config loads the audit configuration from flags and environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/naka-gawa/nuget-sign-audit/internal/domain"
	"github.com/naka-gawa/nuget-sign-audit/internal/gateway"
)

// EnvPrefix prefixes every environment variable read by Load, e.g.
// NUGET_AUDIT_TOP or NUGET_AUDIT_TOKEN.
const EnvPrefix = "NUGET_AUDIT"

// Default endpoints of the public gallery.
const (
	DefaultStatsURL   = "https://www.nuget.org/stats/packages"
	DefaultAPIBaseURL = "https://api.nuget.org/"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the audit configuration.
// Use mapstructure tags for Viper unmarshaling.
type Config struct {
	StatsURL    string `mapstructure:"stats-url"`
	APIBaseURL  string `mapstructure:"api-base-url"`
	AllPackages bool   `mapstructure:"all-packages"`
	Top         int    `mapstructure:"top"`
	Strategy    string `mapstructure:"strategy"`
	NuGetPath   string `mapstructure:"nuget-path"`
	TempDir     string `mapstructure:"temp-dir"`
	Format      string `mapstructure:"format"`
	Progress    string `mapstructure:"progress"`
	Token       string `mapstructure:"token"`
	Verbose     bool   `mapstructure:"verbose"`
}

// CommunityOnly reports whether the community-packages table is audited.
func (c *Config) CommunityOnly() bool { return !c.AllPackages }

func setDefaults(v *viper.Viper) {
	v.SetDefault("stats-url", DefaultStatsURL)
	v.SetDefault("api-base-url", DefaultAPIBaseURL)
	v.SetDefault("all-packages", false)
	v.SetDefault("top", domain.DefaultTop)
	v.SetDefault("strategy", gateway.StrategyDownload)
	v.SetDefault("nuget-path", "nuget")
	v.SetDefault("temp-dir", os.TempDir())
	v.SetDefault("format", FormatText)
	v.SetDefault("progress", gateway.ProgressAuto)
	v.SetDefault("token", "")
	v.SetDefault("verbose", false)
}

// Load resolves the configuration. Changed flags win over environment
// variables, which win over defaults.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the audit cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Top <= 0 {
		errs = append(errs, fmt.Errorf("top must be positive, got %d", c.Top))
	}
	for name, raw := range map[string]string{"stats-url": c.StatsURL, "api-base-url": c.APIBaseURL} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if !oneOf(c.Strategy, gateway.StrategyDownload, gateway.StrategyInstall) {
		errs = append(errs, fmt.Errorf("unknown strategy %q", c.Strategy))
	}
	if !oneOf(c.Format, FormatText, FormatJSON, FormatYAML) {
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}
	if !oneOf(c.Progress, gateway.ProgressAuto, gateway.ProgressTTY, gateway.ProgressPlain) {
		errs = append(errs, fmt.Errorf("unknown progress mode %q", c.Progress))
	}
	if c.NuGetPath == "" {
		errs = append(errs, errors.New("nuget-path must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func oneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
