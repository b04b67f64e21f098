package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	evoting "github.com/jicksta/evoting-mock"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "evoting.config"

const (
	DefaultListenAddress   = ":5000"
	DefaultAllowedOrigin   = "https://localhost:3000"
	DefaultShutdownTimeout = "30s"
)

var ErrInvalidConfig = errors.New("invalid config")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	ListenAddress   string `yaml:"listenAddress"   split_words:"true"`
	AllowedOrigin   string `yaml:"allowedOrigin"   split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout" split_words:"true"`
	Fixture         string `yaml:"fixture"`

	// Behaviour switches of the election store
	RatingValidation     bool   `yaml:"ratingValidation"     split_words:"true"`
	VoterAddressMode     string `yaml:"voterAddressMode"     split_words:"true"`
	RequireAdminToEnd    bool   `yaml:"requireAdminToEnd"    split_words:"true"`
	IncludeWinner        bool   `yaml:"includeWinner"        split_words:"true"`
	UniqueCandidateNames bool   `yaml:"uniqueCandidateNames" split_words:"true"`
	DefaultThreshold     int    `yaml:"defaultThreshold"     split_words:"true"`
	EligibilityToken     string `yaml:"eligibilityToken"     split_words:"true"`
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	opts := evoting.DefaultOptions()
	return &Config{
		ListenAddress:        DefaultListenAddress,
		AllowedOrigin:        DefaultAllowedOrigin,
		ShutdownTimeout:      DefaultShutdownTimeout,
		RatingValidation:     opts.RatingValidation,
		VoterAddressMode:     opts.VoterAddressMode,
		RequireAdminToEnd:    opts.RequireAdminToEnd,
		IncludeWinner:        opts.IncludeWinner,
		UniqueCandidateNames: opts.UniqueCandidateNames,
		DefaultThreshold:     opts.DefaultThreshold,
		EligibilityToken:     opts.EligibilityToken,
	}
}

// LoadConfig layers the YAML file and then EVOTING_* environment variables over the defaults. With
// no explicit path it looks for ~/.evoting/evoting.yaml and then /etc/evoting/evoting.yaml.
func LoadConfig(configFile string) (*Config, error) {
	cfg := Default()
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".evoting", "evoting.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/evoting/evoting.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process("evoting", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.VoterAddressMode {
	case evoting.AddressModeClient, evoting.AddressModeGenerate:
	default:
		return fmt.Errorf(
			"%w: voterAddressMode %q (must be '%s' or '%s')",
			ErrInvalidConfig,
			c.VoterAddressMode,
			evoting.AddressModeClient,
			evoting.AddressModeGenerate,
		)
	}
	if c.DefaultThreshold < 1 {
		return fmt.Errorf("%w: defaultThreshold must be positive, got %d", ErrInvalidConfig, c.DefaultThreshold)
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return fmt.Errorf("%w: shutdownTimeout: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	return time.ParseDuration(c.ShutdownTimeout)
}

// StoreOptions converts the behaviour switches for evoting.NewMemoryStore.
func (c *Config) StoreOptions() evoting.Options {
	return evoting.Options{
		RatingValidation:     c.RatingValidation,
		VoterAddressMode:     c.VoterAddressMode,
		RequireAdminToEnd:    c.RequireAdminToEnd,
		IncludeWinner:        c.IncludeWinner,
		UniqueCandidateNames: c.UniqueCandidateNames,
		DefaultThreshold:     c.DefaultThreshold,
		EligibilityToken:     c.EligibilityToken,
	}
}
