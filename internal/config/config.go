// Package config loads application configuration from environment variables
// and command-line flags, and publishes it once for the process lifetime.
package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/samber/lo"

	"github.com/ericfisherdev/vpspanel/internal/domain/model"
	"github.com/ericfisherdev/vpspanel/internal/domain/port/driven"
)

var (
	// ErrInvalidConfig is the kind shared by every configuration error.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAlreadyInitialized is returned by Init when a configuration has
	// already been published. The first configuration stays active.
	ErrAlreadyInitialized = fmt.Errorf("%w: configuration already initialized", ErrInvalidConfig)

	// ErrNotInitialized is returned by Get before Init has succeeded.
	ErrNotInitialized = errors.New("configuration not initialized")
)

// Config holds the application configuration. Environment-backed fields are
// populated from VPSPANEL_* variables; Credentials come from flags.
type Config struct {
	ListenAddr      string        `env:"VPSPANEL_LISTEN_ADDR" envDefault:"127.0.0.1:3000"`
	UpstreamURL     string        `env:"VPSPANEL_UPSTREAM_URL" envDefault:"https://api.64clouds.com"`
	UpstreamTimeout time.Duration `env:"VPSPANEL_UPSTREAM_TIMEOUT" envDefault:"30s"`
	LogLevel        slog.Level    `env:"VPSPANEL_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"VPSPANEL_LOG_FORMAT" envDefault:"text"`

	Credentials []model.Credential
}

// Load reads VPSPANEL_* environment variables and parses args (without the
// program name) for the --veids and --api-keys flags. Both flags take
// comma-separated lists and may be repeated; entries are paired by position.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("%w: VPSPANEL_LOG_FORMAT must be \"text\" or \"json\", got %q", ErrInvalidConfig, cfg.LogFormat)
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("%w: VPSPANEL_UPSTREAM_TIMEOUT must be positive, got %s", ErrInvalidConfig, cfg.UpstreamTimeout)
	}

	var veids, apiKeys []string
	fs := flag.NewFlagSet("vpspanel", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Func("veids", "comma-separated VEIDs, paired by position with --api-keys", func(v string) error {
		veids = append(veids, splitList(v)...)
		return nil
	})
	fs.Func("api-keys", "comma-separated API keys, paired by position with --veids", func(v string) error {
		apiKeys = append(apiKeys, splitList(v)...)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrInvalidConfig, fs.Arg(0))
	}

	creds, err := ParseCredentials(veids, apiKeys)
	if err != nil {
		return nil, err
	}
	cfg.Credentials = creds

	return cfg, nil
}

// ParseCredentials pairs veids and apiKeys by position. The lists must have
// equal length.
func ParseCredentials(veids, apiKeys []string) ([]model.Credential, error) {
	if len(veids) != len(apiKeys) {
		return nil, fmt.Errorf("%w: the number of veids (%d) and api keys (%d) must be the same",
			ErrInvalidConfig, len(veids), len(apiKeys))
	}

	return lo.Map(lo.Zip2(veids, apiKeys), func(p lo.Tuple2[string, string], _ int) model.Credential {
		return model.Credential{VEID: p.A, APIKey: p.B}
	}), nil
}

func splitList(v string) []string {
	return lo.Compact(lo.Map(strings.Split(v, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*Store)(nil)

// Store holds a Config that can be published exactly once. The zero value is
// ready to use. After Init the Config is read-only, so reads take no lock.
type Store struct {
	cfg atomic.Pointer[Config]
}

// Init publishes cfg. A second call fails with ErrAlreadyInitialized and
// leaves the first Config in place.
func (s *Store) Init(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil configuration", ErrInvalidConfig)
	}
	if !s.cfg.CompareAndSwap(nil, cfg) {
		return ErrAlreadyInitialized
	}
	return nil
}

// Get returns the published Config.
func (s *Store) Get() (*Config, error) {
	cfg := s.cfg.Load()
	if cfg == nil {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}

// Credentials returns a copy of the published credential list.
func (s *Store) Credentials(_ context.Context) ([]model.Credential, error) {
	cfg, err := s.Get()
	if err != nil {
		return nil, err
	}
	return slices.Clone(cfg.Credentials), nil
}

var global Store

// Init publishes cfg as the process-wide configuration.
func Init(cfg *Config) error {
	return global.Init(cfg)
}

// Get returns the process-wide configuration.
func Get() (*Config, error) {
	return global.Get()
}

// Global returns the process-wide store, for wiring into services.
func Global() *Store {
	return &global
}
