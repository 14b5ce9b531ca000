package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Shopify/gomatchclient/internal/client"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
)

const (
	defaultLogLevel = "info"
	defaultRegion   = "na"
)

// appConfig is everything the example caller needs: the session client settings
// plus who is searching and where diagnostics go.
type appConfig struct {
	Client client.ClientConfig

	UserID    uint64 `env:"MM_USER_ID" env-upd:""`
	AuthToken string `env:"MM_AUTH_TOKEN" env-upd:""`
	Region    string `env:"MM_REGION" env-upd:""`

	LogLevel   string `env:"MM_LOG_LEVEL" env-upd:""`
	StatsdAddr string `env:"MM_STATSD_ADDR" env-upd:""`
}

// matchclient config.toml key mapping.
type fileConfig struct {
	Address              string  `toml:"address"`
	Scheme               string  `toml:"scheme"`
	PollInterval         string  `toml:"poll_interval"`
	MaxRetriesUntilFail  int     `toml:"max_retries_until_fail"`
	MaxErrorsUntilCancel int     `toml:"max_errors_until_cancel"`
	RequestTimeout       string  `toml:"request_timeout"`
	MaxRequestsPerSecond float64 `toml:"max_requests_per_second"`
	UserID               uint64  `toml:"user_id"`
	AuthToken            string  `toml:"auth_token"`
	Region               string  `toml:"region"`
	LogLevel             string  `toml:"log_level"`
	StatsdAddr           string  `toml:"statsd_addr"`
}

func defaultAppConfig() appConfig {
	return appConfig{
		Client:   client.DefaultClientConfig(),
		Region:   defaultRegion,
		LogLevel: defaultLogLevel,
	}
}

// loadAppConfig overlays the TOML file (if any) onto defaults, then MM_* environment variables.
func loadAppConfig(path string) (appConfig, error) {
	cfg := defaultAppConfig()
	if strings.TrimSpace(path) != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return appConfig{}, err
		}
	}
	if err := cleanenv.UpdateEnv(&cfg); err != nil {
		return appConfig{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Client.Validate(); err != nil {
		return appConfig{}, err
	}
	if strings.TrimSpace(cfg.Client.Address) == "" {
		return appConfig{}, fmt.Errorf("coordinator address is required")
	}
	return cfg, nil
}

func overlayFile(cfg *appConfig, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load matchclient config: %w", err)
	}

	if meta.IsDefined("address") {
		cfg.Client.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("scheme") {
		cfg.Client.Scheme = strings.TrimSpace(raw.Scheme)
	}
	if meta.IsDefined("poll_interval") {
		d, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval: %w", err)
		}
		cfg.Client.PollInterval = d
	}
	if meta.IsDefined("max_retries_until_fail") {
		cfg.Client.MaxRetriesUntilFail = raw.MaxRetriesUntilFail
	}
	if meta.IsDefined("max_errors_until_cancel") {
		cfg.Client.MaxErrorsUntilCancel = raw.MaxErrorsUntilCancel
	}
	if meta.IsDefined("request_timeout") {
		d, err := time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout: %w", err)
		}
		cfg.Client.RequestTimeout = d
	}
	if meta.IsDefined("max_requests_per_second") {
		cfg.Client.MaxRequestsPerSecond = raw.MaxRequestsPerSecond
	}
	if meta.IsDefined("user_id") {
		cfg.UserID = raw.UserID
	}
	if meta.IsDefined("auth_token") {
		cfg.AuthToken = raw.AuthToken
	}
	if meta.IsDefined("region") {
		cfg.Region = strings.TrimSpace(raw.Region)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("statsd_addr") {
		cfg.StatsdAddr = strings.TrimSpace(raw.StatsdAddr)
	}
	return nil
}

func setLogging(logLevel string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	switch logLevel {
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		return fmt.Errorf("log level must be one of: {disabled, info, debug}")
	}
	return nil
}
