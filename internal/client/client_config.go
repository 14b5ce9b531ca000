package client

import (
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultPollInterval         = 60 * time.Second
	DefaultMaxRetriesUntilFail  = 3
	DefaultMaxErrorsUntilCancel = 5
	DefaultRequestTimeout       = 10 * time.Second
	DefaultScheme               = "https"
)

type ClientConfig struct {
	Address string `env:"MM_ADDRESS" env-upd:""`
	Scheme  string `env:"MM_SCHEME" env-upd:""`

	PollInterval         time.Duration `env:"MM_POLL_INTERVAL" env-upd:""`
	MaxRetriesUntilFail  int           `env:"MM_MAX_RETRIES_UNTIL_FAIL" env-upd:""`
	MaxErrorsUntilCancel int           `env:"MM_MAX_ERRORS_UNTIL_CANCEL" env-upd:""`

	// Deadline attached to every outbound call.
	RequestTimeout time.Duration `env:"MM_REQUEST_TIMEOUT" env-upd:""`
	// Client-side request rate cap; zero means unlimited.
	MaxRequestsPerSecond float64 `env:"MM_MAX_REQUESTS_PER_SECOND" env-upd:""`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Scheme:               DefaultScheme,
		PollInterval:         DefaultPollInterval,
		MaxRetriesUntilFail:  DefaultMaxRetriesUntilFail,
		MaxErrorsUntilCancel: DefaultMaxErrorsUntilCancel,
		RequestTimeout:       DefaultRequestTimeout,
	}
}

func (c ClientConfig) Validate() error {
	if c.PollInterval <= 0 {
		return errors.Errorf("poll interval must be > 0 but found %s", c.PollInterval)
	}
	if c.MaxRetriesUntilFail <= 0 {
		return errors.Errorf("max retries until fail must be > 0 but found %d", c.MaxRetriesUntilFail)
	}
	if c.MaxErrorsUntilCancel <= 0 {
		return errors.Errorf("max errors until cancel must be > 0 but found %d", c.MaxErrorsUntilCancel)
	}
	if c.RequestTimeout < 0 {
		return errors.Errorf("request timeout must be >= 0 but found %s", c.RequestTimeout)
	}
	if c.MaxRequestsPerSecond < 0 {
		return errors.Errorf("max requests per second must be >= 0 but found %.2f", c.MaxRequestsPerSecond)
	}
	return nil
}
