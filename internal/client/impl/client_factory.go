package impl

import (
	"github.com/Shopify/gomatchclient/internal/client"
	"github.com/Shopify/gomatchclient/internal/network"
	"github.com/pkg/errors"
)

// MakeClientFromConfig builds a session client speaking HTTP to the configured coordinator.
func MakeClientFromConfig(config client.ClientConfig) (client.Client, error) {
	config = WithDefaults(config)
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid client config")
	}
	transport, err := network.MakeHTTPTransport(
		config.Scheme,
		config.Address,
		config.RequestTimeout,
		config.MaxRequestsPerSecond,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed building coordinator transport")
	}
	return MakeSessionClient(config, transport), nil
}

func MakeSessionClient(config client.ClientConfig, transport network.Transport) *SessionClient {
	config = WithDefaults(config)
	return &SessionClient{
		Transport:            transport,
		Sleep:                SleepContext,
		PollInterval:         config.PollInterval,
		MaxRetriesUntilFail:  config.MaxRetriesUntilFail,
		MaxErrorsUntilCancel: config.MaxErrorsUntilCancel,
		state:                client.Idle,
	}
}

// WithDefaults fills unset (zero) fields from client.DefaultClientConfig.
// Negative values are left for Validate to reject.
func WithDefaults(config client.ClientConfig) client.ClientConfig {
	defaults := client.DefaultClientConfig()
	if config.Scheme == "" {
		config.Scheme = defaults.Scheme
	}
	if config.PollInterval == 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.MaxRetriesUntilFail == 0 {
		config.MaxRetriesUntilFail = defaults.MaxRetriesUntilFail
	}
	if config.MaxErrorsUntilCancel == 0 {
		config.MaxErrorsUntilCancel = defaults.MaxErrorsUntilCancel
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	return config
}
