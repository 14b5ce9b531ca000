package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/rs/zerolog/log"
)

const (
	DefaultStatsdAddr = "127.0.0.1:8125"
	statsdNamespace   = "matchmaking_client."
	statsdScope       = "default"
)

var (
	mu                sync.RWMutex
	client            statsd.ClientInterface = &statsd.NoOpClient{}
	runtimeGlobalTags = make([]string, 0)
)

// Configure points metrics at a dogstatsd agent. Until it succeeds every call is a no-op.
func Configure(addr string) error {
	c, err := statsd.New(addr)
	if err != nil {
		log.Info().Err(err).Msg("failed connecting to datadog agent => metrics will noop")
		return err
	}
	c.Namespace = statsdNamespace
	c.Tags = []string{fmt.Sprintf("scope:%s", statsdScope)}
	mu.Lock()
	client = c
	mu.Unlock()
	log.Info().Str("addr", addr).Msg("successfully connected to datadog agent")
	return nil
}

// Close flushes and releases the statsd client and reverts to no-op.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	err := client.Close()
	client = &statsd.NoOpClient{}
	return err
}

// Use installs c as the process client and returns a func restoring the previous one.
func Use(c statsd.ClientInterface) (restore func()) {
	mu.Lock()
	prev := client
	client = c
	mu.Unlock()
	return func() {
		mu.Lock()
		client = prev
		mu.Unlock()
	}
}

func AddGlobalTags(tags []string) {
	mu.Lock()
	runtimeGlobalTags = append(runtimeGlobalTags, tags...)
	mu.Unlock()
}

func current(tags []string) (statsd.ClientInterface, []string) {
	mu.RLock()
	defer mu.RUnlock()
	all := make([]string, 0, len(runtimeGlobalTags)+len(tags))
	all = append(all, runtimeGlobalTags...)
	return client, append(all, tags...)
}

func Count(name string, value int64, tags []string) error {
	c, tags := current(tags)
	return c.Count(name, value, tags, 1.0 /* rate */)
}

func Distribution(name string, value float64, tags []string) error {
	c, tags := current(tags)
	return c.Distribution(name, value, tags, 1.0 /* rate */)
}

func Gauge(name string, value float64, tags []string) error {
	c, tags := current(tags)
	return c.Gauge(name, value, tags, 1.0 /* rate */)
}

func Incr(name string, tags []string) error {
	c, tags := current(tags)
	return c.Incr(name, tags, 1.0 /* rate */)
}

func SinceMs(name string, startTime time.Time, tags []string) {
	Distribution(name, float64(time.Since(startTime).Milliseconds()), tags)
}
