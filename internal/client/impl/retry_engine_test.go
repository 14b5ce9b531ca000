package impl

import (
	"context"
	"sync"
	"testing"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Shopify/gomatchclient/internal/client"
	"github.com/Shopify/gomatchclient/internal/metrics"
	"github.com/Shopify/gomatchclient/internal/network"
	"github.com/Shopify/gomatchclient/internal/network_mock"
	"github.com/stretchr/testify/assert"
)

type recordedStat struct {
	name  string
	value float64
	tags  []string
}

type statsRecorder struct {
	*statsd.NoOpClient
	mutex  sync.Mutex
	gauges []recordedStat
	counts []recordedStat
}

func (r *statsRecorder) Gauge(name string, value float64, tags []string, rate float64) error {
	r.mutex.Lock()
	r.gauges = append(r.gauges, recordedStat{name, value, tags})
	r.mutex.Unlock()
	return nil
}

func (r *statsRecorder) Count(name string, value int64, tags []string, rate float64) error {
	r.mutex.Lock()
	r.counts = append(r.counts, recordedStat{name, float64(value), tags})
	r.mutex.Unlock()
	return nil
}

func recordStats(t *testing.T) *statsRecorder {
	rec := &statsRecorder{NoOpClient: &statsd.NoOpClient{}}
	t.Cleanup(metrics.Use(rec))
	return rec
}

func TestPollBudgetReportsErrorCount(t *testing.T) {
	stats := recordStats(t)
	budget := newPollBudget(2)

	assert.False(t, budget.fail(&network.TransportError{Endpoint: network.PollEndpoint, Err: network_mock.ErrConnectionRefused}))
	assert.False(t, budget.fail(&network.ParseError{Endpoint: network.PollEndpoint}))
	assert.Equal(t, 2, budget.Count())

	budget.reset()
	assert.Zero(t, budget.Count())
	assert.False(t, budget.fail(&network.ParseError{Endpoint: network.PollEndpoint}))

	var values []float64
	for _, g := range stats.gauges {
		assert.Equal(t, "poll.errors", g.name)
		values = append(values, g.value)
	}
	assert.Equal(t, []float64{1, 2, 0, 1}, values)
}

func TestEnqueueAttemptsCountedPerSearch(t *testing.T) {
	stats := recordStats(t)
	transport := network_mock.MakeMockTransport().Queue(
		network.EnqueueEndpoint, network_mock.Unreachable(), network_mock.OK("tok2"),
	)
	sc, _ := newTestSession(transport)

	o := await(t, sc.StartSearch(context.Background(), client.SearchParams{UserID: 1}))
	assert.Equal(t, client.Enqueued, o.Kind)

	exhausted := network_mock.MakeMockTransport()
	failing, _ := newTestSession(exhausted)
	o = await(t, failing.StartSearch(context.Background(), client.SearchParams{UserID: 2}))
	assert.Equal(t, client.Failed, o.Kind)

	stats.mutex.Lock()
	defer stats.mutex.Unlock()
	attempts := make([]recordedStat, 0)
	for _, c := range stats.counts {
		if c.name == "enqueue.attempts" {
			attempts = append(attempts, c)
		}
	}
	if assert.Len(t, attempts, 2) {
		assert.Equal(t, 2.0, attempts[0].value)
		assert.Contains(t, attempts[0].tags, "result:enqueued")
		assert.Equal(t, 3.0, attempts[1].value)
		assert.Contains(t, attempts[1].tags, "result:exhausted")
	}
}
