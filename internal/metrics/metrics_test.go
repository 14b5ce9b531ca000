package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallsNoopUntilConfigured(t *testing.T) {
	assert.NoError(t, Incr("search.outcome", []string{"kind:matched"}))
	assert.NoError(t, Count("enqueue.attempt", 2, nil))
	assert.NoError(t, Gauge("poll.errors", 1, nil))
	SinceMs("search.duration_ms", time.Now(), nil)
}

func TestConfigureAndClose(t *testing.T) {
	// UDP dogstatsd does not need a listening agent.
	assert.NoError(t, Configure(DefaultStatsdAddr))
	AddGlobalTags([]string{"region:na"})
	assert.NoError(t, Distribution("request.duration_ms", 12, []string{"endpoint:poll"}))
	assert.NoError(t, Close())
	assert.NoError(t, Incr("request", nil))
}
