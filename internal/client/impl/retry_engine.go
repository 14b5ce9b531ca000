package impl

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Shopify/gomatchclient/internal/client"
	"github.com/Shopify/gomatchclient/internal/common"
	"github.com/Shopify/gomatchclient/internal/metrics"
	"github.com/Shopify/gomatchclient/internal/network"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// enqueueWithRetry makes up to MaxRetriesUntilFail attempts. Every failed
// attempt n, the last one included, is followed by a PollInterval*n wait, and
// the busy flag stays set until the final wait is over.
func (sc *SessionClient) enqueueWithRetry(ctx context.Context, params client.SearchParams) (string, error) {
	req := network.MakeEnqueueRequest(params.UserID, params.AuthToken, params.Region)
	for attempt := 1; attempt <= sc.MaxRetriesUntilFail; attempt++ {
		token, err := sc.enqueueOnce(ctx, req)
		if err == nil {
			metrics.Count("enqueue.attempts", int64(attempt), []string{"result:enqueued"})
			log.Info().Uint64("user_id", params.UserID).Int("attempt", attempt).Msg("enqueued")
			return token, nil
		}
		log.Info().
			Err(err).
			Str("class", network.Classify(err)).
			Int("attempt", attempt).
			Int("max_attempts", sc.MaxRetriesUntilFail).
			Msg("enqueue attempt failed")
		if err := sc.Sleep(ctx, sc.PollInterval*time.Duration(attempt)); err != nil {
			metrics.Count("enqueue.attempts", int64(attempt), []string{"result:interrupted"})
			return "", err
		}
	}
	metrics.Count("enqueue.attempts", int64(sc.MaxRetriesUntilFail), []string{"result:exhausted"})
	return "", client.ErrEnqueueExhausted
}

func (sc *SessionClient) enqueueOnce(ctx context.Context, req *network.Request) (string, error) {
	resp, err := sc.Transport.Send(ctx, req)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(resp.Body)
	if token == "" {
		return "", &network.ParseError{Endpoint: network.EnqueueEndpoint, Body: resp.Body, Err: errors.New("empty query token")}
	}
	return token, nil
}

// dequeueOnce sends a single dequeue with no retry and reports whether the
// coordinator confirmed it. The call is always attempted, even when ctx has
// already ended or the token was cleared, since it is the cleanup path.
func (sc *SessionClient) dequeueOnce(ctx context.Context, token string) bool {
	resp, err := sc.Transport.Send(context.WithoutCancel(ctx), network.MakeDequeueRequest(token))
	if err != nil {
		log.Info().Err(err).Str("class", network.Classify(err)).Msg("dequeue failed")
		return false
	}
	if resp.StatusCode != http.StatusOK {
		log.Info().Int("status", resp.StatusCode).Msg("dequeue not confirmed")
		return false
	}
	return true
}

func (sc *SessionClient) pollOnce(ctx context.Context, token string) (client.PollResponse, error) {
	resp, err := sc.Transport.Send(ctx, network.MakePollRequest(token))
	if err != nil {
		return client.PollResponse{}, err
	}
	return client.DecodePollResponse(resp.Body)
}

// pollBudget logs and counts poll failures against the session's error budget.
type pollBudget struct {
	*common.ErrorBudget
}

func newPollBudget(max int) pollBudget {
	return pollBudget{common.MakeErrorBudget(max)}
}

// fail returns true once the budget is exhausted.
func (b pollBudget) fail(err error) bool {
	count, exhausted := b.Fail()
	class := network.Classify(err)
	metrics.Incr("poll.error", []string{"class:" + class})
	metrics.Gauge("poll.errors", float64(count), nil)
	log.Info().Err(err).Str("class", class).Int("errors", count).Int("max_errors", b.Max()).Msg("poll failed")
	if exhausted {
		log.Info().Int("errors", count).Msg("poll error budget exhausted, cancelling search")
	}
	return exhausted
}

func (b pollBudget) reset() {
	if count := b.Count(); count > 0 {
		log.Debug().Int("errors", count).Msg("poll recovered, error count reset")
		metrics.Gauge("poll.errors", 0, nil)
	}
	b.Reset()
}
