package impl

import (
	"context"
	"sync"
	"time"

	"github.com/Shopify/gomatchclient/internal/client"
	"github.com/Shopify/gomatchclient/internal/metrics"
	"github.com/Shopify/gomatchclient/internal/network"
	"github.com/rs/zerolog/log"
)

// SleepFunc suspends for d or until ctx ends, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SessionClient owns a single matchmaking session. At most one request is
// outstanding at any time: the busy flag is checked and set under mutex, and
// an operation attempted while busy is rejected rather than queued.
type SessionClient struct {
	Transport network.Transport
	Sleep     SleepFunc

	PollInterval         time.Duration
	MaxRetriesUntilFail  int
	MaxErrorsUntilCancel int

	mutex             sync.Mutex
	requestInProgress bool
	polling           bool
	state             client.SearchState
	queryToken        string
	// Bumped on every successful enqueue. A poll loop serves only the
	// search it was started for.
	generation     uint64
	pollGeneration uint64
	searchStartTime   time.Time
}

func (sc *SessionClient) State() client.SearchState {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.state
}

func (sc *SessionClient) Busy() bool {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.requestInProgress
}

func (sc *SessionClient) QueryToken() string {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.queryToken
}

func (sc *SessionClient) StartSearch(ctx context.Context, params client.SearchParams) <-chan client.Outcome {
	if err := sc.tryBeginStart(); err != nil {
		return sc.reject("start_search", err)
	}
	log.Info().Uint64("user_id", params.UserID).Str("region", params.Region).Msg("starting search...")

	out := make(chan client.Outcome, 1)
	go func() {
		defer close(out)
		token, err := sc.enqueueWithRetry(ctx, params)
		sc.finishStart(token, err == nil)
		outcome := client.Outcome{Kind: client.Enqueued}
		if err != nil {
			outcome = client.Outcome{Kind: client.Failed, Err: err}
		}
		sc.recordOutcome("start_search", outcome)
		out <- outcome
	}()
	return out
}

func (sc *SessionClient) CancelSearch(ctx context.Context) <-chan client.Outcome {
	token, err := sc.tryBeginCancel()
	if err != nil {
		return sc.reject("cancel_search", err)
	}
	log.Info().Msg("cancelling search...")

	out := make(chan client.Outcome, 1)
	go func() {
		defer close(out)
		confirmed := sc.dequeueOnce(ctx, token)
		sc.finishCancel(confirmed)
		outcome := client.Outcome{Kind: client.Cancelled, Confirmed: confirmed}
		sc.recordOutcome("cancel_search", outcome)
		out <- outcome
	}()
	return out
}

func (sc *SessionClient) Poll(ctx context.Context) <-chan client.Outcome {
	sc.mutex.Lock()
	if sc.polling && sc.pollGeneration == sc.generation {
		sc.mutex.Unlock()
		return sc.reject("poll", client.ErrSessionBusy)
	}
	gen := sc.generation
	sc.polling = true
	sc.pollGeneration = gen
	sc.mutex.Unlock()
	log.Info().Uint64("generation", gen).Msg("started polling...")

	out := make(chan client.Outcome, 1)
	go func() {
		defer close(out)
		outcome := sc.pollUntilTerminal(ctx, gen)
		sc.mutex.Lock()
		if sc.pollGeneration == gen {
			sc.polling = false
		}
		sc.mutex.Unlock()
		sc.recordOutcome("poll", outcome)
		out <- outcome
	}()
	return out
}

// pollUntilTerminal waits one interval before every request and re-checks the
// session at each iteration, so a concurrent CancelSearch stops it without
// another request being sent.
func (sc *SessionClient) pollUntilTerminal(ctx context.Context, gen uint64) client.Outcome {
	budget := newPollBudget(sc.MaxErrorsUntilCancel)
	for {
		if err := sc.Sleep(ctx, sc.PollInterval); err != nil {
			return client.Outcome{Kind: client.Stopped, Err: err}
		}
		token, ok := sc.beginPollRequest(gen)
		if !ok {
			log.Info().Msg("stopped polling")
			return client.Outcome{Kind: client.Stopped, Err: client.ErrSearchStopped}
		}

		resp, err := sc.pollOnce(ctx, token)
		if err != nil {
			if budget.fail(err) {
				sc.cleanupAfterPoll(ctx)
				return client.Outcome{Kind: client.Failed, Err: client.ErrErrorBudgetExhausted}
			}
			sc.endPollRequest()
			continue
		}
		budget.reset()

		switch resp.Effective() {
		case client.StatusJoined:
			sc.finishMatched()
			info := resp.MatchFoundInfo()
			log.Info().
				Str("server_address", info.ServerAddress).
				Int("server_port", info.ServerPort).
				Str("join_token", info.JoinToken).
				Msg("joined match")
			return client.Outcome{Kind: client.Matched, Match: &info}
		case client.StatusCancelled:
			log.Info().Msg("matchmaking cancelled by coordinator")
			sc.cleanupAfterPoll(ctx)
			return client.Outcome{Kind: client.Failed, Err: client.ErrServerCancelled}
		case client.StatusFailed:
			log.Info().Msg("matchmaking failed")
			sc.cleanupAfterPoll(ctx)
			return client.Outcome{Kind: client.Failed, Err: client.ErrServerFailed}
		default:
			if !resp.Status.Known() {
				log.Warn().Int("status", int(resp.Status)).Msg("unrecognized poll status, treating as in queue")
			}
			sc.endPollRequest()
		}
	}
}

// cleanupAfterPoll releases the coordinator's queue entry. The caller still
// holds the busy flag from the poll request, so no other operation can slip in.
func (sc *SessionClient) cleanupAfterPoll(ctx context.Context) {
	sc.mutex.Lock()
	sc.state = client.Idle
	token := sc.queryToken
	sc.mutex.Unlock()
	sc.finishCancel(sc.dequeueOnce(ctx, token))
}

func (sc *SessionClient) reject(op string, err error) <-chan client.Outcome {
	log.Debug().Str("operation", op).Err(err).Msg("request rejected")
	outcome := client.Outcome{Kind: client.Rejected, Err: err}
	sc.recordOutcome(op, outcome)
	return client.Resolve(outcome)
}

func (sc *SessionClient) recordOutcome(op string, outcome client.Outcome) {
	tags := []string{"operation:" + op, "kind:" + outcome.Kind.String(), "reason:" + reasonTag(outcome.Err)}
	metrics.Incr("search.outcome", tags)
	switch outcome.Kind {
	case client.Matched, client.Failed, client.Cancelled:
		sc.mutex.Lock()
		started := sc.searchStartTime
		sc.mutex.Unlock()
		if !started.IsZero() {
			metrics.SinceMs("search.duration_ms", started, tags)
		}
	}
}

func reasonTag(err error) string {
	switch err {
	case nil:
		return "none"
	case client.ErrSessionBusy:
		return "session_busy"
	case client.ErrInvalidState:
		return "invalid_state"
	case client.ErrEnqueueExhausted:
		return "enqueue_exhausted"
	case client.ErrErrorBudgetExhausted:
		return "error_budget_exhausted"
	case client.ErrServerCancelled:
		return "server_cancelled"
	case client.ErrServerFailed:
		return "server_failed"
	case client.ErrSearchStopped:
		return "search_stopped"
	case context.Canceled, context.DeadlineExceeded:
		return "context_done"
	default:
		return "other"
	}
}
