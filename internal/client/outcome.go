package client

import "github.com/pkg/errors"

// Reasons carried in Outcome.Err. Raw network errors never cross this boundary.
var (
	ErrSessionBusy          = errors.New("a request is already in flight for this session")
	ErrInvalidState         = errors.New("session is not in a state that allows this operation")
	ErrEnqueueExhausted     = errors.New("enqueue retries exhausted")
	ErrErrorBudgetExhausted = errors.New("poll error budget exhausted")
	ErrServerCancelled      = errors.New("coordinator cancelled matchmaking")
	ErrServerFailed         = errors.New("coordinator reported matchmaking failure")
	ErrSearchStopped        = errors.New("search is no longer active")
)

type OutcomeKind int

const (
	// Rejected: precondition failed, nothing was sent.
	Rejected OutcomeKind = iota
	// Enqueued: StartSearch obtained a query token, the session is searching.
	Enqueued
	// Matched: poll observed a joined match.
	Matched
	// Failed: enqueue exhausted, poll budget exhausted, or the coordinator ended the search.
	Failed
	// Cancelled: CancelSearch completed (best effort, regardless of confirmation).
	Cancelled
	// Stopped: polling ended because the session stopped searching or the context ended.
	Stopped
)

func (k OutcomeKind) String() string {
	return [...]string{"rejected", "enqueued", "matched", "failed", "cancelled", "stopped"}[k]
}

type Outcome struct {
	Kind OutcomeKind
	Err  error

	// Only set for Matched.
	Match *MatchFoundInfo
	// Only meaningful for Cancelled: the coordinator acknowledged the dequeue.
	Confirmed bool
}

// Accepted reports whether the operation was started at all.
func (o Outcome) Accepted() bool {
	return o.Kind != Rejected
}

// Resolve delivers a single outcome on a fresh buffered channel and closes it.
func Resolve(o Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- o
	close(ch)
	return ch
}
