package impl

import (
	"time"

	"github.com/Shopify/gomatchclient/internal/client"
)

// State transitions. Each asserts its precondition under the session mutex.

func (sc *SessionClient) tryBeginStart() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	if sc.requestInProgress {
		return client.ErrSessionBusy
	}
	if sc.state == client.Searching {
		return client.ErrInvalidState
	}
	sc.requestInProgress = true
	sc.searchStartTime = time.Now()
	return nil
}

func (sc *SessionClient) finishStart(token string, enqueued bool) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	if enqueued {
		sc.queryToken = token
		sc.state = client.Searching
		sc.generation++
	}
	sc.requestInProgress = false
}

// tryBeginCancel leaves Searching immediately so that a racing poll loop
// exits at its next checkpoint.
func (sc *SessionClient) tryBeginCancel() (string, error) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	if sc.requestInProgress {
		return "", client.ErrSessionBusy
	}
	if sc.state != client.Searching {
		return "", client.ErrInvalidState
	}
	sc.requestInProgress = true
	sc.state = client.Idle
	return sc.queryToken, nil
}

func (sc *SessionClient) finishCancel(confirmed bool) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	if confirmed {
		sc.queryToken = ""
	}
	sc.requestInProgress = false
}

// beginPollRequest returns false when the session is no longer searching, or
// is searching again under a newer enqueue than the one gen belongs to.
// Searching excludes enqueue and dequeue, and only one poll loop runs per
// session, so a set busy flag here is not expected; the tick is still
// reported as stopped rather than overlapping another request.
func (sc *SessionClient) beginPollRequest(gen uint64) (string, bool) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	if sc.state != client.Searching || sc.generation != gen || sc.requestInProgress {
		return "", false
	}
	sc.requestInProgress = true
	return sc.queryToken, true
}

func (sc *SessionClient) endPollRequest() {
	sc.mutex.Lock()
	sc.requestInProgress = false
	sc.mutex.Unlock()
}

func (sc *SessionClient) finishMatched() {
	sc.mutex.Lock()
	sc.state = client.Idle
	sc.requestInProgress = false
	sc.mutex.Unlock()
}
