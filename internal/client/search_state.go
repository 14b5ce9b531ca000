package client

// Matchmaking session state machine.

// SearchState is the lifecycle state of a session. The busy flag
// (a request in flight) is tracked separately since it overlaps both states.
//
// idle      = no queue entry held by this client
// searching = enqueued, holding a query token, polling for placement
//
// idle ---> searching (enqueue succeeds) ---> idle (joined, cancelled or failed)
//   |
//   -----> idle (enqueue retries exhausted)
//
type SearchState int

const (
	Idle SearchState = iota
	Searching
)

func (s SearchState) String() string {
	return [...]string{"idle", "searching"}[s]
}
