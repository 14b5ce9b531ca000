package client

import "context"

// Client drives one user's matchmaking session against the coordinator.
//
// Every method returns a channel that receives exactly one Outcome and is then
// closed. Rejections are decided before the method returns, so a Rejected
// outcome is already buffered in the channel.
type Client interface {
	StartSearch(ctx context.Context, params SearchParams) <-chan Outcome
	CancelSearch(ctx context.Context) <-chan Outcome
	Poll(ctx context.Context) <-chan Outcome

	State() SearchState
	Busy() bool
	QueryToken() string
}

type SearchParams struct {
	UserID    uint64
	AuthToken string
	Region    string
}
