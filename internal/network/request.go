package network

import (
	"net/url"
	"strconv"
)

// Query parameter keys understood by the coordinator.
const (
	UserIDParam     = "UserID"
	AuthTokenParam  = "AuthToken"
	RegionParam     = "Region"
	QueryTokenParam = "QueryToken"
)

type Endpoint int

const (
	EnqueueEndpoint Endpoint = iota
	DequeueEndpoint
	PollEndpoint
)

func (e Endpoint) String() string {
	return [...]string{"enqueue", "dequeue", "poll"}[e]
}

type Request struct {
	Endpoint Endpoint
	Query    url.Values
}

func MakeEnqueueRequest(userID uint64, authToken, region string) *Request {
	q := url.Values{}
	q.Set(UserIDParam, strconv.FormatUint(userID, 10))
	q.Set(AuthTokenParam, authToken)
	q.Set(RegionParam, region)
	return &Request{Endpoint: EnqueueEndpoint, Query: q}
}

func MakeDequeueRequest(queryToken string) *Request {
	return &Request{Endpoint: DequeueEndpoint, Query: url.Values{QueryTokenParam: {queryToken}}}
}

func MakePollRequest(queryToken string) *Request {
	return &Request{Endpoint: PollEndpoint, Query: url.Values{QueryTokenParam: {queryToken}}}
}

// QueryToken returns the session token carried by a dequeue or poll request.
func (r *Request) QueryToken() string {
	return r.Query.Get(QueryTokenParam)
}
