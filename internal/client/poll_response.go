package client

import (
	"encoding/json"
	"strings"

	"github.com/Shopify/gomatchclient/internal/network"
	"github.com/pkg/errors"
)

type PollStatus int

const (
	StatusInQueue PollStatus = iota
	StatusJoined
	StatusCancelled
	StatusFailed
)

func (s PollStatus) String() string {
	switch s {
	case StatusInQueue:
		return "in_queue"
	case StatusJoined:
		return "joined"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Known reports whether the coordinator sent one of the four defined statuses.
func (s PollStatus) Known() bool {
	return s >= StatusInQueue && s <= StatusFailed
}

// PollResponse is the coordinator's answer to a poll. JoinToken, ServerAddress
// and ServerPort are only populated for StatusJoined.
type PollResponse struct {
	Status        PollStatus
	JoinToken     string
	ServerAddress string
	ServerPort    int
}

// Effective maps unknown statuses onto StatusInQueue so that statuses added
// by newer coordinators keep older clients polling instead of failing.
func (r PollResponse) Effective() PollStatus {
	if !r.Status.Known() {
		return StatusInQueue
	}
	return r.Status
}

func (r PollResponse) MatchFoundInfo() MatchFoundInfo {
	return MatchFoundInfo{ServerAddress: r.ServerAddress, ServerPort: r.ServerPort, JoinToken: r.JoinToken}
}

func DecodePollResponse(body string) (PollResponse, error) {
	var resp PollResponse
	if strings.TrimSpace(body) == "" {
		return resp, &network.ParseError{Endpoint: network.PollEndpoint, Body: body, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return resp, &network.ParseError{Endpoint: network.PollEndpoint, Body: body, Err: err}
	}
	return resp, nil
}

// MatchFoundInfo tells the caller where to connect once a match is joined.
type MatchFoundInfo struct {
	ServerAddress string
	ServerPort    int
	JoinToken     string
}
