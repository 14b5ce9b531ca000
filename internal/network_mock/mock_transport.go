package network_mock

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/Shopify/gomatchclient/internal/network"
	"github.com/pkg/errors"
)

var ErrConnectionRefused = errors.New("connection refused")

// MockReply scripts one coordinator answer. A non-nil Err means no response reached the client.
type MockReply struct {
	StatusCode int
	Body       string
	Err        error
}

func Reply(statusCode int, body string) MockReply {
	return MockReply{StatusCode: statusCode, Body: body}
}

func OK(body string) MockReply {
	return Reply(http.StatusOK, body)
}

func Unreachable() MockReply {
	return MockReply{Err: ErrConnectionRefused}
}

func PollBody(status int) string {
	b, _ := json.Marshal(struct{ Status int }{status})
	return string(b)
}

func JoinedBody(joinToken, serverAddress string, serverPort int) string {
	b, _ := json.Marshal(struct {
		Status        int
		JoinToken     string
		ServerAddress string
		ServerPort    int
	}{1, joinToken, serverAddress, serverPort})
	return string(b)
}

// MockTransport replays scripted replies per endpoint and records every request.
// Once an endpoint's queue is drained its fallback reply is used, and an
// endpoint with neither answers as unreachable.
type MockTransport struct {
	mutex     sync.Mutex
	replies   map[network.Endpoint][]MockReply
	fallbacks map[network.Endpoint]MockReply
	requests  []*network.Request

	// Called with each request before its reply is chosen.
	OnSend func(req *network.Request)
}

func MakeMockTransport() *MockTransport {
	return &MockTransport{
		replies:   make(map[network.Endpoint][]MockReply),
		fallbacks: make(map[network.Endpoint]MockReply),
	}
}

func (m *MockTransport) Queue(endpoint network.Endpoint, replies ...MockReply) *MockTransport {
	m.mutex.Lock()
	m.replies[endpoint] = append(m.replies[endpoint], replies...)
	m.mutex.Unlock()
	return m
}

func (m *MockTransport) Fallback(endpoint network.Endpoint, reply MockReply) *MockTransport {
	m.mutex.Lock()
	m.fallbacks[endpoint] = reply
	m.mutex.Unlock()
	return m
}

func (m *MockTransport) Send(ctx context.Context, req *network.Request) (*network.Response, error) {
	if m.OnSend != nil {
		m.OnSend(req)
	}

	m.mutex.Lock()
	m.requests = append(m.requests, req)
	reply, ok := m.fallbacks[req.Endpoint]
	if queued := m.replies[req.Endpoint]; len(queued) > 0 {
		reply, ok = queued[0], true
		m.replies[req.Endpoint] = queued[1:]
	}
	m.mutex.Unlock()

	if !ok {
		reply = Unreachable()
	}
	if reply.Err != nil {
		return nil, &network.TransportError{Endpoint: req.Endpoint, Err: reply.Err}
	}
	resp := network.MakeResponse(reply.StatusCode, reply.Body)
	if err := network.CheckStatus(req.Endpoint, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *MockTransport) Requests() []*network.Request {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]*network.Request(nil), m.requests...)
}

func (m *MockTransport) RequestsTo(endpoint network.Endpoint) []*network.Request {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	matched := make([]*network.Request, 0)
	for _, req := range m.requests {
		if req.Endpoint == endpoint {
			matched = append(matched, req)
		}
	}
	return matched
}

func (m *MockTransport) Count(endpoint network.Endpoint) int {
	return len(m.RequestsTo(endpoint))
}
