package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Shopify/gomatchclient/internal/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	RequestIDHeader = "X-Request-Id"

	// Coordinator bodies are a token or a small JSON record.
	maxResponseBodyBytes = 64 * 1024
)

type HTTPTransport struct {
	BaseURL        *url.URL
	HTTPClient     *http.Client
	Limiter        *rate.Limiter
	RequestTimeout time.Duration
}

// MakeHTTPTransport targets scheme://address/{enqueue,dequeue,poll}.
// A non-positive maxRequestsPerSecond disables client-side rate limiting.
func MakeHTTPTransport(
	scheme string,
	address string,
	requestTimeout time.Duration,
	maxRequestsPerSecond float64,
) (*HTTPTransport, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errors.New("coordinator address is required")
	}
	if scheme == "" {
		scheme = "https"
	}
	base, err := url.Parse(fmt.Sprintf("%s://%s", scheme, address))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid coordinator address %q", address)
	}
	limit := rate.Inf
	if maxRequestsPerSecond > 0 {
		limit = rate.Limit(maxRequestsPerSecond)
	}
	return &HTTPTransport{
		BaseURL:        base,
		HTTPClient:     &http.Client{},
		Limiter:        rate.NewLimiter(limit, 1),
		RequestTimeout: requestTimeout,
	}, nil
}

func (t *HTTPTransport) endpointURL(req *Request) string {
	u := *t.BaseURL
	u.Path = path.Join("/", u.Path, req.Endpoint.String())
	u.RawQuery = req.Query.Encode()
	return u.String()
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	defer metrics.SinceMs("request.duration_ms", time.Now(), []string{"endpoint:" + req.Endpoint.String()})

	if err := t.Limiter.Wait(ctx); err != nil {
		return nil, t.fail(req, &TransportError{Endpoint: req.Endpoint, Err: err})
	}
	if t.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.RequestTimeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpointURL(req), nil)
	if err != nil {
		return nil, t.fail(req, &TransportError{Endpoint: req.Endpoint, Err: err})
	}
	requestID := uuid.New().String()
	httpReq.Header.Set(RequestIDHeader, requestID)

	log.Debug().Str("endpoint", req.Endpoint.String()).Str("request_id", requestID).Msg("sending coordinator request")
	httpResp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, t.fail(req, &TransportError{Endpoint: req.Endpoint, Err: err})
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, t.fail(req, &TransportError{Endpoint: req.Endpoint, Err: errors.Wrap(err, "read body")})
	}

	resp := MakeResponse(httpResp.StatusCode, string(body))
	if err := CheckStatus(req.Endpoint, resp); err != nil {
		return nil, t.fail(req, err)
	}
	metrics.Incr("request", []string{"endpoint:" + req.Endpoint.String(), "result:ok"})
	return resp, nil
}

func (t *HTTPTransport) fail(req *Request, err error) error {
	metrics.Incr("request", []string{"endpoint:" + req.Endpoint.String(), "result:" + Classify(err)})
	return err
}
