package network

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransportError means no response reached the client (refused, reset, timed out).
type TransportError struct {
	Endpoint Endpoint
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError means a response arrived carrying a non-success status code.
type ProtocolError struct {
	Endpoint   Endpoint
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: protocol error: status %d", e.Endpoint, e.StatusCode)
}

// ParseError means a 2xx response arrived whose body could not be decoded.
type ParseError struct {
	Endpoint Endpoint
	Body     string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	_, ok := errors.Cause(err).(*TransportError)
	return ok
}

func IsProtocolError(err error) bool {
	_, ok := errors.Cause(err).(*ProtocolError)
	return ok
}

func IsParseError(err error) bool {
	_, ok := errors.Cause(err).(*ParseError)
	return ok
}

// Classify names the failure class of err for logs and metric tags.
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsTransportError(err):
		return "transport_error"
	case IsProtocolError(err):
		return "protocol_error"
	case IsParseError(err):
		return "parse_error"
	default:
		return "unknown_error"
	}
}
