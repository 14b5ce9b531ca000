package network

import "context"

// Transport issues a single GET-style request against the coordinator.
//
// A nil error means a 2xx response was received. Otherwise the error is a
// *TransportError when no response arrived or a *ProtocolError when the
// response carried a non-success status.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}
