package network

import "net/http"

type Response struct {
	StatusCode int
	Body       string
}

func MakeResponse(statusCode int, body string) *Response {
	return &Response{StatusCode: statusCode, Body: body}
}

// Success reports whether the coordinator answered with a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// CheckStatus converts a non-2xx response into a *ProtocolError.
func CheckStatus(endpoint Endpoint, resp *Response) error {
	if resp.Success() {
		return nil
	}
	return &ProtocolError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: resp.Body}
}
