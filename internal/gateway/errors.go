package gateway

import (
	"errors"
	"fmt"
)

// TransportError means the request never produced a usable HTTP response.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway: request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError means the analytics API answered, but not with a usable payload:
// a non-2xx status, a body that is not JSON, or a body that breaks the
// endpoint's schema.
type ServerError struct {
	Endpoint string
	Status   string
	Code     int
	Body     string
	Err      error
}

func (e *ServerError) Error() string {
	if e.Code != 0 && (e.Code < 200 || e.Code > 299) {
		if e.Body != "" {
			return fmt.Sprintf("gateway: %s returned %s: %s", e.Endpoint, e.Status, e.Body)
		}
		return fmt.Sprintf("gateway: %s returned %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("gateway: invalid response from %s: %v", e.Endpoint, e.Err)
}

func (e *ServerError) Unwrap() error { return e.Err }

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsServer reports whether err is, or wraps, a ServerError.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
