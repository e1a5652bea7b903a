package gateway

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned for a 401/403 response. By the time the
// caller sees it, the gateway has already cleared the session store; whether
// to silently re-authenticate or fall back to the login screen is the
// caller's decision, never the transport's.
var ErrSessionExpired = errors.New("session expired")

// TransportError wraps a network-level failure where no response reached the
// client. The request may or may not have been applied, so a resend must
// reuse the same idempotency key.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RequestFailed is any non-2xx response other than an authorization
// rejection. Message carries the server-supplied reason when the body had
// one.
type RequestFailed struct {
	Status  int
	Message string
}

func (e *RequestFailed) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: status %d", e.Status)
	}
	return fmt.Sprintf("request failed: status %d: %s", e.Status, e.Message)
}
