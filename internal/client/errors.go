package client

import (
	"fmt"
	"net/http"

	"helpr/internal/model"
)

// TransportError means the service could not be reached or the exchange did not
// complete (dial failure, timeout, truncated body).
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: service unreachable: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a non-success response to a read (fetch, remaining, events).
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: service error %d: %s", e.Op, e.StatusCode, msg)
}

// ActionError is a state-changing action the service rejected, usually because the
// request's state changed since the last fetch. Recover by re-fetching.
type ActionError struct {
	Action     model.Action
	ZID        string
	StatusCode int
	Message    string
}

func (e *ActionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.ZID == "" {
		return fmt.Sprintf("%s rejected (%d): %s", e.Action, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s rejected (%d): %s", e.Action, e.ZID, e.StatusCode, msg)
}

// Conflict reports whether the rejection was a stale-state conflict (another actor got there first).
func (e *ActionError) Conflict() bool { return e.StatusCode == http.StatusConflict }

// Forbidden reports whether the actor lacked permission (e.g. non-admin end).
func (e *ActionError) Forbidden() bool { return e.StatusCode == http.StatusForbidden }
