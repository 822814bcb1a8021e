package mutate

import (
	"errors"
	"fmt"

	"helpr/internal/model"
)

var (
	// ErrConflict marks a transition whose source state no longer holds.
	ErrConflict         = errors.New("conflict")
	ErrEmptyDescription = errors.New("description is empty")
	ErrDuplicateRequest = errors.New("request already in queue")
	ErrEmptyZID         = errors.New("zid is empty")
	ErrNotAdmin         = errors.New("permission denied: only the administrator can end the session")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// TransitionError is returned when action was applied to a request that is not in
// the required source state. Have is "" when the request is absent.
type TransitionError struct {
	Action model.Action
	ZID    string
	Want   model.Status
	Have   model.Status
}

func (e *TransitionError) Error() string {
	have := string(e.Have)
	if have == "" {
		have = "absent"
	}
	return fmt.Sprintf("cannot %s %s: request is %s, want %s", e.Action, e.ZID, have, e.Want)
}

func (e *TransitionError) Unwrap() error { return ErrConflict }
