package mutate

import (
	"strings"

	"helpr/internal/model"
)

// Transition is one accepted edge of the request lifecycle.
// To == "" means the request leaves the queue.
type Transition struct {
	From model.Status
	To   model.Status
}

// transitions is the authoritative rule table enforced by the service.
// Submit (absent -> waiting) and end (any -> absent) are handled separately
// because their source is not a single status.
var transitions = map[model.Action]Transition{
	model.ActionHelp:    {From: model.StatusWaiting, To: model.StatusReceiving},
	model.ActionCancel:  {From: model.StatusWaiting, To: ""},
	model.ActionResolve: {From: model.StatusReceiving, To: ""},
	model.ActionRevert:  {From: model.StatusReceiving, To: model.StatusWaiting},
}

// TransitionFor returns the edge for a per-request action.
func TransitionFor(action model.Action) (Transition, bool) {
	t, ok := transitions[action]
	return t, ok
}

// Apply validates action against the current status of zid's request (have == "" when
// absent) and returns the resulting status. Callers persist the result atomically
// with the check.
func Apply(action model.Action, zid string, have model.Status) (model.Status, error) {
	if strings.TrimSpace(zid) == "" {
		return "", ErrEmptyZID
	}
	t, ok := transitions[action]
	if !ok {
		return "", NotFoundError{Kind: "action", ID: string(action)}
	}
	if have != t.From {
		return "", &TransitionError{Action: action, ZID: zid, Want: t.From, Have: have}
	}
	return t.To, nil
}

// ValidateSubmit checks a new request before it is inserted. hasActive reports
// whether zid already has a request in the queue.
func ValidateSubmit(zid, description string, hasActive bool) error {
	if strings.TrimSpace(zid) == "" {
		return ErrEmptyZID
	}
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	if hasActive {
		return ErrDuplicateRequest
	}
	return nil
}

// ValidateEnd checks that actorZID may clear the queue.
func ValidateEnd(actorZID, adminZID string) error {
	adminZID = strings.TrimSpace(adminZID)
	if adminZID == "" {
		adminZID = model.DefaultAdminZID
	}
	if strings.TrimSpace(actorZID) != adminZID {
		return ErrNotAdmin
	}
	return nil
}
