package model

import (
	"fmt"
	"strings"
)

// DefaultAdminZID is the identity allowed to end the help session unless configured otherwise.
const DefaultAdminZID = "admin"

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusReceiving Status = "receiving"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusWaiting:
		return StatusWaiting, nil
	case StatusReceiving:
		return StatusReceiving, nil
	default:
		return "", fmt.Errorf("invalid status: %q (expected waiting|receiving)", s)
	}
}

// Request is one help ticket. ZID is the natural key: the service holds at most
// one request per identity.
type Request struct {
	ZID         string `json:"zid"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Queue is ordered exactly as the service returned it.
type Queue []Request

// Find returns every request in q whose identity is zid, in queue order.
func (q Queue) Find(zid string) []Request {
	var out []Request
	for _, r := range q {
		if r.ZID == zid {
			out = append(out, r)
		}
	}
	return out
}

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleTutor:
		return RoleTutor, nil
	default:
		return "", fmt.Errorf("invalid role: %q (expected student|tutor)", s)
	}
}

// Session is the logged-in actor. It is built once at login and passed by value.
type Session struct {
	Role Role   `json:"role"`
	ZID  string `json:"zid"`
}

func (s Session) IsZero() bool { return s.Role == "" && s.ZID == "" }

type Action string

const (
	ActionSubmit       Action = "make_request"
	ActionCancel       Action = "cancel"
	ActionHelp         Action = "help"
	ActionResolve      Action = "resolve"
	ActionRevert       Action = "revert"
	ActionEnd          Action = "end"
	ActionReprioritise Action = "reprioritise"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionSubmit, ActionCancel, ActionHelp, ActionResolve, ActionRevert, ActionEnd, ActionReprioritise:
		return a, nil
	case "submit", "request":
		return ActionSubmit, nil
	default:
		return "", fmt.Errorf("unknown action: %q", s)
	}
}

// Event is one accepted mutation, as recorded by the service.
type Event struct {
	ID      string `json:"id"`
	Action  Action `json:"action"`
	ZID     string `json:"zid,omitempty"`
	ActorID string `json:"actorId,omitempty"`
	AtMs    int64  `json:"atUnixMs"`
}

// Health is the service's liveness answer.
type Health struct {
	Status   string `json:"status"`
	AdminZID string `json:"admin"`
}
