// Package view projects a queue snapshot into what one actor should see.
//
// Projections are pure: the same queue and session always produce the same view,
// and nothing here keeps state between snapshots.
package view

import (
	"fmt"

	"helpr/internal/model"
	"helpr/internal/perm"
	"helpr/internal/statusutil"
)

// Control is one action affordance and whether it is currently offered.
type Control struct {
	Action  model.Action `json:"action"`
	Enabled bool         `json:"enabled"`
}

// StudentView is a student's own request, or the neutral state when they have none.
type StudentView struct {
	ZID       string         `json:"zid"`
	Request   *model.Request `json:"request,omitempty"`
	Message   string         `json:"message"`
	Cancel    *Control       `json:"cancel,omitempty"`
	CanSubmit bool           `json:"canSubmit"`
}

type TutorRow struct {
	model.Request
	Actions []Control `json:"actions"`
}

// Enabled reports whether action is offered on this row.
func (r TutorRow) Enabled(action model.Action) bool {
	for _, c := range r.Actions {
		if c.Action == action {
			return c.Enabled
		}
	}
	return false
}

// TutorView is the whole queue, one row per request, plus the session-wide controls.
type TutorView struct {
	ZID          string     `json:"zid"`
	Rows         []TutorRow `json:"rows"`
	Empty        bool       `json:"empty"`
	Message      string     `json:"message,omitempty"`
	EndSession   Control    `json:"endSession"`
	Reprioritise Control    `json:"reprioritise"`
}

// DuplicateIdentityError means the queue holds more than one request for one identity,
// which the service must never allow.
type DuplicateIdentityError struct {
	ZID   string
	Count int
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("queue holds %d requests for %s; expected at most one", e.Count, e.ZID)
}

type RoleError struct {
	Want model.Role
	Have model.Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("%s view requires a %s session, have %q", e.Want, e.Want, e.Have)
}

// Student finds sess's request in q.
func Student(q model.Queue, sess model.Session) (StudentView, error) {
	if sess.Role != model.RoleStudent {
		return StudentView{}, &RoleError{Want: model.RoleStudent, Have: sess.Role}
	}
	matches := q.Find(sess.ZID)
	if len(matches) > 1 {
		return StudentView{}, &DuplicateIdentityError{ZID: sess.ZID, Count: len(matches)}
	}

	v := StudentView{ZID: sess.ZID}
	if len(matches) == 0 {
		v.Message = statusutil.MsgNone
		v.CanSubmit = perm.CanSubmit(sess, nil)
		return v, nil
	}

	r := matches[0]
	v.Request = &r
	v.Message = statusutil.StudentMessage(r.Status)
	// Rendered in both active states; disabled while a tutor is helping.
	v.Cancel = &Control{Action: model.ActionCancel, Enabled: perm.IsEnabled(model.ActionCancel, r)}
	v.CanSubmit = perm.CanSubmit(sess, &r)
	return v, nil
}

// Tutor projects every request in q, in order.
func Tutor(q model.Queue, sess model.Session, adminZID string) (TutorView, error) {
	if sess.Role != model.RoleTutor {
		return TutorView{}, &RoleError{Want: model.RoleTutor, Have: sess.Role}
	}
	v := TutorView{
		ZID:          sess.ZID,
		Rows:         make([]TutorRow, 0, len(q)),
		EndSession:   Control{Action: model.ActionEnd, Enabled: perm.EndSessionEnabled(sess, adminZID)},
		Reprioritise: Control{Action: model.ActionReprioritise, Enabled: len(q) > 1},
	}
	for _, r := range q {
		row := TutorRow{Request: r, Actions: make([]Control, 0, len(perm.RowActions))}
		for _, a := range perm.RowActions {
			row.Actions = append(row.Actions, Control{Action: a, Enabled: perm.IsEnabled(a, r)})
		}
		v.Rows = append(v.Rows, row)
	}
	if len(v.Rows) == 0 {
		v.Empty = true
		v.Message = statusutil.MsgEmpty
	}
	return v, nil
}
