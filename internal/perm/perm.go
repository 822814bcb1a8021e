package perm

import (
	"strings"

	"helpr/internal/model"
)

// IsEnabled reports whether a per-request action should be offered for r.
//
// This is the client's advisory copy of the queue rules. It exists so views can
// disable controls the service would reject; the service re-checks everything.
//
//   - help, cancel:      r is waiting
//   - resolve, revert:   r is receiving
//
// Submit, end and reprioritise are not per-request actions and are never enabled here.
func IsEnabled(action model.Action, r model.Request) bool {
	switch action {
	case model.ActionHelp, model.ActionCancel:
		return r.Status == model.StatusWaiting
	case model.ActionResolve, model.ActionRevert:
		return r.Status == model.StatusReceiving
	default:
		return false
	}
}

// EndSessionEnabled reports whether sess may clear the whole queue.
// Only a tutor session whose identity is the administrator qualifies.
func EndSessionEnabled(sess model.Session, adminZID string) bool {
	adminZID = strings.TrimSpace(adminZID)
	if adminZID == "" {
		adminZID = model.DefaultAdminZID
	}
	return sess.Role == model.RoleTutor && sess.ZID == adminZID
}

// CanSubmit reports whether a student with the given current request (nil when absent)
// should be offered the submit form.
func CanSubmit(sess model.Session, current *model.Request) bool {
	return sess.Role == model.RoleStudent && current == nil
}

// RowActions is the fixed per-row action set shown to tutors, in display order.
var RowActions = []model.Action{model.ActionHelp, model.ActionResolve, model.ActionRevert}
