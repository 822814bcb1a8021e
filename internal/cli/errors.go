package cli

import (
	"fmt"

	"helpr/internal/model"
)

// unavailableError is a locally gated action: the last fetched state says the
// service would reject it, so it was not sent. --force sends it anyway.
type unavailableError struct {
	action model.Action
	zid    string
	status string
}

func (e unavailableError) Error() string {
	return fmt.Sprintf("%s is not available for %s (request is %s); not sent", e.action, e.zid, e.status)
}

func gateError(action model.Action, zid string, r *model.Request) error {
	st := "absent"
	if r != nil {
		st = string(r.Status)
	}
	return unavailableError{action: action, zid: zid, status: st}
}

type notAdminError struct {
	zid string
}

func (e notAdminError) Error() string {
	return fmt.Sprintf("permission denied: %s is not the administrator; not sent", e.zid)
}
