package statusutil

import (
	"strings"

	"helpr/internal/model"
)

// Student-facing messages.
const (
	MsgWaiting   = "your request is waiting for a tutor to help."
	MsgReceiving = "your request is being received by a tutor."
	MsgNone      = "no active request. please make a request."
	MsgEmpty     = "no requests in queue."
)

func NormalizeStatus(s string) (model.Status, bool) {
	st, err := model.ParseStatus(s)
	if err != nil {
		return "", false
	}
	return st, true
}

// StudentMessage is what a student sees for their own request's status.
func StudentMessage(st model.Status) string {
	switch st {
	case model.StatusWaiting:
		return MsgWaiting
	case model.StatusReceiving:
		return MsgReceiving
	default:
		return MsgNone
	}
}

// Short is a compact label for tables and rows.
func Short(st model.Status) string {
	switch st {
	case model.StatusWaiting:
		return "waiting"
	case model.StatusReceiving:
		return "receiving"
	default:
		s := strings.TrimSpace(string(st))
		if s == "" {
			return "-"
		}
		return s
	}
}
