package cli

import (
	"fmt"
	"strings"

	"helpr/internal/desk"
	"helpr/internal/format"
	"helpr/internal/model"
	"helpr/internal/statusutil"
	"helpr/internal/view"

	"github.com/spf13/cobra"
)

// studentPayload is the student view plus the queue position, when known.
type studentPayload struct {
	view.StudentView
	Remaining *int `json:"remaining,omitempty"`
}

func (p studentPayload) Text() string {
	var b strings.Builder
	b.WriteString(p.Message)
	if r := p.Request; r != nil {
		fmt.Fprintf(&b, "\n\n%s  %s", statusutil.Short(r.Status), strings.Join(strings.Fields(r.Description), " "))
		if p.Remaining != nil {
			fmt.Fprintf(&b, "\n%d waiting ahead of you", *p.Remaining)
		}
	}
	if p.Cancel != nil {
		state := "available"
		if !p.Cancel.Enabled {
			state = "unavailable while a tutor is helping"
		}
		fmt.Fprintf(&b, "\ncancel: %s", state)
	}
	return b.String()
}

type tutorPayload struct {
	view.TutorView
}

func (p tutorPayload) Text() string {
	t := format.Table{
		Headers: []string{"#", "zid", "status", "description", "actions"},
		Empty:   p.Message,
	}
	for i, row := range p.Rows {
		var actions []string
		for _, c := range row.Actions {
			if c.Enabled {
				actions = append(actions, string(c.Action))
			}
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(i + 1),
			row.ZID,
			statusutil.Short(row.Status),
			row.Description,
			strings.Join(actions, ","),
		})
	}
	out := t.Text()
	if p.EndSession.Enabled {
		out += "\n(admin: `helpr end` clears the queue)"
	}
	return out
}

func snapshotPayload(snap desk.Snapshot, remaining *int) any {
	switch {
	case snap.Student != nil:
		return studentPayload{StudentView: *snap.Student, Remaining: remaining}
	case snap.Tutor != nil:
		return tutorPayload{TutorView: *snap.Tutor}
	default:
		return nil
	}
}

// writeSnapshot prints whatever view the desk has, then reports err. After a
// rejected action the refreshed view is still printed so the caller sees why.
func writeSnapshot(cmd *cobra.Command, app *App, snap desk.Snapshot, remaining *int, hints []string, err error) error {
	if p := snapshotPayload(snap, remaining); p != nil {
		if hints == nil {
			hints = []string{}
		}
		if werr := writeOut(cmd, app, map[string]any{"data": p, "_hints": hints}); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func tutorHints(v *view.TutorView) []string {
	if v == nil {
		return nil
	}
	var hints []string
	for _, row := range v.Rows {
		switch {
		case row.Enabled(model.ActionHelp):
			hints = append(hints, "helpr claim "+row.ZID)
		case row.Enabled(model.ActionResolve):
			hints = append(hints, "helpr resolve "+row.ZID)
		}
		if len(hints) == 3 {
			break
		}
	}
	return hints
}
