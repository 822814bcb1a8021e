// Package desk runs the client cycle: fetch the queue, project it for the
// session, and after every dispatched action fetch again.
package desk

import (
	"context"
	"errors"
	"strings"
	"sync"

	"helpr/internal/model"
	"helpr/internal/view"
)

// Service is the remote queue as the client sees it.
type Service interface {
	Fetch(ctx context.Context) (model.Queue, error)
	Dispatch(ctx context.Context, action model.Action, zid, description string) error
}

// Snapshot is one rendered cycle. Exactly one of Student and Tutor is set.
type Snapshot struct {
	Session model.Session     `json:"session"`
	Student *view.StudentView `json:"student,omitempty"`
	Tutor   *view.TutorView   `json:"tutor,omitempty"`

	// Seq orders snapshots by when their fetch started. Zero means none yet.
	Seq uint64 `json:"-"`
}

// Desk holds the last good snapshot for one session. It never edits a snapshot
// locally: every change comes from a fetch.
type Desk struct {
	svc      Service
	sess     model.Session
	adminZID string

	mu      sync.Mutex
	last    *Snapshot
	started uint64 // seq of the most recently started fetch
}

var ErrNoSession = errors.New("desk: no session")

func New(svc Service, sess model.Session, adminZID string) (*Desk, error) {
	if sess.Role == "" || strings.TrimSpace(sess.ZID) == "" {
		return nil, ErrNoSession
	}
	if adminZID = strings.TrimSpace(adminZID); adminZID == "" {
		adminZID = model.DefaultAdminZID
	}
	return &Desk{svc: svc, sess: sess, adminZID: adminZID}, nil
}

func (d *Desk) Session() model.Session { return d.sess }

// Last returns the most recent successfully projected snapshot, if any.
func (d *Desk) Last() (Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return Snapshot{}, false
	}
	return *d.last, true
}

// Refresh fetches and projects. On failure the previous snapshot is returned
// unchanged together with the error.
//
// Fetches are ordered by when they started. A fetch that lands after a newer
// one has been stored is discarded, and the newer snapshot is returned instead.
func (d *Desk) Refresh(ctx context.Context) (Snapshot, error) {
	d.mu.Lock()
	d.started++
	seq := d.started
	d.mu.Unlock()

	q, err := d.svc.Fetch(ctx)
	if err != nil {
		prev, _ := d.Last()
		return prev, err
	}
	snap, err := d.project(q)
	if err != nil {
		prev, _ := d.Last()
		return prev, err
	}
	snap.Seq = seq

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last != nil && d.last.Seq > seq {
		return *d.last, nil
	}
	d.last = &snap
	return snap, nil
}

// Dispatch sends action and then refreshes whether or not the service accepted it.
// A rejected action is reported ahead of a refresh failure.
func (d *Desk) Dispatch(ctx context.Context, action model.Action, zid, description string) (Snapshot, error) {
	derr := d.svc.Dispatch(ctx, action, zid, description)
	snap, ferr := d.Refresh(ctx)
	if derr != nil {
		return snap, derr
	}
	return snap, ferr
}

// Submit asks for help as the session's own identity.
func (d *Desk) Submit(ctx context.Context, description string) (Snapshot, error) {
	return d.Dispatch(ctx, model.ActionSubmit, d.sess.ZID, description)
}

// Cancel withdraws the session's own request.
func (d *Desk) Cancel(ctx context.Context) (Snapshot, error) {
	return d.Dispatch(ctx, model.ActionCancel, d.sess.ZID, "")
}

// End clears the queue. The acting identity is sent so the service can check it.
func (d *Desk) End(ctx context.Context) (Snapshot, error) {
	return d.Dispatch(ctx, model.ActionEnd, d.sess.ZID, "")
}

func (d *Desk) Reprioritise(ctx context.Context) (Snapshot, error) {
	return d.Dispatch(ctx, model.ActionReprioritise, d.sess.ZID, "")
}

func (d *Desk) project(q model.Queue) (Snapshot, error) {
	snap := Snapshot{Session: d.sess}
	switch d.sess.Role {
	case model.RoleStudent:
		v, err := view.Student(q, d.sess)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Student = &v
	default:
		v, err := view.Tutor(q, d.sess, d.adminZID)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Tutor = &v
	}
	return snap, nil
}
