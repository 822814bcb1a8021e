package desk

import (
	"context"
	"errors"
	"sync"
	"testing"

	"helpr/internal/model"
	"helpr/internal/view"
)

var errRejected = errors.New("rejected")
var errDown = errors.New("down")

// fakeService applies the transition table to an in-memory queue.
type fakeService struct {
	mu       sync.Mutex
	q        model.Queue
	fetchErr error
	fetches  int
}

func (f *fakeService) Fetch(ctx context.Context) (model.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append(model.Queue{}, f.q...), nil
}

func (f *fakeService) Dispatch(ctx context.Context, action model.Action, zid, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := -1
	for i, r := range f.q {
		if r.ZID == zid {
			idx = i
		}
	}
	switch action {
	case model.ActionSubmit:
		if idx >= 0 || description == "" {
			return errRejected
		}
		f.q = append(f.q, model.Request{ZID: zid, Description: description, Status: model.StatusWaiting})
	case model.ActionHelp:
		if idx < 0 || f.q[idx].Status != model.StatusWaiting {
			return errRejected
		}
		f.q[idx].Status = model.StatusReceiving
	case model.ActionRevert:
		if idx < 0 || f.q[idx].Status != model.StatusReceiving {
			return errRejected
		}
		f.q[idx].Status = model.StatusWaiting
	case model.ActionCancel, model.ActionResolve:
		want := model.StatusWaiting
		if action == model.ActionResolve {
			want = model.StatusReceiving
		}
		if idx < 0 || f.q[idx].Status != want {
			return errRejected
		}
		f.q = append(f.q[:idx], f.q[idx+1:]...)
	case model.ActionEnd:
		if zid != model.DefaultAdminZID {
			return errRejected
		}
		f.q = nil
	default:
		return errRejected
	}
	return nil
}

func mustDesk(t *testing.T, svc Service, sess model.Session) *Desk {
	t.Helper()
	d, err := New(svc, sess, "")
	if err != nil {
		t.Fatalf("new desk: %v", err)
	}
	return d
}

func TestNew_RequiresSession(t *testing.T) {
	if _, err := New(&fakeService{}, model.Session{}, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestStudentSubmit_ShowsWaiting(t *testing.T) {
	svc := &fakeService{}
	d := mustDesk(t, svc, model.Session{Role: model.RoleStudent, ZID: "z1111111"})

	snap, err := d.Submit(context.Background(), "need help with recursion")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.Student == nil || snap.Student.Request == nil {
		t.Fatalf("expected student request, got %#v", snap)
	}
	if snap.Student.Request.Status != model.StatusWaiting || !snap.Student.Cancel.Enabled {
		t.Fatalf("unexpected student view: %#v", snap.Student)
	}
}

func TestDispatch_RejectedStillRefetches(t *testing.T) {
	svc := &fakeService{q: model.Queue{{ZID: "z1", Description: "d", Status: model.StatusReceiving}}}
	d := mustDesk(t, svc, model.Session{Role: model.RoleTutor, ZID: "t1"})

	before := svc.fetches
	snap, err := d.Dispatch(context.Background(), model.ActionHelp, "z1", "")
	if !errors.Is(err, errRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if svc.fetches != before+1 {
		t.Fatalf("expected a re-fetch after rejection")
	}
	if snap.Tutor == nil || len(snap.Tutor.Rows) != 1 || snap.Tutor.Rows[0].Enabled(model.ActionHelp) {
		t.Fatalf("expected help disabled after re-fetch, got %#v", snap.Tutor)
	}
}

func TestRefresh_FailureKeepsLastGood(t *testing.T) {
	svc := &fakeService{q: model.Queue{{ZID: "z1", Description: "d", Status: model.StatusWaiting}}}
	d := mustDesk(t, svc, model.Session{Role: model.RoleTutor, ZID: "t1"})

	good, err := d.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	svc.fetchErr = errDown
	svc.q = nil

	got, err := d.Refresh(context.Background())
	if !errors.Is(err, errDown) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if got.Tutor == nil || len(got.Tutor.Rows) != len(good.Tutor.Rows) {
		t.Fatalf("view should stay at last good state, got %#v", got.Tutor)
	}
	last, ok := d.Last()
	if !ok || last.Tutor.Empty {
		t.Fatalf("last snapshot must not be overwritten by a failed fetch")
	}
}

func TestRefresh_DuplicateIdentityIsAnError(t *testing.T) {
	svc := &fakeService{q: model.Queue{
		{ZID: "z1", Description: "a", Status: model.StatusWaiting},
		{ZID: "z1", Description: "b", Status: model.StatusWaiting},
	}}
	d := mustDesk(t, svc, model.Session{Role: model.RoleStudent, ZID: "z1"})
	_, err := d.Refresh(context.Background())
	var de *view.DuplicateIdentityError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateIdentityError, got %v", err)
	}
	if _, ok := d.Last(); ok {
		t.Fatalf("an invalid queue must not become the last good snapshot")
	}
}

func TestDoubleClaim_BothTutorsConverge(t *testing.T) {
	svc := &fakeService{q: model.Queue{{ZID: "z1111111", Description: "d", Status: model.StatusWaiting}}}
	a := mustDesk(t, svc, model.Session{Role: model.RoleTutor, ZID: "t1"})
	b := mustDesk(t, svc, model.Session{Role: model.RoleTutor, ZID: "t2"})
	ctx := context.Background()

	for _, d := range []*Desk{a, b} {
		snap, err := d.Refresh(ctx)
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if !snap.Tutor.Rows[0].Enabled(model.ActionHelp) {
			t.Fatalf("both tutors should initially see help enabled")
		}
	}

	sa, errA := a.Dispatch(ctx, model.ActionHelp, "z1111111", "")
	sb, errB := b.Dispatch(ctx, model.ActionHelp, "z1111111", "")
	if errA != nil || !errors.Is(errB, errRejected) {
		t.Fatalf("expected first claim to win and second to be rejected: %v, %v", errA, errB)
	}
	for _, snap := range []Snapshot{sa, sb} {
		row := snap.Tutor.Rows[0]
		if row.Status != model.StatusReceiving || row.Enabled(model.ActionHelp) || !row.Enabled(model.ActionResolve) {
			t.Fatalf("tutors did not converge on receiving: %#v", row)
		}
	}
}

func TestEnd_ClearsForEveryone(t *testing.T) {
	svc := &fakeService{q: model.Queue{{ZID: "z1", Description: "d", Status: model.StatusWaiting}}}
	admin := mustDesk(t, svc, model.Session{Role: model.RoleTutor, ZID: "admin"})
	stu := mustDesk(t, svc, model.Session{Role: model.RoleStudent, ZID: "z1"})

	snap, err := admin.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !snap.Tutor.Empty || !snap.Tutor.EndSession.Enabled {
		t.Fatalf("unexpected admin view: %#v", snap.Tutor)
	}
	s, err := stu.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if s.Student.Request != nil || !s.Student.CanSubmit {
		t.Fatalf("student should see neutral state, got %#v", s.Student)
	}
}

// slowFirstFetch reads the queue on its first Fetch, then holds the result
// until release is closed.
type slowFirstFetch struct {
	*fakeService
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *slowFirstFetch) Fetch(ctx context.Context) (model.Queue, error) {
	first := false
	s.once.Do(func() { first = true })
	q, err := s.fakeService.Fetch(ctx)
	if first {
		close(s.read)
		<-s.release
	}
	return q, err
}

func TestRefresh_OlderFetchDoesNotReplaceNewer(t *testing.T) {
	svc := &slowFirstFetch{
		fakeService: &fakeService{q: model.Queue{{ZID: "z1", Description: "d", Status: model.StatusWaiting}}},
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
	d := mustDesk(t, svc, model.Session{Role: model.RoleTutor, ZID: "t1"})
	ctx := context.Background()

	type result struct {
		snap Snapshot
		err  error
	}
	polled := make(chan result, 1)
	go func() {
		snap, err := d.Refresh(ctx)
		polled <- result{snap, err}
	}()
	<-svc.read

	after, err := d.Dispatch(ctx, model.ActionHelp, "z1", "")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if after.Tutor.Rows[0].Status != model.StatusReceiving {
		t.Fatalf("expected receiving after claim, got %#v", after.Tutor.Rows[0])
	}

	close(svc.release)
	late := <-polled
	if late.err != nil {
		t.Fatalf("poll: %v", late.err)
	}
	if late.snap.Tutor.Rows[0].Status != model.StatusReceiving || late.snap.Seq != after.Seq {
		t.Fatalf("late poll should return the newer snapshot, got %#v (seq %d, want %d)", late.snap.Tutor.Rows[0], late.snap.Seq, after.Seq)
	}
	last, _ := d.Last()
	if last.Tutor.Rows[0].Status != model.StatusReceiving {
		t.Fatalf("last snapshot rolled back to %s", last.Tutor.Rows[0].Status)
	}
}

func TestRefresh_SeqIncreases(t *testing.T) {
	d := mustDesk(t, &fakeService{}, model.Session{Role: model.RoleStudent, ZID: "z1"})
	a, _ := d.Refresh(context.Background())
	b, _ := d.Refresh(context.Background())
	if a.Seq == 0 || b.Seq <= a.Seq {
		t.Fatalf("expected increasing seq, got %d then %d", a.Seq, b.Seq)
	}
}
