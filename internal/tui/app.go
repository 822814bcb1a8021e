package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"helpr/internal/client"
	"helpr/internal/desk"
	"helpr/internal/model"
	"helpr/internal/view"
)

const defaultPollInterval = 3 * time.Second

type snapshotMsg struct {
	snap   desk.Snapshot
	err    error
	action model.Action // "" for a plain refresh
}

type pollTickMsg struct{}

type watchNoticeMsg struct {
	version uint64
}

type remainingMsg struct {
	zid string
	n   int
	err error
}

type appModel struct {
	desk      *desk.Desk
	sess      model.Session
	poll      time.Duration
	notices   <-chan client.Notice
	remaining func(ctx context.Context, zid string) (int, error)

	width  int
	height int

	snap   desk.Snapshot
	loaded bool
	busy   bool

	// tutor
	selected   int
	showDetail bool
	confirmEnd bool

	// student
	editing  bool
	input    textinput.Model
	position int // waiting requests ahead; -1 when unknown

	notice    string
	noticeErr bool
	// fetchFailed marks the notice as coming from a failed plain refresh.
	fetchFailed bool

	keys keyMap
	help help.Model
}

func newAppModel(opts Options) appModel {
	sess := opts.Desk.Session()
	ti := textinput.New()
	ti.Placeholder = "what do you need help with?"
	ti.CharLimit = 500
	ti.Prompt = "> "

	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	m := appModel{
		desk:      opts.Desk,
		sess:      sess,
		poll:      poll,
		notices:   opts.Notices,
		remaining: opts.Remaining,
		width:     80,
		height:    24,
		input:     ti,
		position:  -1,
		keys:      newKeyMap(sess.Role),
		help:      help.New(),
	}
	m.keys.End.SetEnabled(false)
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.tickPoll(), m.listenCmd())
}

func (m appModel) refreshCmd() tea.Cmd {
	d := m.desk
	return func() tea.Msg {
		snap, err := d.Refresh(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m appModel) dispatchCmd(action model.Action, zid, description string) tea.Cmd {
	d := m.desk
	return func() tea.Msg {
		snap, err := d.Dispatch(context.Background(), action, zid, description)
		return snapshotMsg{snap: snap, err: err, action: action}
	}
}

func (m appModel) remainingCmd(zid string) tea.Cmd {
	if m.remaining == nil {
		return nil
	}
	fn := m.remaining
	return func() tea.Msg {
		n, err := fn(context.Background(), zid)
		return remainingMsg{zid: zid, n: n, err: err}
	}
}

func (m appModel) tickPoll() tea.Cmd {
	return tea.Tick(m.poll, func(time.Time) tea.Msg { return pollTickMsg{} })
}

// listenCmd waits for the next change notice. A closed channel ends listening;
// polling still keeps the view current.
func (m appModel) listenCmd() tea.Cmd {
	ch := m.notices
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return watchNoticeMsg{version: n.Version}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pollTickMsg:
		if m.busy {
			return m, m.tickPoll()
		}
		return m, tea.Batch(m.refreshCmd(), m.tickPoll())

	case watchNoticeMsg:
		if m.busy {
			return m, m.listenCmd()
		}
		return m, tea.Batch(m.refreshCmd(), m.listenCmd())

	case snapshotMsg:
		return m.applySnapshot(msg)

	case remainingMsg:
		if msg.err != nil {
			m.position = -1
		} else {
			m.position = msg.n
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m appModel) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.action != "" {
		m.busy = false
	}
	// Commands can finish out of order; never go back to an older fetch.
	stale := msg.snap.Seq < m.snap.Seq
	if stale && msg.action == "" && msg.err == nil {
		return m, nil
	}
	// desk returns the last good snapshot alongside a fetch error, so anything
	// non-empty here is safe to show.
	if !stale && (msg.snap.Student != nil || msg.snap.Tutor != nil) {
		m.snap = msg.snap
		m.loaded = true
	}
	switch {
	case msg.err != nil:
		m.setError(describeError(msg.err))
		m.fetchFailed = msg.action == ""
	case msg.action != "":
		m.setNotice(actionDone(msg.action))
	case m.fetchFailed:
		m.setNotice("")
	}

	if t := m.snap.Tutor; t != nil {
		if m.selected >= len(t.Rows) {
			m.selected = len(t.Rows) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.keys.End.SetEnabled(t.EndSession.Enabled)
	}
	if s := m.snap.Student; s != nil {
		if s.Request != nil && s.Request.Status == model.StatusWaiting {
			return m, m.remainingCmd(s.ZID)
		}
		m.position = -1
	}
	return m, nil
}

func (m appModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		desc := strings.TrimSpace(m.input.Value())
		if desc == "" {
			m.setError("description is empty")
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		m.input.Reset()
		m.busy = true
		return m, m.dispatchCmd(model.ActionSubmit, m.sess.ZID, desc)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmEnd {
		m.confirmEnd = false
		if msg.String() == "y" {
			m.busy = true
			return m, m.dispatchCmd(model.ActionEnd, m.sess.ZID, "")
		}
		m.setNotice("end session aborted")
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	}
	if m.busy {
		m.setNotice("working…")
		return m, nil
	}

	switch m.sess.Role {
	case model.RoleStudent:
		return m.updateStudentKeys(msg)
	default:
		return m.updateTutorKeys(msg)
	}
}

func (m appModel) updateStudentKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.snap.Student
	switch {
	case key.Matches(msg, m.keys.New):
		if s != nil && !s.CanSubmit {
			m.setError("you already have an active request")
			return m, nil
		}
		m.editing = true
		m.notice = ""
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Cancel):
		if s == nil || s.Cancel == nil || !s.Cancel.Enabled {
			m.setError("cancel is not available right now")
			return m, nil
		}
		m.busy = true
		return m, m.dispatchCmd(model.ActionCancel, m.sess.ZID, "")
	}
	return m, nil
}

func (m appModel) updateTutorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.snap.Tutor
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if t != nil && m.selected < len(t.Rows)-1 {
			m.selected++
		}
		return m, nil
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		return m, nil
	case key.Matches(msg, m.keys.Reprioritise):
		if t == nil || !t.Reprioritise.Enabled {
			m.setError("nothing to reprioritise")
			return m, nil
		}
		m.busy = true
		return m, m.dispatchCmd(model.ActionReprioritise, m.sess.ZID, "")
	case key.Matches(msg, m.keys.End):
		if t == nil || !t.EndSession.Enabled {
			return m, nil
		}
		m.confirmEnd = true
		m.setNotice("end the session and clear the whole queue? (y/n)")
		return m, nil
	}

	var action model.Action
	switch {
	case key.Matches(msg, m.keys.Claim):
		action = model.ActionHelp
	case key.Matches(msg, m.keys.Resolve):
		action = model.ActionResolve
	case key.Matches(msg, m.keys.Revert):
		action = model.ActionRevert
	default:
		return m, nil
	}
	row, ok := m.selectedRow()
	if !ok {
		m.setError("no request selected")
		return m, nil
	}
	if !row.Enabled(action) {
		m.setError(fmt.Sprintf("%s is not available: %s is %s", action, row.ZID, row.Status))
		return m, nil
	}
	m.busy = true
	return m, m.dispatchCmd(action, row.ZID, "")
}

func (m appModel) selectedRow() (view.TutorRow, bool) {
	t := m.snap.Tutor
	if t == nil || m.selected < 0 || m.selected >= len(t.Rows) {
		return view.TutorRow{}, false
	}
	return t.Rows[m.selected], true
}

func (m *appModel) setNotice(s string) {
	m.notice = s
	m.noticeErr = false
	m.fetchFailed = false
}

func (m *appModel) setError(s string) {
	m.notice = s
	m.noticeErr = true
	m.fetchFailed = false
}

func actionDone(a model.Action) string {
	switch a {
	case model.ActionSubmit:
		return "request submitted"
	case model.ActionCancel:
		return "request cancelled"
	case model.ActionHelp:
		return "request claimed"
	case model.ActionResolve:
		return "request resolved"
	case model.ActionRevert:
		return "request returned to the queue"
	case model.ActionReprioritise:
		return "queue reprioritised"
	case model.ActionEnd:
		return "session ended"
	default:
		return string(a)
	}
}

func describeError(err error) string {
	var ae *client.ActionError
	var te *client.TransportError
	var se *client.ServiceError
	var de *view.DuplicateIdentityError
	switch {
	case errors.As(err, &ae) && ae.Conflict():
		return fmt.Sprintf("%s rejected: %s (queue refreshed)", ae.Action, ae.Message)
	case errors.As(err, &ae):
		return ae.Error()
	case errors.As(err, &te):
		return "service unreachable; showing last known queue"
	case errors.As(err, &se):
		return fmt.Sprintf("service error %d; showing last known queue", se.StatusCode)
	case errors.As(err, &de):
		return de.Error()
	default:
		return err.Error()
	}
}
