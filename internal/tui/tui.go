package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"helpr/internal/client"
	"helpr/internal/desk"
)

type Options struct {
	Desk         *desk.Desk
	PollInterval time.Duration

	// Notices, when set, triggers a refresh on every value received.
	Notices <-chan client.Notice

	// Remaining, when set, shows a student how many requests are ahead of theirs.
	Remaining func(ctx context.Context, zid string) (int, error)
}

func Run(opts Options) error {
	if opts.Desk == nil {
		return errors.New("tui: no desk")
	}
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// WatchNotices runs c.Watch in the background, reconnecting after failures, and
// delivers notices on the returned channel until ctx is done. Notices are dropped
// when the reader is behind; one pending refresh covers any number of changes.
func WatchNotices(ctx context.Context, c *client.Client, retry time.Duration) <-chan client.Notice {
	if retry <= 0 {
		retry = defaultPollInterval
	}
	ch := make(chan client.Notice, 1)
	go func() {
		defer close(ch)
		for {
			_ = c.Watch(ctx, func(n client.Notice) {
				select {
				case ch <- n:
				default:
				}
			})
			select {
			case <-ctx.Done():
				return
			case <-time.After(retry):
			}
		}
	}()
	return ch
}
