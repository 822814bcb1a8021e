package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Notice is a change hint from the service. It carries no queue state: the only
// correct reaction is to Fetch.
type Notice struct {
	Version uint64 `json:"version"`
}

// Watch connects to the service's change feed and calls fn for each notice until
// ctx is done or the connection drops. The first notice arrives right after connecting.
func (c *Client) Watch(ctx context.Context, fn func(Notice)) error {
	u, err := watchURL(c.BaseURL)
	if err != nil {
		return err
	}
	dialer := websocket.Dialer{HandshakeTimeout: c.Timeout}
	conn, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return &TransportError{Op: "watch", URL: u, Err: err}
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return &TransportError{Op: "watch", URL: u, Err: err}
		}
		var n Notice
		if err := json.Unmarshal(data, &n); err != nil {
			continue
		}
		fn(n)
	}
}

func watchURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("watch: unsupported base URL scheme " + u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/watch"
	return u.String(), nil
}
