package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"helpr/internal/model"
	"helpr/internal/statusutil"
)

const defaultTimeout = 5 * time.Second

// route is how one action maps onto the service's HTTP surface.
type route struct {
	method string
	path   string
}

var routes = map[model.Action]route{
	model.ActionSubmit:       {http.MethodPost, "/make_request"},
	model.ActionCancel:       {http.MethodDelete, "/cancel"},
	model.ActionHelp:         {http.MethodPost, "/help"},
	model.ActionResolve:      {http.MethodDelete, "/resolve"},
	model.ActionRevert:       {http.MethodPost, "/revert"},
	model.ActionEnd:          {http.MethodDelete, "/end"},
	model.ActionReprioritise: {http.MethodPost, "/reprioritise"},
}

// Client talks to the queue service. Every call is bounded by Timeout.
type Client struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client

	// Actor is sent as X-Helpr-Actor on actions so the service can attribute them.
	Actor string
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Timeout: timeout,
		HTTP:    &http.Client{},
	}
}

type actionBody struct {
	ZID         string `json:"zid"`
	Description string `json:"description,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Fetch returns the whole queue in service order.
func (c *Client) Fetch(ctx context.Context) (model.Queue, error) {
	var q model.Queue
	if err := c.getJSON(ctx, "fetch", "/queue", &q); err != nil {
		return nil, err
	}
	if q == nil {
		q = model.Queue{}
	}
	for i := range q {
		st, ok := statusutil.NormalizeStatus(string(q[i].Status))
		if !ok {
			return nil, &ServiceError{Op: "fetch", StatusCode: http.StatusOK, Message: fmt.Sprintf("request %s has unknown status %q", q[i].ZID, q[i].Status)}
		}
		q[i].Status = st
	}
	return q, nil
}

// Health reports liveness and the service's administrator identity.
func (c *Client) Health(ctx context.Context) (model.Health, error) {
	var h model.Health
	if err := c.getJSON(ctx, "health", "/health", &h); err != nil {
		return model.Health{}, err
	}
	return h, nil
}

// Remaining returns how many waiting requests are ahead of zid's.
func (c *Client) Remaining(ctx context.Context, zid string) (int, error) {
	var out struct {
		Remaining int `json:"remaining"`
	}
	if err := c.getJSON(ctx, "remaining", "/remaining?zid="+url.QueryEscape(zid), &out); err != nil {
		return 0, err
	}
	return out.Remaining, nil
}

// Events returns the most recent accepted mutations, newest first.
func (c *Client) Events(ctx context.Context, limit int) ([]model.Event, error) {
	var out []model.Event
	path := "/events"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.getJSON(ctx, "events", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dispatch sends one state-changing action. zid is the target request's identity,
// or the acting identity for end and reprioritise. description is only sent on submit.
// The response body of a successful call is not consumed.
func (c *Client) Dispatch(ctx context.Context, action model.Action, zid, description string) error {
	rt, ok := routes[action]
	if !ok {
		return fmt.Errorf("dispatch: unknown action %q", action)
	}
	body := actionBody{ZID: zid}
	if action == model.ActionSubmit {
		body.Description = description
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	u := c.BaseURL + rt.path
	req, err := http.NewRequestWithContext(ctx, rt.method, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	if a := strings.TrimSpace(c.Actor); a != "" {
		req.Header.Set("X-Helpr-Actor", a)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Op: string(action), URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return &ActionError{
		Action:     action,
		ZID:        zid,
		StatusCode: resp.StatusCode,
		Message:    readErrorMessage(resp.Body),
	}
}

func (c *Client) getJSON(ctx context.Context, op, path string, v any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	u := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, URL: u, Err: err}
	}
	if err := json.Unmarshal(b, v); err != nil {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := c.Timeout
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func readErrorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil || len(b) == 0 {
		return ""
	}
	var eb errorBody
	if json.Unmarshal(b, &eb) == nil && strings.TrimSpace(eb.Error) != "" {
		return strings.TrimSpace(eb.Error)
	}
	return strings.TrimSpace(string(b))
}
