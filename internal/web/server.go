package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"helpr/internal/model"
	"helpr/internal/mutate"
	"helpr/internal/store"
)

const maxBodyBytes = 64 * 1024

type ServerConfig struct {
	Addr     string
	AdminZID string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Store is opened by NewServer when nil. A store passed in is not closed by Close.
	Store *store.Store
}

// Server is the queue service: the only writer of the queue and the only place
// the transition rules are enforced.
type Server struct {
	cfg     ServerConfig
	st      *store.Store
	ownsSt  bool
	log     *slog.Logger
	changes *resourceHub
}

func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.AdminZID = strings.TrimSpace(cfg.AdminZID)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.AdminZID == "" {
		cfg.AdminZID = model.DefaultAdminZID
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st := cfg.Store
	owns := false
	if st == nil {
		var err error
		st, err = store.Open(ctx, store.Options{AdminZID: cfg.AdminZID})
		if err != nil {
			return nil, err
		}
		owns = true
	} else if st.AdminZID() != cfg.AdminZID {
		return nil, errors.New("web: store admin does not match server admin")
	}

	return &Server{
		cfg:     cfg,
		st:      st,
		ownsSt:  owns,
		log:     logger,
		changes: newResourceHub(),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Store() *store.Store { return s.st }

func (s *Server) Close() error {
	if s.ownsSt {
		return s.st.Close()
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /queue", s.handleQueue)
	mux.HandleFunc("GET /remaining", s.handleRemaining)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /watch", s.handleWatch)
	mux.HandleFunc("POST /make_request", s.handleMakeRequest)
	mux.HandleFunc("DELETE /cancel", s.handleTransition(model.ActionCancel))
	mux.HandleFunc("POST /help", s.handleTransition(model.ActionHelp))
	mux.HandleFunc("DELETE /resolve", s.handleTransition(model.ActionResolve))
	mux.HandleFunc("POST /revert", s.handleTransition(model.ActionRevert))
	mux.HandleFunc("POST /reprioritise", s.handleReprioritise)
	mux.HandleFunc("DELETE /end", s.handleEnd)
	return s.withRequestLog(mux)
}

// handleHealth also advertises the administrator, so clients gate "end"
// against the identity this service will actually accept.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Health{Status: "ok", AdminZID: s.st.AdminZID()})
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	q, err := s.st.Queue(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleRemaining(w http.ResponseWriter, r *http.Request) {
	zid := strings.TrimSpace(r.URL.Query().Get("zid"))
	if zid == "" {
		s.writeError(w, r, mutate.ErrEmptyZID)
		return
	}
	n, err := s.st.Remaining(r.Context(), zid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remaining": n})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid limit: " + raw})
			return
		}
		limit = n
	}
	evs, err := s.st.Events(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// actionBody is the payload of every state-changing route. "identity" is
// accepted in place of "zid".
type actionBody struct {
	ZID         string `json:"zid"`
	Identity    string `json:"identity"`
	Description string `json:"description"`
}

func (b actionBody) zid() string {
	if z := strings.TrimSpace(b.ZID); z != "" {
		return z
	}
	return strings.TrimSpace(b.Identity)
}

func decodeAction(r *http.Request) (actionBody, error) {
	var b actionBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return b, mutate.ErrEmptyZID
		}
		return b, badRequestError{msg: "malformed body: " + err.Error()}
	}
	if b.zid() == "" {
		return b, mutate.ErrEmptyZID
	}
	return b, nil
}

func (s *Server) handleMakeRequest(w http.ResponseWriter, r *http.Request) {
	b, err := decodeAction(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.st.MakeRequest(r.Context(), b.zid(), b.Description); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.accepted(w, r, model.ActionSubmit, b.zid())
}

// handleTransition serves the per-request actions. The body names the target
// request; X-Helpr-Actor, when sent, names who acted.
func (s *Server) handleTransition(action model.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := decodeAction(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.st.Transition(r.Context(), action, b.zid(), actorFrom(r)); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.accepted(w, r, action, b.zid())
	}
}

func (s *Server) handleReprioritise(w http.ResponseWriter, r *http.Request) {
	// The body is optional here; it only names the actor for the event log.
	var b actionBody
	_ = json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&b)
	actor := b.zid()
	if actor == "" {
		actor = actorFrom(r)
	}
	if err := s.st.Reprioritise(r.Context(), actor); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.accepted(w, r, model.ActionReprioritise, "")
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	b, err := decodeAction(r)
	if errors.Is(err, mutate.ErrEmptyZID) {
		err = mutate.ErrNotAdmin
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.st.End(r.Context(), b.zid()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.accepted(w, r, model.ActionEnd, "")
}

func (s *Server) accepted(w http.ResponseWriter, r *http.Request, action model.Action, zid string) {
	s.changes.broadcast()
	s.log.InfoContext(r.Context(), "action accepted",
		"action", string(action), "zid", zid, "version", s.st.Version(), "request_id", requestID(r.Context()))
	writeJSON(w, http.StatusOK, struct{}{})
}

// actorFrom is the X-Helpr-Actor header, recorded in the event log only.
func actorFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Helpr-Actor"))
}

type errorBody struct {
	Error string `json:"error"`
}

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var nf mutate.NotFoundError
	var br badRequestError
	switch {
	case errors.Is(err, mutate.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, mutate.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, mutate.ErrEmptyZID),
		errors.Is(err, mutate.ErrEmptyDescription),
		errors.Is(err, mutate.ErrDuplicateRequest),
		errors.As(err, &nf),
		errors.As(err, &br):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	level := slog.LevelInfo
	if code >= 500 {
		level = slog.LevelError
	}
	s.log.Log(r.Context(), level, "request rejected",
		"path", r.URL.Path, "status", code, "err", err.Error(), "request_id", requestID(r.Context()))
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
