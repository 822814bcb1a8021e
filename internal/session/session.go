package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"helpr/internal/model"
)

const fileName = "session.json"

// Record is the session as stored: a role flag and an identity, both possibly missing.
type Record struct {
	Role string `json:"role,omitempty"`
	ZID  string `json:"zid,omitempty"`
}

// Source yields the stored session record. A missing record is not an error:
// Load returns the zero Record.
type Source interface {
	Load() (Record, error)
}

// AuthError means no usable session exists for the surface being opened.
// It is never retryable; callers send the user back to login.
type AuthError struct {
	Surface model.Role
	Reason  string
}

func (e *AuthError) Error() string {
	if e.Surface == "" {
		return "not logged in: " + e.Reason
	}
	return fmt.Sprintf("not logged in as %s: %s", e.Surface, e.Reason)
}

// Resolve builds the immutable Session for surface from src. An empty surface
// accepts either role.
func Resolve(src Source, surface model.Role) (model.Session, error) {
	if src == nil {
		return model.Session{}, &AuthError{Surface: surface, Reason: "no session source"}
	}
	rec, err := src.Load()
	if err != nil {
		return model.Session{}, err
	}
	zid := strings.TrimSpace(rec.ZID)
	if zid == "" {
		return model.Session{}, &AuthError{Surface: surface, Reason: "missing identity"}
	}
	if strings.TrimSpace(rec.Role) == "" {
		return model.Session{}, &AuthError{Surface: surface, Reason: "missing role"}
	}
	role, err := model.ParseRole(rec.Role)
	if err != nil {
		return model.Session{}, &AuthError{Surface: surface, Reason: err.Error()}
	}
	if surface != "" && role != surface {
		return model.Session{}, &AuthError{Surface: surface, Reason: fmt.Sprintf("session is a %s session", role)}
	}
	return model.Session{Role: role, ZID: zid}, nil
}

// Static is an in-memory source, used for --as/--zid overrides. It is never persisted.
type Static Record

func (s Static) Load() (Record, error) { return Record(s), nil }

// First returns a source that yields the first non-empty record among srcs.
func First(srcs ...Source) Source { return firstSource(srcs) }

type firstSource []Source

func (fs firstSource) Load() (Record, error) {
	for _, s := range fs {
		if s == nil {
			continue
		}
		rec, err := s.Load()
		if err != nil {
			return Record{}, err
		}
		if strings.TrimSpace(rec.Role) != "" || strings.TrimSpace(rec.ZID) != "" {
			return rec, nil
		}
	}
	return Record{}, nil
}

// StateDir is where the session file lives.
func StateDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.helpr).
	if v := strings.TrimSpace(os.Getenv("HELPR_STATE_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".helpr"), nil
}

// FileStore keeps one session in Dir/session.json. Login replaces it, logout removes it.
type FileStore struct {
	Dir string
}

func (s FileStore) path() string { return filepath.Join(filepath.Clean(s.Dir), fileName) }

func (s FileStore) Load() (Record, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("session file %s: %w", s.path(), err)
	}
	return rec, nil
}

// Login clears any previous session and writes sess.
func (s FileStore) Login(sess model.Session) error {
	zid := strings.TrimSpace(sess.ZID)
	if zid == "" {
		return errors.New("login: zid is empty")
	}
	if _, err := model.ParseRole(string(sess.Role)); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := s.Logout(); err != nil {
		return err
	}
	dir := filepath.Clean(s.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(Record{Role: string(sess.Role), ZID: zid}, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, fileName+".*.tmp", s.path(), b, 0o600)
}

func (s FileStore) Logout() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
