package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"helpr/internal/model"
)

func TestResolve_MatchingSurface(t *testing.T) {
	sess, err := Resolve(Static{Role: "student", ZID: "z1111111"}, model.RoleStudent)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sess != (model.Session{Role: model.RoleStudent, ZID: "z1111111"}) {
		t.Fatalf("unexpected session: %#v", sess)
	}
}

func TestResolve_Failures(t *testing.T) {
	cases := []struct {
		name    string
		rec     Static
		surface model.Role
	}{
		{"missing zid", Static{Role: "student"}, model.RoleStudent},
		{"missing role", Static{ZID: "z1"}, model.RoleStudent},
		{"unknown role", Static{Role: "admin", ZID: "admin"}, model.RoleTutor},
		{"student on tutor surface", Static{Role: "student", ZID: "z1"}, model.RoleTutor},
		{"tutor on student surface", Static{Role: "tutor", ZID: "t1"}, model.RoleStudent},
	}
	for _, tc := range cases {
		_, err := Resolve(tc.rec, tc.surface)
		var ae *AuthError
		if !errors.As(err, &ae) {
			t.Fatalf("%s: expected AuthError, got %v", tc.name, err)
		}
	}
}

func TestResolve_AnySurface(t *testing.T) {
	sess, err := Resolve(Static{Role: "tutor", ZID: "admin"}, "")
	if err != nil || sess.Role != model.RoleTutor {
		t.Fatalf("resolve any: %#v, %v", sess, err)
	}
}

func TestFileStore_LoginReplacesAndLogoutClears(t *testing.T) {
	dir := t.TempDir()
	s := FileStore{Dir: dir}

	if rec, err := s.Load(); err != nil || rec != (Record{}) {
		t.Fatalf("expected empty record before login, got %#v, %v", rec, err)
	}
	if _, err := Resolve(s, model.RoleStudent); err == nil {
		t.Fatalf("expected AuthError before login")
	}

	if err := s.Login(model.Session{Role: model.RoleStudent, ZID: "z1"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := s.Login(model.Session{Role: model.RoleTutor, ZID: "t1"}); err != nil {
		t.Fatalf("re-login: %v", err)
	}
	sess, err := Resolve(s, model.RoleTutor)
	if err != nil || sess.ZID != "t1" {
		t.Fatalf("expected re-login to replace session; got %#v, %v", sess, err)
	}
	if _, err := Resolve(s, model.RoleStudent); err == nil {
		t.Fatalf("previous student session must not survive re-login")
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected session file removed, stat err=%v", err)
	}
	if err := s.Logout(); err != nil {
		t.Fatalf("logout twice should be a no-op: %v", err)
	}
}

func TestFileStore_LoginValidates(t *testing.T) {
	s := FileStore{Dir: t.TempDir()}
	if err := s.Login(model.Session{Role: model.RoleStudent}); err == nil {
		t.Fatalf("expected error for empty zid")
	}
	if err := s.Login(model.Session{Role: "admin", ZID: "admin"}); err == nil {
		t.Fatalf("expected error for invalid role")
	}
}

func TestFirst_PrefersOverride(t *testing.T) {
	dir := t.TempDir()
	fs := FileStore{Dir: dir}
	if err := fs.Login(model.Session{Role: model.RoleStudent, ZID: "z1"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	sess, err := Resolve(First(Static{}, fs), "")
	if err != nil || sess.ZID != "z1" {
		t.Fatalf("expected fallback to file, got %#v, %v", sess, err)
	}
	sess, err = Resolve(First(Static{Role: "tutor", ZID: "admin"}, fs), model.RoleTutor)
	if err != nil || sess.ZID != "admin" {
		t.Fatalf("expected override to win, got %#v, %v", sess, err)
	}
}
