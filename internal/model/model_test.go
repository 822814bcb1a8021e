package model

import "testing"

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"waiting":     StatusWaiting,
		" Receiving ": StatusReceiving,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q)=%q, want %q", in, got, want)
		}
	}
	if _, err := ParseStatus("resolved"); err == nil {
		t.Fatalf("expected error for a terminal status")
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("TUTOR"); err != nil || r != RoleTutor {
		t.Fatalf("ParseRole(TUTOR)=%q,%v", r, err)
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Fatalf("admin is a tutor identity, not a role")
	}
}

func TestParseAction_Aliases(t *testing.T) {
	if a, err := ParseAction("submit"); err != nil || a != ActionSubmit {
		t.Fatalf("ParseAction(submit)=%q,%v", a, err)
	}
	if _, err := ParseAction("delete"); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestQueueFind_KeepsOrder(t *testing.T) {
	q := Queue{
		{ZID: "z1", Description: "a", Status: StatusWaiting},
		{ZID: "z2", Description: "b", Status: StatusWaiting},
		{ZID: "z1", Description: "c", Status: StatusReceiving},
	}
	got := q.Find("z1")
	if len(got) != 2 || got[0].Description != "a" || got[1].Description != "c" {
		t.Fatalf("unexpected matches: %#v", got)
	}
	if len(q.Find("z9")) != 0 {
		t.Fatalf("expected no matches")
	}
}
