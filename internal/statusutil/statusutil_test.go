package statusutil

import (
	"testing"

	"helpr/internal/model"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in     string
		want   model.Status
		wantOK bool
	}{
		{"waiting", model.StatusWaiting, true},
		{"RECEIVING", model.StatusReceiving, true},
		{" waiting ", model.StatusWaiting, true},
		{"done", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeStatus(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("NormalizeStatus(%q)=%q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestStudentMessage(t *testing.T) {
	if StudentMessage(model.StatusWaiting) != MsgWaiting {
		t.Fatalf("unexpected waiting message")
	}
	if StudentMessage(model.StatusReceiving) != MsgReceiving {
		t.Fatalf("unexpected receiving message")
	}
	if StudentMessage("") != MsgNone {
		t.Fatalf("unexpected absent message")
	}
}
