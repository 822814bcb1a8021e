package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWrite_JSONDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": map[string]any{"zid": "z1"}}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("not json: %v (%q)", err, buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Fatalf("expected trailing newline")
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteText_TableAndHints(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{
		Headers: []string{"zid", "description", "status"},
		Rows:    [][]string{{"z1111111", "need help\nwith recursion", "waiting"}},
	}
	err := Write(&buf, map[string]any{"data": tbl, "_hints": []string{"helpr claim z1111111"}}, "text", false)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"zid", "z1111111", "need help with recursion", "waiting", "hint: helpr claim z1111111"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteText_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, Table{Headers: []string{"zid"}, Empty: "no requests in queue."}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "no requests in queue." {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestWriteText_YAMLFallback(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{"data": struct {
		Remaining int `json:"remaining"`
	}{Remaining: 3}}
	if err := WriteText(&buf, v); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "remaining: 3" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestTruncateCell(t *testing.T) {
	got := truncateCell(strings.Repeat("a", 60), 10)
	if got != strings.Repeat("a", 9)+"…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if truncateCell("short", 10) != "short" {
		t.Fatalf("short strings must be untouched")
	}
}
