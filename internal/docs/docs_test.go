package docs

import (
	"strings"
	"testing"
)

func TestTopics_ListsEmbeddedContent(t *testing.T) {
	topics := Topics()
	want := map[string]bool{"config": false, "lifecycle": false, "roles": false, "service": false}
	for _, tp := range topics {
		if _, ok := want[tp]; ok {
			want[tp] = true
		}
	}
	for tp, seen := range want {
		if !seen {
			t.Fatalf("missing topic %q in %v", tp, topics)
		}
	}
}

func TestGet_CaseInsensitive(t *testing.T) {
	body, ok := Get(" Lifecycle ")
	if !ok || !strings.Contains(body, "receiving") {
		t.Fatalf("unexpected lifecycle doc: ok=%v", ok)
	}
	if _, ok := Get("nope"); ok {
		t.Fatalf("expected unknown topic to be missing")
	}
}

func TestRender_NoTTY(t *testing.T) {
	body, _ := Get("roles")
	out, err := Render(body, "notty", 60)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "helpr login student") {
		t.Fatalf("rendered doc lost content:\n%s", out)
	}
}
