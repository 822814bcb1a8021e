package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("HELPR_SERVER", "")
	t.Setenv("HELPR_ADDR", "")
	t.Setenv("HELPR_ADMIN", "")
	t.Setenv("HELPR_TIMEOUT", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" || cfg.Server.AdminZID != "admin" {
		t.Fatalf("unexpected server defaults: %#v", cfg.Server)
	}
	if d, _ := cfg.ClientTimeout(); d != 5*time.Second {
		t.Fatalf("timeout=%s, want 5s", d)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "helpr.yaml")
	body := `
server:
  addr: ":9090"
  admin_zid: boss
client:
  base_url: http://queue.local:9090
  timeout: 2s
log:
  format: json
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HELPR_SERVER", "http://override:1")
	t.Setenv("HELPR_ADDR", "")
	t.Setenv("HELPR_ADMIN", "")
	t.Setenv("HELPR_TIMEOUT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.AdminZID != "boss" {
		t.Fatalf("unexpected server config: %#v", cfg.Server)
	}
	if cfg.Client.BaseURL != "http://override:1" {
		t.Fatalf("expected env to override base_url, got %q", cfg.Client.BaseURL)
	}
	if d, _ := cfg.ClientTimeout(); d != 2*time.Second {
		t.Fatalf("timeout=%s, want 2s", d)
	}
	// Unset fields keep their defaults.
	if d, _ := cfg.PollInterval(); d != 3*time.Second {
		t.Fatalf("poll=%s, want 3s", d)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HELPR_TIMEOUT", "")
	t.Setenv("HELPR_ADMIN", "")
	dir := t.TempDir()
	cases := map[string]string{
		"bad-timeout.yaml": "client:\n  timeout: soon\n",
		"zero-poll.yaml":   "client:\n  poll_interval: 0s\n",
		"bad-format.yaml":  "log:\n  format: xml\n",
		"no-admin.yaml":    "server:\n  admin_zid: \"\"\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
