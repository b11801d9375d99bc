package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HANGMAN_CONFIG", "HANGMAN_NAME", "HANGMAN_SHM_DIR", "LOG_LEVEL", "LOG_FORMAT", "HANGMAN_DB", "HANGMAN_ADMIN_ADDR", "HANGMAN_ADMIN_SECRET"} {
		t.Setenv(k, "")
	}

	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Shm.Name != "hangman" || c.Shm.Dir != "/dev/shm" || c.Log.Level != "" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.Store.Path != "" || c.Admin.Addr != "" {
		t.Fatalf("optional features should be off by default: %+v", c)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hangman.yaml")
	yaml := `
shm:
  name: game
  dir: /tmp/shm
log:
  level: debug
admin:
  addr: 127.0.0.1:9090
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HANGMAN_NAME", "")
	t.Setenv("HANGMAN_SHM_DIR", "")
	t.Setenv("HANGMAN_ADMIN_ADDR", "")
	t.Setenv("LOG_LEVEL", "warn")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Shm.Name != "game" || c.Shm.Dir != "/tmp/shm" || c.Admin.Addr != "127.0.0.1:9090" {
		t.Fatalf("yaml values not applied: %+v", c)
	}
	if c.Log.Level != "warn" {
		t.Fatalf("env should override yaml, level = %q", c.Log.Level)
	}
	if n := c.Names(); n.Prefix != "game" || n.Dir != "/tmp/shm" {
		t.Fatalf("names = %+v", n)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
