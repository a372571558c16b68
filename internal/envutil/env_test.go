package envutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvPrefersExistingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nFOO=from-file\nBAR=also-file\n\nmalformed line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("FOO", "from-env")
	os.Unsetenv("BAR")
	t.Cleanup(func() { os.Unsetenv("BAR") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("FOO"); got != "from-env" {
		t.Fatalf("FOO = %q, existing environment must win", got)
	}
	if got := os.Getenv("BAR"); got != "also-file" {
		t.Fatalf("BAR = %q", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "no-such.env")); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}

func TestWriteDotEnvRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	values := map[string]string{"B": "2", "A": "1"}

	if err := WriteDotEnv(path, values, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteDotEnv(path, values, false); err == nil {
		t.Fatalf("expected error without overwrite")
	}
	if err := WriteDotEnv(path, values, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "A=1\nB=2\n" {
		t.Fatalf("file content = %q, keys must be sorted", data)
	}
}
