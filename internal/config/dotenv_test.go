package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDotEnv_LoadsValuesAndIgnoresNoise(t *testing.T) {
	unsetenv(t, "SEACOST_A")
	unsetenv(t, "SEACOST_B")
	unsetenv(t, "SEACOST_C")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := []byte(`
# comment

SEACOST_A=one
export SEACOST_B=two
SEACOST_C="three"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	for key, want := range map[string]string{"SEACOST_A": "one", "SEACOST_B": "two", "SEACOST_C": "three"} {
		if got := os.Getenv(key); got != want {
			t.Fatalf("%s=%q, want %q", key, got, want)
		}
	}
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	t.Setenv("SEACOST_PORT", "9000")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SEACOST_PORT=1234\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("SEACOST_PORT"); got != "9000" {
		t.Fatalf("SEACOST_PORT=%q, want %q", got, "9000")
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}
