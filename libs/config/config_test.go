package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIntAndDuration(t *testing.T) {
	t.Setenv("FETCH_MAX_ATTEMPTS", "5")
	t.Setenv("FETCH_TIMEOUT", "2s")
	t.Setenv("BAD_INT", "five")

	n, err := Int("FETCH_MAX_ATTEMPTS", 3)
	if err != nil || n != 5 {
		t.Fatalf("Int = %d, %v", n, err)
	}
	if n, err := Int("UNSET_INT", 3); err != nil || n != 3 {
		t.Fatalf("fallback Int = %d, %v", n, err)
	}
	if _, err := Int("BAD_INT", 3); err == nil {
		t.Fatal("expected error for non-integer value")
	}

	d, err := Duration("FETCH_TIMEOUT", time.Second)
	if err != nil || d != 2*time.Second {
		t.Fatalf("Duration = %s, %v", d, err)
	}
}

func TestPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := Port("PORT", "8080"); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	got := List("CORS_ALLOWED_ORIGINS")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NAILBOOK_TEST_A=from-file\nNAILBOOK_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("NAILBOOK_TEST_A", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("NAILBOOK_TEST_B") })

	if err := LoadDotenv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("NAILBOOK_TEST_A"); got != "from-env" {
		t.Fatalf("expected env to win, got %q", got)
	}
	if got := os.Getenv("NAILBOOK_TEST_B"); got != "from-file" {
		t.Fatalf("expected file value, got %q", got)
	}
}
