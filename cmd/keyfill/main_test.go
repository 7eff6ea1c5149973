package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fillio/go-keyfill/pkg/keyfill"
)

func writeTemplate(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderStrictModeFromConfig(t *testing.T) {
	cfg := keyfill.DefaultConfig()
	cfg.StrictMode = true
	keyfill.SetGlobalConfig(cfg)
	t.Cleanup(func() { keyfill.SetGlobalConfig(keyfill.DefaultConfig()) })

	path := writeTemplate(t, "value: {{BOGUS!thing}}")

	if err := render([]string{path}); err == nil {
		t.Fatal("render with configured strict mode expected an error, got none")
	}
	if err := render([]string{"-strict=false", path}); err != nil {
		t.Fatalf("render with -strict=false should fail open, got %v", err)
	}
}

func TestRenderStrictFlag(t *testing.T) {
	path := writeTemplate(t, "value: {{BOGUS!thing}}")

	if err := render([]string{path}); err != nil {
		t.Fatalf("render without -strict should fail open, got %v", err)
	}
	if err := render([]string{"-strict", path}); err == nil {
		t.Fatal("render with -strict expected an error, got none")
	}
}
