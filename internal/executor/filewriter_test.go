package executor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDryRun(t *testing.T) {
	w := NewFileWriter()
	dir := t.TempDir()

	t.Run("new file", func(t *testing.T) {
		path := filepath.Join(dir, "src", "a.txt")
		desc, err := w.DryRun(path, "hi")
		if err != nil {
			t.Fatalf("DryRun failed: %v", err)
		}
		want := "create new file '" + path + "' with 2 bytes"
		if !strings.Contains(desc, want) {
			t.Errorf("description %q missing %q", desc, want)
		}

		// Dry run never touches the filesystem.
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("dry run created the file")
		}
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(dir, "exists.txt")
		if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
		desc, err := w.DryRun(path, "new content")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(desc, "overwrite existing file") {
			t.Errorf("expected overwrite description, got %q", desc)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := w.DryRun("", "x"); err == nil {
			t.Error("expected error for empty path")
		}
	})
}

func TestApply(t *testing.T) {
	w := NewFileWriter()

	t.Run("creates parents and writes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deep", "nested", "file.txt")
		result := w.Apply(path, "hello")
		if !result.Success {
			t.Fatalf("Apply failed: %s", result.ErrorMessage)
		}
		if result.Context.ExitCode != 0 {
			t.Errorf("expected exit code 0, got %d", result.Context.ExitCode)
		}
		if !strings.Contains(result.Description, "5 bytes") {
			t.Errorf("description missing byte count: %q", result.Description)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "hello" {
			t.Errorf("file content = %q", data)
		}
	})

	t.Run("failure reports context", func(t *testing.T) {
		dir := t.TempDir()
		// A directory where the file should go makes the write fail.
		target := filepath.Join(dir, "blocked")
		if err := os.MkdirAll(target, 0o755); err != nil {
			t.Fatal(err)
		}

		result := w.Apply(target, "content")
		if result.Success {
			t.Fatal("expected failure writing over a directory")
		}
		if result.ErrorMessage == "" {
			t.Error("failure must carry the error text")
		}
		if result.Context.ExitCode != 1 {
			t.Errorf("expected exit code 1, got %d", result.Context.ExitCode)
		}
	})

	t.Run("empty path fails", func(t *testing.T) {
		result := w.Apply("", "x")
		if result.Success {
			t.Error("expected failure for empty path")
		}
	})
}
