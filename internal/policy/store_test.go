package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreate(t *testing.T) {
	t.Run("creates default on first use", func(t *testing.T) {
		root := t.TempDir()

		doc, err := LoadOrCreate(root)
		if err != nil {
			t.Fatalf("LoadOrCreate failed: %v", err)
		}
		if doc.Version != "1.0" {
			t.Errorf("expected default version 1.0, got %s", doc.Version)
		}

		if _, err := os.Stat(FilePath(root)); err != nil {
			t.Errorf("expected policy.json to exist: %v", err)
		}
	})

	t.Run("round-trips the saved document", func(t *testing.T) {
		root := t.TempDir()

		doc := DefaultDocument()
		doc.Version = "7.3"
		if err := Save(doc, root); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := LoadOrCreate(root)
		if err != nil {
			t.Fatalf("LoadOrCreate failed: %v", err)
		}
		if loaded.Version != "7.3" {
			t.Errorf("expected version 7.3, got %s", loaded.Version)
		}
		if got := loaded.Tools[ToolCommand].Create.AllowedCommands; len(got) == 0 {
			t.Error("command allow list lost in round trip")
		}
	})

	t.Run("malformed file is a LoadError", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, StateDir), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(FilePath(root), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadOrCreate(root)
		var lErr *LoadError
		if !errors.As(err, &lErr) {
			t.Fatalf("expected LoadError, got %v", err)
		}
	})

	t.Run("invalid document is a LoadError", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, StateDir), 0o755); err != nil {
			t.Fatal(err)
		}
		body := `{"version":"1.0","global":{"blocked_extensions":["exe"],"max_file_size_mb":10,"auto_backup":false},"tools":{}}`
		if err := os.WriteFile(FilePath(root), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadOrCreate(root)
		var lErr *LoadError
		if !errors.As(err, &lErr) {
			t.Fatalf("expected LoadError for invalid document, got %v", err)
		}
	})

	t.Run("save refuses invalid document", func(t *testing.T) {
		root := t.TempDir()
		doc := DefaultDocument()
		doc.Global.MaxFileSizeMB = 0
		if err := Save(doc, root); err == nil {
			t.Fatal("expected Save to reject invalid document")
		}
	})
}
