package policy

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	// StateDir is the hidden per-project directory holding all persisted
	// state (policy, history, debug log, conversations).
	StateDir = ".mag"
	// FileName is the policy document file name inside StateDir.
	FileName = "policy.json"
)

// FilePath returns the policy file location under the workspace root.
func FilePath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, StateDir, FileName)
}

// LoadOrCreate loads the policy document from <root>/.mag/policy.json,
// writing the default document first when none exists. Parse or validation
// failure is returned as a *LoadError; there is no implicit repair.
func LoadOrCreate(workspaceRoot string) (*Document, error) {
	path := FilePath(workspaceRoot)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		doc := DefaultDocument()
		if err := Save(doc, workspaceRoot); err != nil {
			return nil, &LoadError{Path: path, Cause: err}
		}
		return doc, nil
	}

	return Load(path)
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	if err := doc.Validate(); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	return &doc, nil
}

// Save validates the document and writes it atomically (temp file + rename)
// to <root>/.mag/policy.json, creating the state directory if needed.
func Save(doc *Document, workspaceRoot string) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	dir := filepath.Join(workspaceRoot, StateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".policy-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, FilePath(workspaceRoot))
}
