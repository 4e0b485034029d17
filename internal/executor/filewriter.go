package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileWriter applies write-file operations. It is a stateless singleton
// owned by the coordinator.
type FileWriter struct{}

// NewFileWriter creates a FileWriter.
func NewFileWriter() *FileWriter { return &FileWriter{} }

// DryRun computes the preview description of a write without touching the
// filesystem.
func (w *FileWriter) DryRun(path, content string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Sprintf("will overwrite existing file '%s' with %d bytes", path, len(content)), nil
	}
	return fmt.Sprintf("will create new file '%s' with %d bytes", path, len(content)), nil
}

// Apply creates the parent directories and writes content to path. Failures
// are reported in the result rather than as an error; the execution context
// records exit code 0 on success and 1 on failure.
func (w *FileWriter) Apply(path, content string) ApplyResult {
	cwd, _ := os.Getwd()
	result := ApplyResult{
		Context: ExecutionContext{
			WorkingDirBefore: cwd,
			WorkingDirAfter:  cwd,
			Timestamp:        time.Now(),
		},
	}

	fail := func(err error) ApplyResult {
		result.Success = false
		result.ErrorMessage = err.Error()
		result.Context.ExitCode = 1
		result.Context.Stderr = err.Error()
		return result
	}

	if path == "" {
		return fail(fmt.Errorf("file path cannot be empty"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(fmt.Errorf("failed to create parent directories: %w", err))
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fail(fmt.Errorf("failed to write file: %w", err))
	}

	result.Success = true
	result.Description = fmt.Sprintf("successfully wrote %d bytes to '%s'", len(content), path)
	result.Context.ExitCode = 0
	result.Context.Stdout = result.Description
	return result
}
