package policy

import (
	"fmt"
	"strings"
)

// Validate checks the document against the schema invariants. A document
// failing validation must never be installed into an engine.
func (d *Document) Validate() error {
	if d.Version == "" {
		return &ValidationError{Field: "version", Reason: "must be a non-empty string"}
	}

	for _, ext := range d.Global.BlockedExtensions {
		if ext == "" {
			return &ValidationError{Field: "global.blocked_extensions", Reason: "empty extension"}
		}
		if ext[0] != '.' {
			return &ValidationError{
				Field:  "global.blocked_extensions",
				Reason: fmt.Sprintf("extension %q must begin with '.'", ext),
			}
		}
	}

	if d.Global.MaxFileSizeMB < 1 || d.Global.MaxFileSizeMB > 1000 {
		return &ValidationError{
			Field:  "global.max_file_size_mb",
			Reason: fmt.Sprintf("must be in 1..1000, got %d", d.Global.MaxFileSizeMB),
		}
	}

	for toolName, tool := range d.Tools {
		if toolName == "" {
			return &ValidationError{Field: "tools", Reason: "empty tool name"}
		}
		for _, op := range []Operation{OpCreate, OpRead, OpUpdate, OpDelete} {
			pol := tool.operation(op)
			for _, dir := range pol.AllowedDirectories {
				if dir == "" {
					// Empty prefix means "any path"; always valid.
					continue
				}
				field := fmt.Sprintf("tools.%s.%s.allowed_directories", toolName, op)
				if !strings.HasSuffix(dir, "/") {
					return &ValidationError{
						Field:  field,
						Reason: fmt.Sprintf("directory %q must end with '/'", dir),
					}
				}
				if strings.Contains(dir, "..") {
					return &ValidationError{
						Field:  field,
						Reason: fmt.Sprintf("directory %q contains path traversal", dir),
					}
				}
			}
		}
	}

	return nil
}
