package policy

import (
	"path/filepath"
	"strings"
	"sync/atomic"
)

// Engine evaluates operations against the current policy document.
// The document pointer is swapped atomically; queries in flight observe
// either the old or the new document, never a blend.
type Engine struct {
	doc  atomic.Pointer[Document]
	root string
}

// NewEngine creates an Engine rooted at workspaceRoot (the process working
// directory). The document must already be validated.
func NewEngine(doc *Document, workspaceRoot string) *Engine {
	e := &Engine{root: filepath.Clean(workspaceRoot)}
	e.doc.Store(doc)
	return e
}

// Document returns the currently installed document.
func (e *Engine) Document() *Document {
	return e.doc.Load()
}

// Replace atomically installs a new document. The document is validated
// first; an invalid document leaves the old one in place.
func (e *Engine) Replace(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	e.doc.Store(doc)
	return nil
}

// Allowed reports whether (tool, op) may touch path. A path containing ".."
// is never allowed. Otherwise a path is allowed iff its canonical form lies
// under the workspace root, its extension is not globally blocked, and it
// begins with at least one allowed directory prefix for the operation. An
// empty allowed-directory list denies outright.
func (e *Engine) Allowed(tool string, op Operation, path string) bool {
	if strings.Contains(path, "..") {
		return false
	}
	if !e.withinRoot(path) {
		return false
	}
	if e.ExtensionBlocked(path) {
		return false
	}

	doc := e.doc.Load()
	toolPolicy, ok := doc.Tools[tool]
	if !ok {
		return false
	}
	pol := toolPolicy.operation(op)
	if pol == nil || len(pol.AllowedDirectories) == 0 {
		return false
	}

	for _, dir := range pol.AllowedDirectories {
		if dir == "" {
			return true
		}
		if strings.HasPrefix(path, dir) {
			return true
		}
	}
	return false
}

// CommandAllowed evaluates a shell command string against the command tool's
// create policy. A command is blocked if any blocked-commands entry appears
// as a substring anywhere in it; otherwise the first whitespace-delimited
// token must be a member of allowed-commands (an empty allowed list permits
// anything not blocked).
func (e *Engine) CommandAllowed(command string) (bool, string) {
	doc := e.doc.Load()
	toolPolicy, ok := doc.Tools[ToolCommand]
	if !ok {
		return false, "no command-tool policy configured"
	}
	pol := toolPolicy.Create

	for _, blocked := range pol.BlockedCommands {
		if blocked != "" && strings.Contains(command, blocked) {
			return false, "Command contains blocked operation"
		}
	}

	if len(pol.AllowedCommands) == 0 {
		return true, ""
	}

	base := command
	if fields := strings.Fields(command); len(fields) > 0 {
		base = fields[0]
	}
	for _, allowed := range pol.AllowedCommands {
		if base == allowed {
			return true, ""
		}
	}
	return false, "Command not in allowed list"
}

// ExtensionBlocked reports whether the path's extension is in the global
// blocked list. A path with no extension is never blocked.
func (e *Engine) ExtensionBlocked(path string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	for _, blocked := range e.doc.Load().Global.BlockedExtensions {
		if ext == blocked {
			return true
		}
	}
	return false
}

// FileSizeAllowed reports whether a file of the given size may be written.
func (e *Engine) FileSizeAllowed(sizeBytes int64) bool {
	maxBytes := int64(e.doc.Load().Global.MaxFileSizeMB) * 1024 * 1024
	return sizeBytes <= maxBytes
}

// AllowedDirectories returns the allowed-directory prefixes for (tool, op).
// The slice is a copy; callers may not mutate engine state through it.
func (e *Engine) AllowedDirectories(tool string, op Operation) []string {
	doc := e.doc.Load()
	toolPolicy, ok := doc.Tools[tool]
	if !ok {
		return nil
	}
	pol := toolPolicy.operation(op)
	if pol == nil {
		return nil
	}
	out := make([]string, len(pol.AllowedDirectories))
	copy(out, pol.AllowedDirectories)
	return out
}

// withinRoot reports whether the canonical form of path stays under the
// workspace root. Relative paths are resolved against the root.
func (e *Engine) withinRoot(path string) bool {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.root, abs)
	}
	abs = filepath.Clean(abs)
	return abs == e.root || strings.HasPrefix(abs, e.root+string(filepath.Separator))
}
