package policy

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-loads the policy file whenever it changes on disk and installs
// the new document into the engine atomically. A document that fails to load
// or validate is ignored; the engine keeps serving the previous one.
type Watcher struct {
	engine *Engine
	path   string
	log    *zap.Logger
}

// NewWatcher creates a watcher for the policy file under workspaceRoot.
func NewWatcher(engine *Engine, workspaceRoot string, log *zap.Logger) *Watcher {
	return &Watcher{
		engine: engine,
		path:   FilePath(workspaceRoot),
		log:    log,
	}
}

// Run blocks until ctx is cancelled, applying policy file changes as they
// happen. Editors typically replace files via rename, so the parent
// directory is watched rather than the file itself.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("policy watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	doc, err := Load(w.path)
	if err != nil {
		w.log.Warn("ignoring policy change", zap.String("path", w.path), zap.Error(err))
		return
	}
	if err := w.engine.Replace(doc); err != nil {
		w.log.Warn("ignoring policy change", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.log.Info("policy reloaded", zap.String("path", w.path), zap.String("version", doc.Version))
}
