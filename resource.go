package rwebserve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ResourceLoader is the resource-loader external collaborator (§6): load
// a file's bytes, or test whether it exists, addressed by an absolute
// path under resources_root.
type ResourceLoader interface {
	Load(path string) ([]byte, error)
	Exists(path string) bool
}

// fsResourceLoader is the default ResourceLoader, backed by the local
// filesystem. In debug mode it watches root for changes and logs them
// through Logger; this is observability only (air/coffer.go uses the
// same fsnotify watch to invalidate an in-memory cache, but caching of
// rendered pages is out of scope here, so there is nothing to
// invalidate — the watch never changes what gets served).
type fsResourceLoader struct {
	root    string
	logger  *Logger
	watcher *fsnotify.Watcher
}

// newFSResourceLoader returns a ResourceLoader rooted at root. When debug
// is true it starts a best-effort fsnotify watch on root, logging file
// events through logger; failure to start the watch is logged and
// otherwise ignored, since it never affects serving behavior.
func newFSResourceLoader(root string, debug bool, logger *Logger) *fsResourceLoader {
	l := &fsResourceLoader{root: root, logger: logger}
	if debug {
		l.watch()
	}
	return l
}

func (l *fsResourceLoader) watch() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		l.logger.Errorf("resource watcher: %v", err)
		return
	}
	if err := w.Add(l.root); err != nil {
		l.logger.Errorf("resource watcher: %v", err)
		w.Close()
		return
	}
	l.watcher = w

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				l.logger.Debugf("resource change: %s %s", event.Op, event.Name)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Errorf("resource watcher: %v", err)
			}
		}
	}()
}

func (l *fsResourceLoader) Load(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (l *fsResourceLoader) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// safeResourcePath joins root and requestPath and reports whether the
// cleaned result still lives under root (§4.4 resource-root safety).
func safeResourcePath(root, requestPath string) (string, bool) {
	cleaned := filepath.Clean(filepath.Join(root, requestPath))
	rootClean := filepath.Clean(root)
	if cleaned == rootClean {
		return cleaned, true
	}
	return cleaned, strings.HasPrefix(cleaned, rootClean+string(filepath.Separator))
}
