package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"project/host-services/index"
)

const defaultReloadDelay = 500 * time.Millisecond

// Loader rebuilds an index from a networks file plus a fixed list of
// patterns (inline configuration, resolved SPF records).
type Loader struct {
	Path   string
	Static []string
	Holder *index.Holder
	// Delay debounces bursts of file events. Zero means 500ms.
	Delay time.Duration
}

// Reload builds a fresh index and stores it in the holder. On failure the
// holder keeps serving the previous index.
func (l *Loader) Reload() error {
	patterns := append([]string(nil), l.Static...)
	if l.Path != "" {
		fromFile, err := LoadFile(l.Path)
		if err != nil {
			return err
		}
		patterns = append(patterns, fromFile...)
	}

	idx, err := index.Build(patterns)
	if err != nil {
		return fmt.Errorf("failed to build network index: %w", err)
	}
	l.Holder.Store(idx)

	st := idx.Stats()
	log.Info("Network index loaded",
		"entries", st.Entries,
		"buckets", st.Buckets,
		"netmask", st.Netmask,
		"rejected", st.Rejected,
		"dropped", st.Dropped)
	return nil
}

// Watch reloads the index whenever the networks file changes, until ctx
// is done. The parent directory is watched as well so that editors which
// replace the file by renaming are noticed.
func (l *Loader) Watch(ctx context.Context) error {
	if l.Path == "" {
		return nil
	}
	absPath, err := filepath.Abs(l.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve networks file path %s: %w", l.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	delay := l.Delay
	if delay <= 0 {
		delay = defaultReloadDelay
	}
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	log.Info("Watching networks file", "path", absPath)
	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("Networks file changed", "path", event.Name, "op", event.Op)
			debounce.Reset(delay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("File watcher error", "error", err)

		case <-debounce.C:
			if err := l.Reload(); err != nil {
				log.Error("Keeping previous network index", "error", err)
			}
		}
	}
}
