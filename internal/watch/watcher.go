// Package watch reports changes to the files under a backlog directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/josephgoksu/backlog/internal/util"
)

// DefaultDelay is how long the watcher waits for more events before
// reporting a batch.
const DefaultDelay = 300 * time.Millisecond

// Op is the kind of filesystem change.
type Op string

const (
	OpCreate Op = "create"
	OpModify Op = "modify"
	OpDelete Op = "delete"
	OpRename Op = "rename"
)

// Change is one relevant file change.
type Change struct {
	// Path is relative to the watched root.
	Path string
	Op   Op
	// TaskID is set when the file is a task file.
	TaskID string
	Time   time.Time
}

// Handler receives debounced batches of changes.
type Handler func(changes []Change)

// Watcher watches a backlog directory recursively.
type Watcher struct {
	root      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
}

// New creates a watcher for root. Batches are delivered to onChange after
// delay of quiet; zero means DefaultDelay.
func New(root string, delay time.Duration, onChange Handler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Watcher{
		root:      root,
		watcher:   fw,
		debouncer: NewDebouncer(delay, onChange),
	}, nil
}

// Run watches until ctx is cancelled. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.debouncer.Stop()
		_ = w.watcher.Close()
	}()

	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("add watch paths: %w", err)
	}
	slog.Debug("watching backlog", "root", w.root)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}

	op := OpModify
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("watch new directory", "path", rel, "error", err)
			}
			return
		}
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	case event.Op&fsnotify.Write == 0:
		// chmod only
		return
	}

	if !Relevant(rel) {
		return
	}

	change := Change{Path: rel, Op: op, Time: time.Now()}
	if id, ok := util.TaskIDFromFilename(filepath.Base(rel)); ok {
		change.TaskID = id
	}
	slog.Debug("backlog file changed", "op", string(op), "path", rel)
	w.debouncer.Add(change)
}

// Relevant reports whether a path (relative to the backlog root) holds
// backlog data: markdown records and the config file. Hidden paths and
// editor swap files are ignored.
func Relevant(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	name := filepath.Base(rel)
	if strings.HasSuffix(name, "~") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		return true
	case ".yml", ".yaml":
		return strings.HasPrefix(strings.ToLower(name), "config.")
	}
	return false
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Debouncer batches rapid changes and flushes them after a quiet period.
type Debouncer struct {
	mu      sync.Mutex
	pending []Change
	timer   *time.Timer
	delay   time.Duration
	onFlush Handler
	stopped bool
}

// NewDebouncer creates a debouncer calling onFlush with each batch.
func NewDebouncer(delay time.Duration, onFlush Handler) *Debouncer {
	return &Debouncer{delay: delay, onFlush: onFlush}
}

// Add queues a change and restarts the quiet period.
func (d *Debouncer) Add(change Change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = append(d.pending, change)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	batch := coalesce(d.pending)
	d.pending = nil
	stopped := d.stopped
	d.mu.Unlock()

	if len(batch) > 0 && !stopped && d.onFlush != nil {
		d.onFlush(batch)
	}
}

// Stop discards pending changes.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
}

// coalesce keeps the last change per path, in first-seen order.
func coalesce(changes []Change) []Change {
	if len(changes) == 0 {
		return nil
	}
	pos := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if i, ok := pos[c.Path]; ok {
			out[i] = c
			continue
		}
		pos[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
