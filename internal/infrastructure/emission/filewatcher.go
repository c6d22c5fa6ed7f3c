package emission

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// FileWatcherContext is the first of spec.md §4.4's two extensibility
// examples: it watches a single path and emits EventFileChanged for
// create/write/remove operations, demonstrating that adding a new
// emission variant costs one ExecutionEvent payload and one Context
// implementation — no engine change.
type FileWatcherContext struct {
	path string

	mu      sync.Mutex
	active  bool
	watcher *fsnotify.Watcher
	doneCh  chan struct{}
}

// NewFileWatcherContext creates a context watching path once started.
func NewFileWatcherContext(path string) *FileWatcherContext {
	return &FileWatcherContext{path: path}
}

func (f *FileWatcherContext) TypeName() string { return "file_watcher" }

func (f *FileWatcherContext) IsActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *FileWatcherContext) Start(nodeID string, sink *Sink) error {
	f.mu.Lock()
	if f.active {
		f.mu.Unlock()
		return errors.ContextAlreadyActive(f.TypeName())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.mu.Unlock()
		return errors.Internal("failed to create file watcher", err)
	}
	if err := watcher.Add(f.path); err != nil {
		watcher.Close()
		f.mu.Unlock()
		return errors.Internal("failed to watch path "+f.path, err)
	}

	f.active = true
	f.watcher = watcher
	f.doneCh = make(chan struct{})
	done := f.doneCh
	f.mu.Unlock()

	go f.run(nodeID, sink, watcher, done)
	return nil
}

func (f *FileWatcherContext) run(nodeID string, sink *Sink, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			kind := classifyFsnotifyOp(evt.Op)
			if kind == "" {
				continue
			}
			out := execution.ExecutionEvent{
				Kind:        execution.EventFileChanged,
				NodeID:      nodeID,
				FilePath:    evt.Name,
				FileKind:    kind,
				TimestampMs: execution.NowMillis(),
			}
			if err := sink.Send(out); err != nil {
				return
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal: fsnotify surfaces driver-level warnings on
			// its Errors channel; watching continues.
		}
	}
}

func classifyFsnotifyOp(op fsnotify.Op) execution.FileChangeKind {
	switch {
	case op&fsnotify.Create != 0:
		return execution.FileCreated
	case op&fsnotify.Write != 0:
		return execution.FileModified
	case op&fsnotify.Remove != 0, op&fsnotify.Rename != 0:
		return execution.FileRemoved
	default:
		return ""
	}
}

func (f *FileWatcherContext) Stop() error {
	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return nil
	}
	f.active = false
	watcher := f.watcher
	done := f.doneCh
	f.mu.Unlock()

	err := watcher.Close()
	<-done
	return err
}
