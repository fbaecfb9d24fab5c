package scenario

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a single scenario file. The parent directory is
// watched so that editors which replace the file on save are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	Changes  chan struct{}
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
}

// NewWatcher starts watching path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: debounce,
		Changes:  make(chan struct{}, 1),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != w.path {
				continue
			}
			timer.Reset(w.debounce)
			pending = timer.C
		case <-pending:
			pending = nil
			select {
			case w.Changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// Watch calls onChange after every debounced change of path until ctx is done.
// Watcher errors are logged and watching continues.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	w, err := NewWatcher(path, debounce)
	if err != nil {
		return err
	}
	defer w.Close()

	logrus.Infof("watching %s for changes", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes:
			onChange()
		case err := <-w.Errors:
			logrus.Warnf("watch %s: %v", path, err)
		}
	}
}
