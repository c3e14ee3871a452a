package prefabs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind tells a reload handler which document changed.
type ChangeKind int

const (
	ChangeTuning ChangeKind = iota + 1
	ChangeScene
	ChangeScript
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeTuning:
		return "tuning"
	case ChangeScene:
		return "scene"
	case ChangeScript:
		return "script"
	}
	return "unknown"
}

type Change struct {
	Path string
	Kind ChangeKind
}

// Watcher reports edits to the override directory, debounced per file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	Changes  chan Change
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
	debounce time.Duration
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher:  w,
		Changes:  make(chan Change, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}
	go watcher.run()
	return watcher, nil
}

// WatchOverrides watches the override directory and its scripts folder.
func WatchOverrides() (*Watcher, error) {
	dirs := []string{diskDir}
	scripts := filepath.Join(diskDir, "scripts")
	if info, err := os.Stat(scripts); err == nil && info.IsDir() {
		dirs = append(dirs, scripts)
	}
	return NewWatcher(dirs...)
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Changes)
	defer close(w.Errors)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			kind, ok := classifyChange(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < w.debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Changes <- Change{Path: event.Name, Kind: kind}:
			case <-w.closeCh:
				return
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

func classifyChange(path string) (ChangeKind, bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".tengo":
		return ChangeScript, true
	case base == TuningFile:
		return ChangeTuning, true
	case base == SceneFile:
		return ChangeScene, true
	}
	return 0, false
}
