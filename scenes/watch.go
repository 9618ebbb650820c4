package scenes

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultQuietPeriod = 100 * time.Millisecond

// FileKind tells scene files from mover scripts.
type FileKind int

const (
	SceneFile FileKind = iota + 1
	ScriptFile
)

func (k FileKind) String() string {
	switch k {
	case SceneFile:
		return "scene"
	case ScriptFile:
		return "script"
	default:
		return "unknown"
	}
}

// Change is one settled file modification.
type Change struct {
	Path string
	Kind FileKind
}

type WatchOption func(*Watcher)

// WithQuietPeriod sets how long the tree must stay untouched before the
// collected changes are reported.
func WithQuietPeriod(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// Watcher reports scene and script changes under a directory tree. Changes
// are held until the tree has been quiet for a while, so an editor's
// write-rename-chmod burst arrives as one Change per file.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Changes chan Change
	Errors  chan error

	quiet time.Duration
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewWatcher watches root and every directory below it. Directories created
// later are picked up as they appear.
func NewWatcher(root string, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		Changes: make(chan Change, 16),
		Errors:  make(chan error, 1),
		quiet:   defaultQuietPeriod,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
		<-w.done
		close(w.Changes)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	pending := make(map[string]FileKind)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(event.Name)
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			kind, ok := KindOf(event.Name)
			if !ok {
				continue
			}
			pending[event.Name] = kind
			if timer == nil {
				timer = time.NewTimer(w.quiet)
			} else {
				timer.Reset(w.quiet)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if !w.flush(pending) {
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}

		case <-w.stop:
			return
		}
	}
}

// flush sends the pending changes in path order and empties the set. It
// reports false if the watcher was closed meanwhile.
func (w *Watcher) flush(pending map[string]FileKind) bool {
	changes := make([]Change, 0, len(pending))
	for p, kind := range pending {
		changes = append(changes, Change{Path: p, Kind: kind})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	clear(pending)

	for _, c := range changes {
		select {
		case w.Changes <- c:
		case <-w.stop:
			return false
		}
	}
	return true
}

// KindOf classifies a path by extension.
func KindOf(path string) (FileKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SceneFile, true
	case ".tengo":
		return ScriptFile, true
	default:
		return 0, false
	}
}
