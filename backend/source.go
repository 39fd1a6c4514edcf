package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"gioui.org/x/explorer"
	"github.com/fsnotify/fsnotify"
)

type RWBox[T any] struct {
	t    T
	lock sync.RWMutex
}

func (r *RWBox[T]) Read(f func(*T)) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	f(&r.t)
}

func (r *RWBox[T]) Write(f func(*T)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	f(&r.t)
}

// sourceState is the file a Source follows. changed is closed and replaced
// whenever path or paused change.
type sourceState struct {
	path    string
	paused  bool
	changed chan struct{}
}

// Source follows one chart definition file at a time and streams its parsed
// content. YAML files are reparsed whenever they change on disk. CSV files
// are tailed: appended rows extend the charts they name.
type Source struct {
	logger  *slog.Logger
	state   RWBox[sourceState]
	version atomic.Uint64
}

func NewSource(logger *slog.Logger) *Source {
	s := &Source{logger: logger.With("component", "source")}
	s.state.Write(func(st *sourceState) {
		st.changed = make(chan struct{})
	})
	return s
}

// Open switches the source to the file at path.
func (s *Source) Open(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.state.Write(func(st *sourceState) {
		st.path = path
		close(st.changed)
		st.changed = make(chan struct{})
	})
}

// OpenFromExplorer asks the user for a definition file and opens it.
func (s *Source) OpenFromExplorer(expl *explorer.Explorer) error {
	file, err := expl.ChooseFile(".yaml", ".yml", ".csv")
	if err != nil {
		return err
	}
	defer file.Close()
	named, ok := file.(interface{ Name() string })
	if !ok {
		return fmt.Errorf("selected file has no path")
	}
	s.Open(named.Name())
	return nil
}

// SetPaused stops or resumes watching the current file for changes. A
// paused source emits the file content once.
func (s *Source) SetPaused(paused bool) {
	s.state.Write(func(st *sourceState) {
		if st.paused == paused {
			return
		}
		st.paused = paused
		close(st.changed)
		st.changed = make(chan struct{})
	})
}

func (s *Source) Paused() (paused bool) {
	s.state.Read(func(st *sourceState) { paused = st.paused })
	return paused
}

func (s *Source) Path() (path string) {
	s.state.Read(func(st *sourceState) { path = st.path })
	return path
}

// Sheets streams the content of whichever file the source currently
// follows, switching when Open is called. The channel closes when ctx is
// done.
func (s *Source) Sheets(ctx context.Context) <-chan Sheet {
	out := make(chan Sheet)
	go func() {
		defer close(out)
		for {
			var st sourceState
			s.state.Read(func(v *sourceState) { st = *v })
			var done chan struct{}
			cancel := func() {}
			if st.path != "" {
				var subCtx context.Context
				subCtx, cancel = context.WithCancel(ctx)
				done = make(chan struct{})
				go func() {
					defer close(done)
					s.follow(subCtx, st.path, !st.paused, out)
				}()
			}
			select {
			case <-st.changed:
			case <-ctx.Done():
			}
			cancel()
			if done != nil {
				<-done
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return out
}

// follow emits the sheet at path, and keeps emitting as it changes when
// watch is set.
func (s *Source) follow(ctx context.Context, path string, watch bool, out chan<- Sheet) {
	logger := s.logger.With("path", path)
	send := func(sheet Sheet) bool {
		sheet = sheet.clone()
		sheet.Version = s.version.Add(1)
		select {
		case out <- sheet:
			return true
		case <-ctx.Done():
			return false
		}
	}
	if !watch {
		send(loadSheet(path, nil, logger))
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		send(Sheet{Path: path, Err: fmt.Errorf("failed creating file watcher: %w", err)})
		return
	}
	defer watcher.Close()
	// Watch the directory so that editors replacing the file are noticed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		send(Sheet{Path: path, Err: fmt.Errorf("failed watching %q: %w", path, err)})
		return
	}
	w := fileWatch{watcher: watcher, path: filepath.Clean(path), logger: logger}

	if isCSV(path) {
		for s.tailCSV(ctx, path, w, send, logger) {
		}
		return
	}

	var last []Definition
	for {
		sheet := loadSheet(path, last, logger)
		last = sheet.Definitions
		if !send(sheet) {
			return
		}
		if _, ok := w.next(ctx, fsnotify.Write|fsnotify.Create); !ok {
			return
		}
	}
}

// loadSheet parses the whole file at path. On failure the previous
// definitions are kept alongside the error.
func loadSheet(path string, prev []Definition, logger *slog.Logger) Sheet {
	f, err := os.Open(path)
	if err != nil {
		return Sheet{Path: path, Definitions: prev, Err: err}
	}
	defer f.Close()
	var defs []Definition
	if isCSV(path) {
		acc := csvSheet{logger: logger}
		err = readRows(newCSVReader(f), &acc)
		defs = acc.defs
		if err == nil && len(defs) == 0 {
			err = ErrNoCharts
		}
	} else {
		defs, err = DecodeYAML(f)
	}
	if err != nil {
		logger.Warn("failed loading chart definitions", "err", err)
		return Sheet{Path: path, Definitions: prev, Err: err}
	}
	return Sheet{Path: path, Definitions: defs}
}

type rowReader interface {
	Read() ([]string, error)
}

// readRows feeds rows into acc until the reader is exhausted. It returns
// nil at EOF.
func readRows(r rowReader, acc *csvSheet) error {
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed reading chart rows: %w", err)
		}
		acc.add(rec)
	}
}

// tailCSV reads the CSV file at path and then waits for appended rows. It
// reports whether the file should be reopened from scratch, which is the
// case when it was replaced or removed.
func (s *Source) tailCSV(ctx context.Context, path string, w fileWatch, send func(Sheet) bool, logger *slog.Logger) bool {
	f, err := os.Open(path)
	if err != nil {
		if !send(Sheet{Path: path, Err: err}) {
			return false
		}
		_, ok := w.next(ctx, fsnotify.Create)
		return ok
	}
	defer f.Close()

	reader := newCSVReader(NewLineReader(f))
	acc := csvSheet{logger: logger}
	for {
		sheet := Sheet{Path: path}
		if err := readRows(reader, &acc); err != nil {
			sheet.Err = err
		} else if len(acc.defs) == 0 {
			sheet.Err = ErrNoCharts
		}
		sheet.Definitions = acc.defs
		if !send(sheet) {
			return false
		}
		var size int64
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
		op, ok := w.next(ctx, fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename)
		if !ok {
			return false
		}
		if !op.Has(fsnotify.Write) {
			return true
		}
		// A file rewritten in place shrinks below what was already read.
		if info, err := f.Stat(); err == nil && info.Size() < size {
			logger.Debug("chart rows truncated, rereading")
			return true
		}
	}
}

// fileWatch filters a directory watcher down to the events of one file.
type fileWatch struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *slog.Logger
}

// next blocks until an event matching ops happens to the file. It returns
// false when ctx is done or the watcher closes.
func (w fileWatch) next(ctx context.Context, ops fsnotify.Op) (fsnotify.Op, bool) {
	for {
		select {
		case <-ctx.Done():
			return 0, false
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return 0, false
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&ops == 0 {
				continue
			}
			return ev.Op, true
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return 0, false
			}
			w.logger.Warn("file watcher error", "err", err)
		}
	}
}
