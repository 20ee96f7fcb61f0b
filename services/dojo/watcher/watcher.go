// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watcher reports debounced source file changes under a directory
// tree so hosts can re-analyze them.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
)

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// Op is the kind of file system change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

// String returns the string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one file system event.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler receives a debounced batch with at most one change per path, in
// order of first appearance. It runs on the watcher's debounce goroutine.
type Handler func(ctx context.Context, changes []Change)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the tree must be quiet before a batch is
	// delivered. Default: 300ms.
	Debounce time.Duration

	// IgnoreDirs are directory base names that are never watched.
	IgnoreDirs []string

	// Ignore are path substrings whose changes are dropped.
	Ignore []string

	// Filter selects the files whose changes are delivered. Nil accepts
	// every file.
	Filter func(path string) bool

	// BufferSize is the capacity of the event channel. Default: 1000.
	BufferSize int

	Logger *logging.Logger
}

// DefaultOptions returns the defaults used by the watch command.
func DefaultOptions() Options {
	return Options{
		Debounce:   300 * time.Millisecond,
		IgnoreDirs: []string{".git", "node_modules", ".idea", ".vscode", "__pycache__", "bin", "obj", "dist"},
		BufferSize: 1000,
	}
}

// Watcher watches a directory tree, or a single file, and batches changes.
//
// # Debouncing
//
// Changes are buffered; when Debounce passes without a new change the
// batch is deduplicated and handed to the Handler.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
type Watcher struct {
	root     string
	dir      string
	single   string
	fsw      *fsnotify.Watcher
	handler  Handler
	opts     Options
	logger   *logging.Logger
	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.Mutex
	watching bool
}

// New creates a Watcher for root. When root is a file only that file is
// reported.
//
// # Outputs
//
//   - *Watcher: Ready to Start.
//   - error: root does not exist or the OS watcher could not be created.
func New(root string, handler Handler, opts Options) (*Watcher, error) {
	defaults := DefaultOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	w := &Watcher{
		root:    abs,
		dir:     abs,
		handler: handler,
		opts:    opts,
		logger:  logger.With("component", "watcher"),
		changes: make(chan Change, opts.BufferSize),
		done:    make(chan struct{}),
	}
	if !info.IsDir() {
		w.dir = filepath.Dir(abs)
		w.single = abs
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	return w, nil
}

// Root returns the absolute watched path.
func (w *Watcher) Root() string { return w.root }

// Start registers the directories and launches the event and debounce
// goroutines. They exit on Stop or when ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.watching = true
	w.mu.Unlock()

	var err error
	if w.single != "" {
		if err = w.fsw.Add(w.dir); err != nil {
			err = fmt.Errorf("watch %s: %w", w.dir, err)
		}
	} else {
		err = w.addRecursive(w.dir)
	}
	if err != nil {
		w.abort()
		return err
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.logger.Info("watching for changes", "root", w.root, "debounce", w.opts.Debounce)
	return nil
}

// Stop stops watching and waits for the goroutines to exit. A pending batch
// is flushed first.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing fs watcher", "error", err)
		}
		w.wg.Wait()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// abort releases the fs watcher after a failed Start. No goroutine has
// been launched yet, so a later Stop has nothing to wait for.
func (w *Watcher) abort() {
	w.stopOnce.Do(func() {
		close(w.done)
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing fs watcher", "error", err)
		}
	})
	w.mu.Lock()
	w.watching = false
	w.mu.Unlock()
}

// IsWatching returns true between Start and Stop.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignoredDir(path string) bool {
	base := filepath.Base(path)
	for _, name := range w.opts.IgnoreDirs {
		if base == name {
			return true
		}
	}
	return false
}

// accepts reports whether a change to path should be delivered.
func (w *Watcher) accepts(path string) bool {
	if w.single != "" {
		return path == w.single
	}
	rel, err := filepath.Rel(w.dir, path)
	if err == nil {
		for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
			for _, name := range w.opts.IgnoreDirs {
				if part == name {
					return false
				}
			}
		}
	}
	for _, pattern := range w.opts.Ignore {
		if pattern != "" && strings.Contains(path, pattern) {
			return false
		}
	}
	if w.opts.Filter != nil && !w.opts.Filter(path) {
		return false
	}
	return true
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) && w.single == "" {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.ignoredDir(event.Name) {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("watching new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if !w.accepts(event.Name) {
				continue
			}

			change := Change{Path: event.Name, Op: convertOp(event.Op), Time: time.Now()}
			select {
			case w.changes <- change:
			default:
				w.logger.Warn("change buffer full, dropping event", "path", change.Path)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fs watcher error", "error", err)
		}
	}
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()

	var batch []Change
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 && w.handler != nil {
			w.handler(ctx, Deduplicate(batch))
		}
		batch = batch[:0]
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			flush()
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// Deduplicate keeps the latest change per path, ordered by the path's first
// appearance.
func Deduplicate(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if idx, ok := seen[c.Path]; ok {
			out[idx] = c
			continue
		}
		seen[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
