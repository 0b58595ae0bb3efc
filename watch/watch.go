/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package watch recompiles units when they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bennypowers.dev/ui5ify/compile"
	"bennypowers.dev/ui5ify/config"
	"bennypowers.dev/ui5ify/transform"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Exclude lists directories, relative to the compiler root, that are not
	// watched. node_modules and the compiler's output directory are always
	// excluded.
	Exclude []string
	// Match reports whether a changed file is a unit to compile.
	Match func(path string) bool
	// Files lists every unit. Called when the project configuration changes.
	Files func() ([]string, error)
	// OnResult receives the result of each recompiled unit.
	OnResult func(compile.Result)
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	Logger   transform.Logger
}

// Watcher recompiles changed units. Changes to the project configuration
// file invalidate the configuration cache and recompile every unit.
type Watcher struct {
	compiler *compile.Compiler
	cache    config.Cache
	opts     Options
	root     string
	exclude  []string
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	all     bool
	closed  bool
	flushes sync.WaitGroup
}

// New creates a Watcher over the compiler's root. cache is the cache behind
// the compiler's configuration loader and may be nil.
func New(compiler *compile.Compiler, cache config.Cache, opts Options) (*Watcher, error) {
	w := newWatcher(compiler, cache, opts)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw
	return w, nil
}

func newWatcher(compiler *compile.Compiler, cache config.Cache, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	exclude := []string{"node_modules"}
	if out := compiler.OutDir(); out != "" {
		if rel, err := filepath.Rel(compiler.Root(), out); err == nil {
			exclude = append(exclude, rel)
		}
	}
	for _, e := range opts.Exclude {
		exclude = append(exclude, filepath.Clean(e))
	}

	return &Watcher{
		compiler: compiler,
		cache:    cache,
		opts:     opts,
		root:     compiler.Root(),
		exclude:  exclude,
		pending:  make(map[string]struct{}),
	}
}

type nopLogger struct{}

func (nopLogger) Warning(string, ...any) {}
func (nopLogger) Debug(string, ...any)   {}

// Run watches until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursively(w.root); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return w.Close()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() && !w.excluded(event.Name) {
					w.opts.Logger.Debug("Adding watcher for new directory: %s", event.Name)
					if err := w.fsw.Add(event.Name); err != nil {
						w.opts.Logger.Warning("watching %s: %v", event.Name, err)
					}
					continue
				}
			}
			if w.handle(event) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.opts.Logger.Warning("watcher error: %v", err)
		}
	}
}

// Close cancels scheduled recompiles, waits for a running one to finish and
// stops the file watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.flushes.Wait()
	if w.fsw == nil {
		return nil
	}
	return w.fsw.Close()
}

// handle records an event and reports whether it needs a recompile.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.excluded(event.Name) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if filepath.Clean(event.Name) == filepath.Join(w.root, config.FileName) {
		w.opts.Logger.Debug("configuration changed: %s", event.Name)
		w.all = true
		return true
	}
	if strings.HasSuffix(event.Name, ".ui5ify-tmp") || !w.opts.Match(event.Name) {
		return false
	}
	w.opts.Logger.Debug("file event: %s %s", event.Op, event.Name)
	w.pending[event.Name] = struct{}{}
	return true
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.scheduledFlush)
}

// scheduledFlush runs a debounced flush unless the watcher has been closed.
// Close waits for flushes that started before it.
func (w *Watcher) scheduledFlush() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.flushes.Add(1)
	w.mu.Unlock()
	defer w.flushes.Done()
	w.flush()
}

// flush recompiles everything recorded since the last flush.
func (w *Watcher) flush() {
	w.mu.Lock()
	all := w.all
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = make(map[string]struct{})
	w.all = false
	w.mu.Unlock()

	if all {
		if w.cache != nil {
			w.cache.Invalidate(w.root)
		}
		if w.opts.Files != nil {
			listed, err := w.opts.Files()
			if err != nil {
				w.opts.Logger.Warning("listing units: %v", err)
			}
			files = append(files, listed...)
		}
	}

	slices.Sort(files)
	for _, file := range slices.Compact(files) {
		result := w.compiler.File(file)
		if w.opts.OnResult != nil {
			w.opts.OnResult(result)
		}
	}
}

func (w *Watcher) excluded(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.Clean(rel)
	for _, e := range w.exclude {
		if rel == e || strings.HasPrefix(rel, e+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excluded(path) {
			w.opts.Logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}
		return nil
	})
}
