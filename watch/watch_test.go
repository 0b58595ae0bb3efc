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
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"bennypowers.dev/ui5ify/compile"
	"bennypowers.dev/ui5ify/config"
	"bennypowers.dev/ui5ify/fs"
	"bennypowers.dev/ui5ify/internal/mapfs"
)

func isJS(path string) bool { return strings.HasSuffix(path, ".js") }

type collected struct {
	mu      sync.Mutex
	results []compile.Result
}

func (c *collected) add(r compile.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collected) files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, r := range c.results {
		out = append(out, r.File)
	}
	return out
}

func newMapProject(t *testing.T) (*mapfs.MapFileSystem, *compile.Compiler, *config.MemoryCache) {
	t.Helper()
	mfs := mapfs.New()
	mfs.AddFile("/project/ui5sk.properties", "NAMESPACE=one\n", 0644)
	mfs.AddFile("/project/A.js", "export default class A extends Base {}\n", 0644)
	mfs.AddFile("/project/B.js", "export default class B extends Base {}\n", 0644)

	cache := config.NewMemoryCache()
	c, err := compile.NewCompiler(mfs, compile.Options{
		Root:   "/project",
		OutDir: "dist",
		Loader: config.NewLoader(mfs).WithCache(cache),
	})
	if err != nil {
		t.Fatalf("NewCompiler failed: %v", err)
	}
	return mfs, c, cache
}

func TestHandle(t *testing.T) {
	_, c, _ := newMapProject(t)
	w := newWatcher(c, nil, Options{Match: isJS, Exclude: []string{"vendor"}})

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"write to unit", fsnotify.Event{Name: "/project/A.js", Op: fsnotify.Write}, true},
		{"create unit", fsnotify.Event{Name: "/project/sub/C.js", Op: fsnotify.Create}, true},
		{"remove unit", fsnotify.Event{Name: "/project/A.js", Op: fsnotify.Remove}, false},
		{"chmod unit", fsnotify.Event{Name: "/project/A.js", Op: fsnotify.Chmod}, false},
		{"non unit", fsnotify.Event{Name: "/project/README.md", Op: fsnotify.Write}, false},
		{"output dir", fsnotify.Event{Name: "/project/dist/A.js", Op: fsnotify.Write}, false},
		{"node_modules", fsnotify.Event{Name: "/project/node_modules/x/index.js", Op: fsnotify.Write}, false},
		{"custom exclude", fsnotify.Event{Name: "/project/vendor/x.js", Op: fsnotify.Write}, false},
		{"temporary file", fsnotify.Event{Name: "/project/A.js.ui5ify-tmp", Op: fsnotify.Create}, false},
		{"configuration", fsnotify.Event{Name: "/project/ui5sk.properties", Op: fsnotify.Write}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.handle(tt.event); got != tt.expected {
				t.Errorf("handle(%v) = %v, expected %v", tt.event, got, tt.expected)
			}
		})
	}
}

func TestFlushRecompilesPendingUnits(t *testing.T) {
	mfs, c, _ := newMapProject(t)
	var got collected
	w := newWatcher(c, nil, Options{Match: isJS, OnResult: got.add})

	w.handle(fsnotify.Event{Name: "/project/A.js", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/project/A.js", Op: fsnotify.Write})
	w.flush()

	if files := got.files(); len(files) != 1 || files[0] != "/project/A.js" {
		t.Fatalf("unexpected recompiles %v", files)
	}
	if out, ok := mfs.Content("/project/dist/A.js"); !ok || !strings.Contains(out, `Base.extend("one.A", {})`) {
		t.Errorf("unexpected output %q", out)
	}

	w.flush()
	if len(got.files()) != 1 {
		t.Error("a flush without changes should not recompile")
	}
}

func TestConfigurationChangeRecompilesEverything(t *testing.T) {
	mfs, c, cache := newMapProject(t)
	var got collected
	w := newWatcher(c, cache, Options{
		Match:    isJS,
		OnResult: got.add,
		Files: func() ([]string, error) {
			return []string{"/project/A.js", "/project/B.js"}, nil
		},
	})

	w.handle(fsnotify.Event{Name: "/project/A.js", Op: fsnotify.Write})
	w.flush()

	mfs.AddFile("/project/ui5sk.properties", "NAMESPACE=two\n", 0644)
	w.handle(fsnotify.Event{Name: "/project/ui5sk.properties", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/project/A.js", Op: fsnotify.Write})
	w.flush()

	if files := got.files(); strings.Join(files, ",") != "/project/A.js,/project/A.js,/project/B.js" {
		t.Errorf("unexpected recompiles %v", files)
	}
	for _, name := range []string{"A", "B"} {
		out, _ := mfs.Content("/project/dist/" + name + ".js")
		if !strings.Contains(out, `"two.`+name+`"`) {
			t.Errorf("%s.js not recompiled with the new namespace: %q", name, out)
		}
	}
}

func TestCloseWaitsForRunningFlush(t *testing.T) {
	_, c, _ := newMapProject(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	w := newWatcher(c, nil, Options{
		Match:    isJS,
		Debounce: time.Millisecond,
		OnResult: func(compile.Result) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
		},
	})

	w.handle(fsnotify.Event{Name: "/project/A.js", Op: fsnotify.Write})
	w.schedule()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the scheduled recompile")
	}

	closed := make(chan error, 1)
	go func() { closed <- w.Close() }()
	select {
	case <-closed:
		t.Fatal("Close returned while a recompile was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the recompile finished")
	}

	w.handle(fsnotify.Event{Name: "/project/B.js", Op: fsnotify.Write})
	w.schedule()
	time.Sleep(20 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected no recompiles after Close, got %d results", n)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "app"), 0755); err != nil {
		t.Fatal(err)
	}

	c, err := compile.NewCompiler(fs.NewOSFileSystem(), compile.Options{Root: root, OutDir: "dist"})
	if err != nil {
		t.Fatalf("NewCompiler failed: %v", err)
	}
	results := make(chan compile.Result, 16)
	w, err := New(c, nil, Options{
		Match:    isJS,
		Debounce: 20 * time.Millisecond,
		OnResult: func(r compile.Result) {
			select {
			case results <- r:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	unit := filepath.Join(root, "app", "View.js")
	src := "export default class View extends Base {}\n"
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	// Writes are repeated until the watcher has registered the directory.
	for {
		if err := os.WriteFile(unit, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
		select {
		case r := <-results:
			if r.Error != "" {
				t.Fatalf("recompile failed: %s", r.Error)
			}
			out, err := os.ReadFile(filepath.Join(root, "dist", "app", "View.js"))
			if err != nil {
				t.Fatalf("output not written: %v", err)
			}
			if !strings.Contains(string(out), `Base.extend("View", {})`) {
				t.Errorf("unexpected output %q", out)
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("timed out waiting for a recompile")
		}
	}
}
