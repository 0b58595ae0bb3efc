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
package compile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bennypowers.dev/ui5ify/config"
	"bennypowers.dev/ui5ify/internal/mapfs"
	"bennypowers.dev/ui5ify/transform"
)

const (
	barSource = `import Foo from "./Foo";
export default class Bar extends Baz {
	method() {
		super.method();
	}
}
`
	barCompiled = `sap.ui.define(["app/Foo"], function (Foo) {
	"use strict";
	return Baz.extend("app.Bar", {
		method: function () {
			Baz.prototype.method.apply(this, []);
		}
	});
});
`
	legacySource = "sap.ui.define([], function () {\n\treturn {};\n});\n"
	brokenSource = "export default class Broken {}\n"
)

func newProject() *mapfs.MapFileSystem {
	mfs := mapfs.New()
	mfs.AddFile("/project/ui5sk.properties", "NAMESPACE=app\n", 0644)
	mfs.AddFile("/project/app/Bar.js", barSource, 0644)
	mfs.AddFile("/project/lib/legacy.js", legacySource, 0644)
	mfs.AddFile("/project/app/Broken.js", brokenSource, 0644)
	return mfs
}

var projectFiles = []string{
	"/project/app/Bar.js",
	"/project/lib/legacy.js",
	"/project/app/Broken.js",
}

func resultsByFile(results []Result) map[string]Result {
	out := make(map[string]Result, len(results))
	for _, r := range results {
		out[r.File] = r
	}
	return out
}

func TestBatch(t *testing.T) {
	mfs := newProject()
	opts := Options{Root: "/project", OutDir: "dist", Parallel: 2}

	results, stats := Collect(Batch(context.Background(), mfs, projectFiles, opts), time.Now())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	byFile := resultsByFile(results)

	bar := byFile["/project/app/Bar.js"]
	if bar.Error != "" {
		t.Fatalf("unexpected error: %s", bar.Error)
	}
	if !bar.Modified || bar.PassedThrough {
		t.Errorf("expected Bar.js to be compiled: %+v", bar)
	}
	if bar.Output != "/project/dist/app/Bar.js" {
		t.Errorf("unexpected output path %q", bar.Output)
	}
	if got, _ := mfs.Content("/project/dist/app/Bar.js"); got != barCompiled {
		t.Errorf("unexpected compiled output:\n%s\nexpected:\n%s", got, barCompiled)
	}
	if len(bar.Dependencies) != 1 || bar.Dependencies[0] != "app/Foo" {
		t.Errorf("unexpected dependencies %v", bar.Dependencies)
	}

	legacy := byFile["/project/lib/legacy.js"]
	if !legacy.PassedThrough {
		t.Errorf("expected legacy.js to pass through: %+v", legacy)
	}
	if got, _ := mfs.Content("/project/dist/lib/legacy.js"); got != legacySource {
		t.Errorf("plain script changed: %q", got)
	}

	broken := byFile["/project/app/Broken.js"]
	if !errors.Is(broken.Err, transform.ErrMissingBaseClass) {
		t.Errorf("expected missing base class error, got %v", broken.Err)
	}
	if !strings.Contains(broken.Error, "Broken") {
		t.Errorf("error should name the class: %s", broken.Error)
	}
	if _, ok := mfs.Content("/project/dist/app/Broken.js"); ok {
		t.Error("failed unit must not be written")
	}

	expected := Stats{Total: 3, Compiled: 1, PassedThrough: 1, Errors: 1}
	stats.Duration = 0
	if stats != expected {
		t.Errorf("unexpected stats %+v, expected %+v", stats, expected)
	}
}

func TestBatchDryRun(t *testing.T) {
	mfs := newProject()
	before := mfs.Files()

	results, _ := Collect(Batch(context.Background(), mfs, projectFiles, Options{Root: "/project", OutDir: "dist", DryRun: true}), time.Now())

	after := mfs.Files()
	if strings.Join(before, ",") != strings.Join(after, ",") {
		t.Errorf("dry run wrote files: %v", after)
	}
	bar := resultsByFile(results)["/project/app/Bar.js"]
	if !bar.Modified || string(bar.Code) != barCompiled {
		t.Errorf("dry run should still report the generated code: %+v", bar)
	}
}

func TestBatchOverwritesSources(t *testing.T) {
	mfs := newProject()
	files := []string{"/project/app/Bar.js"}

	results, _ := Collect(Batch(context.Background(), mfs, files, Options{Root: "/project"}), time.Now())
	if results[0].Error != "" || !results[0].Modified {
		t.Fatalf("unexpected result %+v", results[0])
	}
	if got, _ := mfs.Content("/project/app/Bar.js"); got != barCompiled {
		t.Errorf("source not overwritten: %q", got)
	}

	// The output has no module syntax left, so a second run leaves it alone.
	results, stats := Collect(Batch(context.Background(), mfs, files, Options{Root: "/project"}), time.Now())
	if results[0].Modified || !results[0].PassedThrough {
		t.Errorf("expected second run to pass through unchanged: %+v", results[0])
	}
	if stats.PassedThrough != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestBatchCancelled(t *testing.T) {
	mfs := newProject()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, stats := Collect(Batch(ctx, mfs, projectFiles, Options{Root: "/project", OutDir: "dist"}), time.Now())
	if len(results) != len(projectFiles) {
		t.Fatalf("expected a result per file, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", r.File, r.Err)
		}
	}
	if stats.Errors != len(projectFiles) {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestBatchSharesCachedConfig(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/project/ui5sk.properties", "NAMESPACE=app\n", 0644)
	var files []string
	for _, name := range []string{"A", "B", "C", "D"} {
		path := "/project/" + name + ".js"
		mfs.AddFile(path, "export default class "+name+" extends Base {}\n", 0644)
		files = append(files, path)
	}

	loader := config.NewLoader(mfs).WithCache(config.NewMemoryCache())
	_, stats := Collect(Batch(context.Background(), mfs, files, Options{Root: "/project", OutDir: "out", Loader: loader}), time.Now())

	if stats.Compiled != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if reads := mfs.Reads("/project/ui5sk.properties"); reads != 1 {
		t.Errorf("expected configuration to be read once, got %d", reads)
	}
	if got, _ := mfs.Content("/project/out/C.js"); !strings.Contains(got, `Base.extend("app.C", {})`) {
		t.Errorf("unexpected output %q", got)
	}
}

func TestCompilerRejectsUnitsOutsideRoot(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/elsewhere/A.js", "export default class A extends B {}\n", 0644)

	c, err := NewCompiler(mfs, Options{Root: "/project", OutDir: "dist"})
	if err != nil {
		t.Fatalf("NewCompiler failed: %v", err)
	}
	result := c.File("/elsewhere/A.js")
	if !strings.Contains(result.Error, "outside the project root") {
		t.Errorf("unexpected error %q", result.Error)
	}
}

func TestCompilerMissingFile(t *testing.T) {
	c, err := NewCompiler(mapfs.New(), Options{Root: "/project"})
	if err != nil {
		t.Fatalf("NewCompiler failed: %v", err)
	}
	if result := c.File("/project/missing.js"); result.Err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestCompilerErasesTypesWithoutModuleSyntax(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/project/app/util.ts", "const x: number = 1;\nfunction f(a: string): void {}\n", 0644)
	mfs.AddFile("/project/app/plain.js", legacySource, 0644)

	c, err := NewCompiler(mfs, Options{Root: "/project", OutDir: "dist"})
	if err != nil {
		t.Fatalf("NewCompiler failed: %v", err)
	}

	result := c.File("/project/app/util.ts")
	if result.Err != nil {
		t.Fatalf("File failed: %v", result.Err)
	}
	if !result.PassedThrough {
		t.Error("a unit without module syntax should pass through")
	}
	if result.Output != "/project/dist/app/util.js" {
		t.Errorf("unexpected output path %q", result.Output)
	}
	out, ok := mfs.Content("/project/dist/app/util.js")
	if !ok {
		t.Fatal("expected util.js to be written")
	}
	for _, typed := range []string{": number", ": string", ": void"} {
		if strings.Contains(out, typed) {
			t.Errorf("output still contains %q:\n%s", typed, out)
		}
	}
	if !strings.Contains(out, "const x") || !strings.Contains(out, "function f(a)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	result = c.File("/project/app/plain.js")
	if result.Err != nil {
		t.Fatalf("File failed: %v", result.Err)
	}
	if string(result.Code) != legacySource {
		t.Errorf("JavaScript without module syntax should be copied unchanged, got %q", result.Code)
	}
}
