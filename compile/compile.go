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

// Package compile runs the module rewrite over batches of files.
// Each unit is scanned, parsed, transformed, printed and written on its own;
// a failing unit is reported in its Result and never stops the others.
package compile

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bennypowers.dev/ui5ify/config"
	"bennypowers.dev/ui5ify/fs"
	"bennypowers.dev/ui5ify/parse"
	"bennypowers.dev/ui5ify/printer"
	"bennypowers.dev/ui5ify/transform"
)

// Options configures a batch.
type Options struct {
	// Root is the project root. Defaults to the working directory.
	Root string
	// OutDir receives output mirrored by path relative to Root. When empty,
	// sources are overwritten.
	OutDir string
	// DefineFunction overrides the generated define call.
	DefineFunction string
	// Indent is one level of output indentation.
	Indent string
	// Parallel is the number of parallel workers (default: number of CPUs).
	Parallel int
	// DryRun prevents writing files when true.
	DryRun bool
	// Loader reads project configuration. Callers that compile repeatedly
	// pass a cached loader; defaults to an uncached one over the batch
	// filesystem.
	Loader *config.Loader
	// Logger receives transform warnings.
	Logger transform.Logger
}

// Result holds the result of compiling a single file.
type Result struct {
	File          string   `json:"file" yaml:"file"`
	Output        string   `json:"output,omitempty" yaml:"output,omitempty"`
	Modified      bool     `json:"modified" yaml:"modified"`
	PassedThrough bool     `json:"passedThrough,omitempty" yaml:"passedThrough,omitempty"`
	Dependencies  []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`

	// Code is the generated source.
	Code []byte `json:"-" yaml:"-"`
	// Err is the failure behind Error, for errors.Is and errors.As.
	Err error `json:"-" yaml:"-"`
}

func (r *Result) fail(err error) Result {
	r.Err = err
	r.Error = err.Error()
	return *r
}

// Stats holds aggregate statistics from a batch.
type Stats struct {
	Total         int   `json:"total" yaml:"total"`
	Compiled      int   `json:"compiled" yaml:"compiled"`
	PassedThrough int   `json:"passedThrough" yaml:"passedThrough"`
	Unchanged     int   `json:"unchanged" yaml:"unchanged"`
	Errors        int   `json:"errors" yaml:"errors"`
	Duration      int64 `json:"duration_ms" yaml:"duration_ms"`
}

// Add counts one result.
func (s *Stats) Add(r Result) {
	s.Total++
	switch {
	case r.Error != "":
		s.Errors++
	case r.PassedThrough:
		s.PassedThrough++
	case !r.Modified:
		s.Unchanged++
	default:
		s.Compiled++
	}
}

// Batch compiles files in parallel. The returned channel yields one Result
// per file and is closed when all are done. Files not yet started when ctx
// is cancelled are reported with the context error.
func Batch(ctx context.Context, fsys fs.FileSystem, files []string, opts Options) <-chan Result {
	results := make(chan Result, len(files))

	go func() {
		defer close(results)

		c, err := NewCompiler(fsys, opts)
		if err != nil {
			for _, file := range files {
				results <- Result{File: file, Error: err.Error(), Err: err}
			}
			return
		}

		parallel := opts.Parallel
		if parallel <= 0 {
			parallel = runtime.NumCPU()
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallel)
		for _, file := range files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					results <- Result{File: file, Error: err.Error(), Err: err}
					return nil
				}
				results <- c.File(file)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return results
}

// Collect drains results into a slice and aggregate statistics.
func Collect(results <-chan Result, start time.Time) ([]Result, Stats) {
	var all []Result
	var stats Stats
	for r := range results {
		all = append(all, r)
		stats.Add(r)
	}
	stats.Duration = time.Since(start).Milliseconds()
	return all, stats
}

// Compiler compiles single units. It is safe for concurrent use.
type Compiler struct {
	fs       fs.FileSystem
	root     string
	outDir   string
	indent   string
	dryRun   bool
	rewriter *transform.Rewriter
}

// NewCompiler creates a Compiler for opts.
func NewCompiler(fsys fs.FileSystem, opts Options) (*Compiler, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid project root: %w", err)
	}

	outDir := opts.OutDir
	if outDir != "" {
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(absRoot, outDir)
		}
		outDir = filepath.Clean(outDir)
	}

	loader := opts.Loader
	if loader == nil {
		loader = config.NewLoader(fsys)
	}

	return &Compiler{
		fs:     fsys,
		root:   absRoot,
		outDir: outDir,
		indent: opts.Indent,
		dryRun: opts.DryRun,
		rewriter: transform.NewRewriter(loader, transform.Options{
			DefineFunction: opts.DefineFunction,
			Logger:         opts.Logger,
		}),
	}, nil
}

// Root returns the absolute project root.
func (c *Compiler) Root() string { return c.root }

// OutDir returns the absolute output directory, or "" when sources are
// overwritten.
func (c *Compiler) OutDir() string { return c.outDir }

// File compiles one unit and writes its output unless the compiler is in
// dry-run mode or the output is unchanged.
func (c *Compiler) File(file string) Result {
	result := Result{File: file}

	absFile, err := filepath.Abs(file)
	if err != nil {
		return result.fail(fmt.Errorf("invalid file path %q: %w", file, err))
	}

	src, err := c.fs.ReadFile(absFile)
	if err != nil {
		return result.fail(err)
	}

	code, deps, passed, err := c.generate(absFile, src)
	if err != nil {
		return result.fail(err)
	}
	result.Code = code
	result.Dependencies = deps
	result.PassedThrough = passed

	out, err := c.outputPath(absFile)
	if err != nil {
		return result.fail(err)
	}
	result.Output = out

	if existing, err := c.fs.ReadFile(out); err == nil && bytes.Equal(existing, code) {
		return result
	}
	result.Modified = true

	if !c.dryRun {
		if err := c.fs.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return result.fail(fmt.Errorf("creating output directory: %w", err))
		}
		if err := c.fs.WriteFile(out, code, 0644); err != nil {
			return result.fail(fmt.Errorf("writing %s: %w", out, err))
		}
	}
	return result
}

// generate returns the compiled source of a unit. Units without module
// syntax pass through: JavaScript unchanged, TypeScript with its types
// erased.
func (c *Compiler) generate(file string, src []byte) (code []byte, deps []string, passed bool, err error) {
	info, err := parse.Scan(file, src)
	if err != nil {
		return nil, nil, false, err
	}
	if !info.HasModuleSyntax && !isTypeScript(file) {
		return src, nil, true, nil
	}

	prog, err := parse.File(file, src)
	if err != nil {
		return nil, nil, false, err
	}
	if info.HasModuleSyntax {
		res, err := c.rewriter.Transform(prog, transform.Unit{FilePath: file, SourceRoot: c.root})
		if err != nil {
			return nil, nil, false, err
		}
		prog = res.Program
		for _, imp := range res.State.Imports {
			deps = append(deps, imp.Source)
		}
	}

	var buf bytes.Buffer
	if err := printer.Print(&buf, prog, printer.Options{Indent: c.indent}); err != nil {
		return nil, nil, false, fmt.Errorf("printing %s: %w", file, err)
	}
	return buf.Bytes(), deps, !info.HasModuleSyntax, nil
}

// isTypeScript reports whether file carries type syntax that must be erased
// before it is valid JavaScript.
func isTypeScript(file string) bool {
	switch filepath.Ext(file) {
	case ".ts", ".tsx", ".mts", ".cts":
		return true
	}
	return false
}

// outputExtensions maps source extensions whose output is plain JavaScript.
var outputExtensions = map[string]string{
	".ts":  ".js",
	".tsx": ".js",
	".jsx": ".js",
	".mts": ".mjs",
	".cts": ".cjs",
}

// outputPath mirrors file into the output directory, renaming TypeScript
// and JSX sources to their JavaScript extension.
func (c *Compiler) outputPath(file string) (string, error) {
	if c.outDir == "" {
		return file, nil
	}
	rel, err := filepath.Rel(c.root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the project root %s and cannot be mirrored into %s", file, c.root, c.outDir)
	}
	ext := filepath.Ext(rel)
	if js, ok := outputExtensions[ext]; ok {
		rel = strings.TrimSuffix(rel, ext) + js
	}
	return filepath.Join(c.outDir, rel), nil
}
