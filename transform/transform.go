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

// Package transform rewrites an ES class module into a UI5 module: imports
// become the dependency list of a define call, the default-exported class
// becomes a Base.extend call returned from its factory, and super calls
// delegate to the base class explicitly.
//
// Each unit gets its own State. A Rewriter holds no per-unit data and may be
// shared between goroutines transforming different units.
package transform

import (
	"unicode"

	"bennypowers.dev/ui5ify/ast"
	"bennypowers.dev/ui5ify/config"
)

// DefaultDefineFunction is the module-define function of generated units.
const DefaultDefineFunction = "sap.ui.define"

// Logger receives non-fatal diagnostics.
type Logger interface {
	Warning(format string, args ...any)
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warning(string, ...any) {}
func (nopLogger) Debug(string, ...any)   {}

// Options configures a Rewriter.
type Options struct {
	// DefineFunction is the dotted name of the generated define call.
	DefineFunction string
	// Logger receives warnings. Defaults to discarding them.
	Logger Logger
	// Builder creates synthesized nodes. Defaults to ast.NewBuilder().
	Builder ast.Builder
}

// Rewriter applies the module rewrite to parsed units.
type Rewriter struct {
	loader  *config.Loader
	define  string
	logger  Logger
	builder ast.Builder
}

// NewRewriter creates a Rewriter that reads project configuration through
// loader.
func NewRewriter(loader *config.Loader, opts Options) *Rewriter {
	r := &Rewriter{
		loader:  loader,
		define:  opts.DefineFunction,
		logger:  opts.Logger,
		builder: opts.Builder,
	}
	if r.define == "" {
		r.define = DefaultDefineFunction
	}
	if r.logger == nil {
		r.logger = nopLogger{}
	}
	if r.builder == nil {
		r.builder = ast.NewBuilder()
	}
	return r
}

// Result is a rewritten unit.
type Result struct {
	Program *ast.Program
	State   *State
}

// Transform rewrites prog in place. Statements are visited in order: imports
// are collected and removed, the export is replaced by the define call, and
// every remaining statement has its super calls rewritten. A super call that
// precedes the exported class is an ErrIllegalSuper.
func (r *Rewriter) Transform(prog *ast.Program, unit Unit) (*Result, error) {
	s, err := NewState(r.loader, unit)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("transforming %s (root %s, namespace %q)", s.FilePath, s.SourceRoot, s.Namespace)

	err = ast.ApplyList(&prog.Body, func(c *ast.Cursor) error {
		switch c.Node().(type) {
		case *ast.ImportDeclaration:
			return r.CollectImport(s, c)
		case *ast.ExportDeclaration:
			if err := r.RewriteExport(s, c); err != nil {
				return err
			}
		}
		out, err := ast.Rewrite(c.Node(), func(n ast.Node) (ast.Node, error) {
			if call, ok := n.(*ast.CallExpression); ok {
				return r.RewriteSuperCall(s, call)
			}
			return n, nil
		})
		if err != nil {
			return err
		}
		c.Replace(out)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.warnStraySuper(prog)
	return &Result{Program: prog, State: s}, nil
}

// warnStraySuper reports super references that are not calls, such as
// property reads, which are left as written.
func (r *Rewriter) warnStraySuper(prog *ast.Program) {
	ast.Inspect(prog, func(n ast.Node) bool {
		if sup, ok := n.(*ast.Super); ok {
			r.logger.Warning("%s: super is only rewritten in calls, left unchanged", sup.Loc())
		}
		return true
	})
}

// build returns the builder, stamped with loc when it supports locations.
func (r *Rewriter) build(loc ast.Location) ast.Builder {
	if nb, ok := r.builder.(*ast.NodeBuilder); ok {
		return nb.WithLocation(loc)
	}
	return r.builder
}

// isIdentifier reports whether name can be used as a JavaScript binding.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		switch {
		case ch == '$' || ch == '_' || unicode.IsLetter(ch):
		case i > 0 && unicode.IsDigit(ch):
		default:
			return false
		}
	}
	return true
}
