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

// Package deps lists the dependencies units would declare once compiled.
package deps

import (
	"fmt"
	"path/filepath"

	"bennypowers.dev/ui5ify/ast"
	"bennypowers.dev/ui5ify/config"
	"bennypowers.dev/ui5ify/fs"
	"bennypowers.dev/ui5ify/parse"
	"bennypowers.dev/ui5ify/transform"
)

// Dependency is one entry of a define call's dependency list.
type Dependency struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"`
}

// Entry lists the dependencies of one unit.
type Entry struct {
	File string `json:"file" yaml:"file"`
	// Module is false for plain scripts, which are compiled unchanged.
	Module       bool         `json:"module" yaml:"module"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	// Dynamic lists import() and re-export specifiers, which the define
	// call does not declare.
	Dynamic []string `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// List returns an entry per file, in order. Failures are reported per entry.
func List(fsys fs.FileSystem, root string, files []string) ([]Entry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid project root: %w", err)
	}
	loader := config.NewLoader(fsys).WithCache(config.NewMemoryCache())
	rewriter := transform.NewRewriter(loader, transform.Options{})

	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		entry := Entry{File: file}
		if err := list(fsys, rewriter, loader, absRoot, &entry); err != nil {
			entry.Error = err.Error()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func list(fsys fs.FileSystem, rewriter *transform.Rewriter, loader *config.Loader, root string, entry *Entry) error {
	src, err := fsys.ReadFile(entry.File)
	if err != nil {
		return err
	}
	info, err := parse.Scan(entry.File, src)
	if err != nil {
		return err
	}
	entry.Module = info.HasModuleSyntax
	for _, imp := range info.Imports {
		if imp.IsDynamic || imp.IsReexport {
			entry.Dynamic = append(entry.Dynamic, imp.Specifier)
		}
	}
	if !entry.Module {
		return nil
	}

	prog, err := parse.File(entry.File, src)
	if err != nil {
		return err
	}
	s, err := transform.NewState(loader, transform.Unit{FilePath: entry.File, SourceRoot: root})
	if err != nil {
		return err
	}
	err = ast.ApplyList(&prog.Body, func(c *ast.Cursor) error {
		if _, ok := c.Node().(*ast.ImportDeclaration); ok {
			return rewriter.CollectImport(s, c)
		}
		return nil
	})
	for _, imp := range s.Imports {
		entry.Dependencies = append(entry.Dependencies, Dependency{Name: imp.Name, Source: imp.Source})
	}
	return err
}
