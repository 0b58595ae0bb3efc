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

// Package units selects the source files CLI commands operate on.
package units

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultGlob matches every unit the parser understands.
const DefaultGlob = "**/*.{js,mjs,cjs,ts,mts,cts,jsx,tsx}"

// Selector matches units under Root.
type Selector struct {
	// Root is the absolute project root.
	Root string
	// Glob is matched against slash-separated paths relative to Root.
	Glob string
	// Exclude lists directories relative to Root that never hold units.
	// node_modules is always excluded.
	Exclude []string
	// FS is the tree globbed by Files. Defaults to os.DirFS(Root).
	FS iofs.FS
}

// NewSelector creates a Selector, validating glob.
func NewSelector(root, glob string, exclude ...string) (*Selector, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("invalid glob pattern %q", glob)
	}
	s := &Selector{Root: root, Glob: glob}
	for _, e := range exclude {
		if e == "" {
			continue
		}
		if filepath.IsAbs(e) {
			rel, err := filepath.Rel(root, e)
			if err != nil {
				continue
			}
			e = rel
		}
		s.Exclude = append(s.Exclude, filepath.ToSlash(filepath.Clean(e)))
	}
	return s, nil
}

// Files returns absolute, deduplicated unit paths. Explicit args are used
// as given; without args the glob is expanded under Root.
func (s *Selector) Files(args []string) ([]string, error) {
	var candidates []string
	if len(args) > 0 {
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid file path %q: %w", arg, err)
			}
			candidates = append(candidates, abs)
		}
	} else {
		fsys := s.FS
		if fsys == nil {
			fsys = os.DirFS(s.Root)
		}
		matches, err := doublestar.Glob(fsys, s.Glob, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		for _, match := range matches {
			if s.excluded(match) {
				continue
			}
			candidates = append(candidates, filepath.Join(s.Root, filepath.FromSlash(match)))
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	var files []string
	for _, f := range candidates {
		if _, exists := seen[f]; !exists {
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	slices.Sort(files)
	return files, nil
}

// Match reports whether path is a unit: inside Root, not excluded, and
// matching the glob.
func (s *Selector) Match(path string) bool {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") || s.excluded(rel) {
		return false
	}
	ok, err := doublestar.Match(s.Glob, rel)
	return err == nil && ok
}

func (s *Selector) excluded(rel string) bool {
	for seg := range strings.SplitSeq(rel, "/") {
		if seg == "node_modules" {
			return true
		}
	}
	for _, e := range s.Exclude {
		if rel == e || strings.HasPrefix(rel, e+"/") {
			return true
		}
	}
	return false
}
