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
package transform

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/ui5ify/ast"
	"bennypowers.dev/ui5ify/config"
)

// Unit identifies one source file to transform.
type Unit struct {
	// FilePath is the path of the unit. Relative paths are made absolute
	// against the working directory.
	FilePath string
	// SourceRoot overrides the project root. Defaults to the working
	// directory.
	SourceRoot string
}

// Import is one collected dependency: the factory parameter Name and the
// normalized module path Source passed to the define call.
type Import struct {
	Name   string
	Source string
}

// State is the mutable context of one unit. It is created by NewState,
// threaded through every rewrite of that unit, and never shared between
// units.
type State struct {
	FilePath   string
	SourceRoot string

	// InsideRoot reports whether FilePath lies inside SourceRoot. The
	// relative fields are empty when it is false.
	InsideRoot                       bool
	RelativeFilePath                 string
	RelativeFilePathWithoutExtension string

	Namespace string

	// Class facts, set when the exported class is lowered.
	ClassName      string
	SuperClassName string
	FullClassName  string

	// Imports in the order their statements were collected.
	Imports []Import

	// StaticMembers are emitted as assignments after the define call.
	StaticMembers *Members

	// LeadingComments of the first import, kept on the define call.
	LeadingComments []*ast.Comment
}

// NewState initializes the state of unit, loading the project configuration
// through loader. A unit outside the project root is not an error.
func NewState(loader *config.Loader, unit Unit) (*State, error) {
	filePath, err := filepath.Abs(unit.FilePath)
	if err != nil {
		return nil, fmt.Errorf("resolving unit path: %w", err)
	}

	root := unit.SourceRoot
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolving project root: %w", err)
		}
	}
	if root, err = filepath.Abs(root); err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	cfg, err := loader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", config.FileName, err)
	}

	s := &State{
		FilePath:      filePath,
		SourceRoot:    root,
		Namespace:     cfg.Namespace,
		StaticMembers: NewMembers(),
	}

	if rel, ok := relativeTo(root, filePath); ok {
		s.InsideRoot = true
		s.RelativeFilePath = filepath.ToSlash(rel)
		withoutExt := filepath.Dir(rel) + string(filepath.Separator) +
			strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		s.RelativeFilePathWithoutExtension = filepath.ToSlash(withoutExt)
	}
	return s, nil
}

// relativeTo returns target relative to root, and false when target is not
// inside root.
func relativeTo(root, target string) (string, bool) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// setClass records the lowered class and derives its full name.
func (s *State) setClass(className, superClassName string) {
	s.ClassName = className
	s.SuperClassName = superClassName
	if s.Namespace != "" {
		s.FullClassName = s.Namespace + "." + className
	} else {
		s.FullClassName = className
	}
}

// Member is a static class member scheduled for assignment. A member with a
// Getter or Setter is an accessor and is defined with Object.defineProperty.
type Member struct {
	Key    ast.Node
	Value  ast.Node
	Getter *ast.FunctionExpression
	Setter *ast.FunctionExpression
}

// IsAccessor reports whether the member was declared with get or set.
func (m Member) IsAccessor() bool {
	return m.Getter != nil || m.Setter != nil
}

// Members is an insertion-ordered map of static members by name. Setting an
// existing name replaces its member but keeps its position.
type Members struct {
	names   []string
	members map[string]Member
}

// NewMembers returns an empty Members.
func NewMembers() *Members {
	return &Members{members: make(map[string]Member)}
}

// Len returns the number of members.
func (m *Members) Len() int {
	return len(m.names)
}

// Get returns the member stored under name.
func (m *Members) Get(name string) (Member, bool) {
	member, ok := m.members[name]
	return member, ok
}

// Set stores member under name.
func (m *Members) Set(name string, member Member) {
	if _, ok := m.members[name]; !ok {
		m.names = append(m.names, name)
	}
	m.members[name] = member
}

// Names returns the member names in insertion order.
func (m *Members) Names() []string {
	return append([]string(nil), m.names...)
}

// All iterates members in insertion order.
func (m *Members) All() iter.Seq2[string, Member] {
	return func(yield func(string, Member) bool) {
		for _, name := range m.names {
			if !yield(name, m.members[name]) {
				return
			}
		}
	}
}
