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
	"path"
	"path/filepath"
	"strings"

	"bennypowers.dev/ui5ify/ast"
)

// CollectImport records the import statement at c as a dependency of the
// unit and removes it from the program.
func (r *Rewriter) CollectImport(s *State, c *ast.Cursor) error {
	decl, ok := c.Node().(*ast.ImportDeclaration)
	if !ok {
		return fmt.Errorf("CollectImport: expected import declaration, got %v", c.Node())
	}

	source, err := resolveSource(s, decl)
	if err != nil {
		return err
	}

	var name string
	if len(decl.Specifiers) == 1 {
		name = decl.Specifiers[0].Local.Name
	} else {
		name = path.Base(source)
		if !isIdentifier(name) {
			r.logger.Warning("%s: binding %q derived from %q is not a valid identifier",
				decl.Loc(), name, source)
		}
	}

	for _, imp := range s.Imports {
		if imp.Name == name {
			return errorAt(ErrDuplicateBinding, decl.Loc(),
				"%q is bound by both %q and %q", name, imp.Source, source)
		}
		if imp.Source == source {
			r.logger.Warning("%s: %q is imported more than once", decl.Loc(), source)
		}
	}

	if len(s.Imports) == 0 {
		s.LeadingComments = decl.LeadingComments
	}
	s.Imports = append(s.Imports, Import{Name: name, Source: source})
	c.Remove()
	return nil
}

// resolveSource returns the dependency path of an import. Relative
// specifiers are resolved against the unit's directory and re-expressed
// relative to the project root; bare specifiers are only normalized.
func resolveSource(s *State, decl *ast.ImportDeclaration) (string, error) {
	specifier := decl.Source.Value
	if !isRelative(specifier) {
		return filepath.ToSlash(filepath.Clean(filepath.FromSlash(specifier))), nil
	}

	if !s.InsideRoot {
		return "", errorAt(ErrImportOutsideRoot, decl.Loc(),
			"relative import %q in a unit outside %s", specifier, s.SourceRoot)
	}
	target := filepath.Join(filepath.Dir(s.FilePath), filepath.FromSlash(specifier))
	rel, ok := relativeTo(s.SourceRoot, target)
	if !ok {
		return "", errorAt(ErrImportOutsideRoot, decl.Loc(),
			"%q resolves outside %s", specifier, s.SourceRoot)
	}
	return filepath.ToSlash(rel), nil
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}
