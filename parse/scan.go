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
package parse

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ModuleImport represents an import found in a unit.
type ModuleImport struct {
	Specifier  string // The import specifier (e.g., "sap/m/Button", "./Foo")
	IsDynamic  bool   // True if this is a dynamic import()
	IsReexport bool   // True if this is an export ... from
	Line       int    // 1-indexed
}

// ModuleInfo summarizes a unit without building its tree.
type ModuleInfo struct {
	Path     string
	Language Language
	Imports  []ModuleImport
	// HasModuleSyntax is true when the unit has a top-level import or export
	// statement. Units without one are plain scripts.
	HasModuleSyntax bool
}

// Scan parses src with the grammar for path and reports its imports and
// whether it is an ES module. Syntax errors are tolerated; File reports them.
func Scan(path string, src []byte) (*ModuleInfo, error) {
	lang, err := LanguageFor(path)
	if err != nil {
		return nil, err
	}

	qm, err := GetQueryManager()
	if err != nil {
		return nil, err
	}

	parser := getParser(lang)
	defer putParser(lang, parser)

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}
	defer tree.Close()

	info := &ModuleInfo{Path: path, Language: lang}

	importsQuery, err := qm.Query(lang, "imports")
	if err != nil {
		return nil, err
	}
	moduleQuery, err := qm.Query(lang, "module")
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(importsQuery, tree.RootNode(), src)
	captureNames := importsQuery.CaptureNames()
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		for _, capture := range match.Captures {
			name := captureNames[capture.Index]
			imp := ModuleImport{
				Specifier: capture.Node.Utf8Text(src),
				Line:      int(capture.Node.StartPosition().Row) + 1, // 1-indexed
			}
			switch name {
			case "import.spec":
			case "dynamicImport.spec":
				imp.IsDynamic = true
			case "reexport.spec":
				imp.IsReexport = true
			default:
				continue
			}
			info.Imports = append(info.Imports, imp)
		}
	}

	moduleCursor := ts.NewQueryCursor()
	defer moduleCursor.Close()
	moduleMatches := moduleCursor.Matches(moduleQuery, tree.RootNode(), src)
	if moduleMatches.Next() != nil {
		info.HasModuleSyntax = true
	}

	return info, nil
}

// StaticImports returns the specifiers of the unit's import statements, in
// source order. These are the dependencies a define call is built from.
func (m *ModuleInfo) StaticImports() []string {
	var out []string
	for _, imp := range m.Imports {
		if !imp.IsDynamic && !imp.IsReexport {
			out = append(out, imp.Specifier)
		}
	}
	return out
}
