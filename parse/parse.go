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

// Package parse builds ast trees from JavaScript and TypeScript source using
// tree-sitter.
//
// Module-level constructs and method bodies are converted to typed nodes.
// Other constructs are kept as ast.Raw source text, with nested calls and
// member accesses on super exposed as typed children so they can be
// rewritten. TypeScript-only syntax is erased during conversion.
package parse

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"bennypowers.dev/ui5ify/ast"
)

// SyntaxError reports the first syntax error tree-sitter found in a unit.
type SyntaxError struct {
	File    string
	Line    int // 1-indexed
	Column  int // 1-indexed
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// File parses src with the grammar selected by the extension of path and
// converts it to an ast.Program. Locations in the tree carry path.
func File(path string, src []byte) (*ast.Program, error) {
	lang, err := LanguageFor(path)
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

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(path, src, root)
	}

	c := &converter{file: path, src: src, types: lang != JavaScript}
	return c.program(root), nil
}

func syntaxError(path string, src []byte, root *ts.Node) *SyntaxError {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pos := bad.StartPosition()
	msg := "syntax error"
	switch {
	case bad.IsMissing():
		msg = "missing " + bad.Kind()
	case bad.IsError():
		text := bad.Utf8Text(src)
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		msg = fmt.Sprintf("unexpected %q", text)
	}
	return &SyntaxError{
		File:    path,
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Message: msg,
	}
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(n *ts.Node) *ts.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
