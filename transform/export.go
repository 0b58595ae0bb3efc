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

	"bennypowers.dev/ui5ify/ast"
)

// RewriteExport replaces the export statement at c with the define call
// and inserts one statement per scheduled static member after it.
func (r *Rewriter) RewriteExport(s *State, c *ast.Cursor) error {
	exp, ok := c.Node().(*ast.ExportDeclaration)
	if !ok {
		return fmt.Errorf("RewriteExport: expected export declaration, got %v", c.Node())
	}

	payload, err := r.LowerClass(s, exp.Declaration)
	if err != nil {
		return err
	}

	b := r.build(exp.Loc())
	deps := make([]ast.Node, len(s.Imports))
	params := make([]ast.Node, len(s.Imports))
	for i, imp := range s.Imports {
		deps[i] = b.StringLiteral(imp.Source)
		params[i] = b.Identifier(imp.Name)
	}

	factory := b.FunctionExpression(nil, params, b.BlockStatement([]ast.Node{
		b.ExpressionStatement(b.StringLiteral("use strict")),
		b.ReturnStatement(payload),
	}))
	define := b.CallExpression(ast.DottedName(b, r.define), []ast.Node{
		b.ArrayExpression(deps),
		factory,
	})
	var comments []*ast.Comment
	comments = append(comments, s.LeadingComments...)
	comments = append(comments, exp.LeadingComments...)
	define.LeadingComments = comments

	c.Replace(b.ExpressionStatement(define))

	for name, member := range s.StaticMembers.All() {
		c.InsertAfter(r.staticStatement(s, name, member))
	}
	s.StaticMembers = NewMembers()
	return nil
}

// staticStatement builds the statement defining one static member on the
// generated class: an assignment, or Object.defineProperty for accessors.
func (r *Rewriter) staticStatement(s *State, name string, m Member) ast.Node {
	b := r.build(m.Key.Loc())
	class := ast.DottedName(b, s.FullClassName)

	if m.IsAccessor() {
		var desc []*ast.ObjectProperty
		if m.Getter != nil {
			desc = append(desc, b.ObjectProperty(b.Identifier("get"), m.Getter, ast.PropertyInit))
		}
		if m.Setter != nil {
			desc = append(desc, b.ObjectProperty(b.Identifier("set"), m.Setter, ast.PropertyInit))
		}
		desc = append(desc, b.ObjectProperty(b.Identifier("configurable"), b.Identifier("true"), ast.PropertyInit))

		var key ast.Node
		if _, ok := staticName(m.Key); ok {
			key = b.StringLiteral(name)
		} else {
			key = m.Key
		}
		return b.ExpressionStatement(b.CallExpression(
			ast.DottedName(b, "Object.defineProperty"),
			[]ast.Node{class, key, b.ObjectExpression(desc)},
		))
	}

	var target ast.Node
	switch k := m.Key.(type) {
	case *ast.Identifier:
		target = ast.MemberChain(b, class, k.Name)
	case *ast.StringLiteral:
		if isIdentifier(k.Value) {
			target = ast.MemberChain(b, class, k.Value)
		} else {
			target = b.MemberExpression(class, b.StringLiteral(k.Value), true)
		}
	default:
		target = b.MemberExpression(class, m.Key, true)
	}
	return b.ExpressionStatement(b.AssignmentExpression("=", target, m.Value))
}
